package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/umang-projects/action-item-extractor/pkg/metrics"
)

// Metrics records request counts and latency per route
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			// c.Path() is the registered route pattern, not the raw URL,
			// so metric cardinality stays bounded
			metrics.RecordRequest(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
				time.Since(start).Seconds(),
			)

			return err
		}
	}
}

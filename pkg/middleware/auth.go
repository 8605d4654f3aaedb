package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umang-projects/action-item-extractor/errors"
	"github.com/umang-projects/action-item-extractor/pkg/jwt"
)

// JWTAuth validates the bearer token and puts the client name on the context
func JWTAuth(jwtManager *jwt.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return unauthorized(c, errors.ErrUnauthenticated())
			}

			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("rejected request with invalid token",
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				return unauthorized(c, errors.ErrInvalidToken())
			}

			c.Set("client_name", claims.ClientName)
			return next(c)
		}
	}
}

// extractBearerToken reads the token from the Authorization header
func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func unauthorized(c echo.Context, appErr errors.AppError) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

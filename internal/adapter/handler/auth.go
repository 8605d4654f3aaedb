package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umang-projects/action-item-extractor/errors"
	authdto "github.com/umang-projects/action-item-extractor/internal/adapter/dto/auth"
	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/jwt"
)

// Auth handles token issuance
type Auth struct {
	cfg        *config.Config
	jwtManager *jwt.Manager
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, jwtManager *jwt.Manager, logger *zap.Logger) *Auth {
	return &Auth{
		cfg:        cfg,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// IssueToken handles POST /auth/token
// @Summary      Issue a service token
// @Description  Exchanges the configured API key for a short-lived JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.TokenRequest  true  "Token request"
// @Success      200      {object}  auth.TokenResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Failure      401      {object}  map[string]interface{}  "Invalid API key"
// @Router       /auth/token [post]
func (h *Auth) IssueToken(c echo.Context) error {
	var req authdto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.Auth.APIKey)) != 1 {
		if h.logger != nil {
			h.logger.Warn("rejected token request",
				zap.String("client_name", req.ClientName),
			)
		}
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	token, err := h.jwtManager.GenerateToken(req.ClientName)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	resp := authdto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwtManager.GetExpiry().Seconds()),
	}

	return HandleSuccess(h.logger, c, http.StatusOK, resp)
}

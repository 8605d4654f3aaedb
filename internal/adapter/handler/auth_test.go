package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/jwt"
	pkgvalidator "github.com/umang-projects/action-item-extractor/pkg/validator"
)

func newAuthTestEcho() (*echo.Echo, *jwt.Manager) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			APIKey:      "test-api-key",
			JWTSecret:   "test-secret",
			TokenExpiry: time.Hour,
		},
	}
	manager := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	e := echo.New()
	e.Validator = pkgvalidator.New()
	h := NewAuthHandler(cfg, manager, nil)
	e.POST("/v1/auth/token", h.IssueToken)

	return e, manager
}

func TestIssueToken_Success(t *testing.T) {
	e, manager := newAuthTestEcho()

	body := `{"api_key": "test-api-key", "client_name": "ci-pipeline"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Data.TokenType != "Bearer" {
		t.Fatalf("unexpected token type %q", resp.Data.TokenType)
	}

	claims, err := manager.ValidateToken(resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
	if claims.ClientName != "ci-pipeline" {
		t.Fatalf("unexpected client name %q", claims.ClientName)
	}
}

func TestIssueToken_WrongAPIKey(t *testing.T) {
	e, _ := newAuthTestEcho()

	body := `{"api_key": "wrong", "client_name": "ci-pipeline"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIssueToken_MissingFields(t *testing.T) {
	e, _ := newAuthTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

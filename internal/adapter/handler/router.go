package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/jwt"
	"github.com/umang-projects/action-item-extractor/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	jwtManager        *jwt.Manager
	authHandler       *Auth
	dialogueHandler   *Dialogue
	extractionHandler *Extraction
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	jwtManager *jwt.Manager,
	authHandler *Auth,
	dialogueHandler *Dialogue,
	extractionHandler *Extraction,
) *Router {
	return &Router{
		cfg:               cfg,
		jwtManager:        jwtManager,
		authHandler:       authHandler,
		dialogueHandler:   dialogueHandler,
		extractionHandler: extractionHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupDialogueRoutes(v1)
	rt.setupExtractionRoutes(v1)
}

// setupAuthRoutes configures token issuance routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")
	authGroup.POST("/token", rt.authHandler.IssueToken)
}

// setupDialogueRoutes configures dialogue management routes
func (rt *Router) setupDialogueRoutes(g *echo.Group) {
	dialogueGroup := g.Group("/dialogues")
	dialogueGroup.Use(middleware.JWTAuth(rt.jwtManager, nil))

	dialogueGroup.POST("", rt.dialogueHandler.CreateDialogue)
	dialogueGroup.GET("", rt.dialogueHandler.ListDialogues)
	dialogueGroup.GET("/:id", rt.dialogueHandler.GetDialogue)
	dialogueGroup.DELETE("/:id", rt.dialogueHandler.DeleteDialogue)

	dialogueGroup.POST("/:id/extract", rt.extractionHandler.EnqueueExtraction)
	dialogueGroup.GET("/:id/extractions", rt.extractionHandler.ListDialogueExtractions)
}

// setupExtractionRoutes configures extraction and job routes
func (rt *Router) setupExtractionRoutes(g *echo.Group) {
	extractionGroup := g.Group("/extractions")
	extractionGroup.Use(middleware.JWTAuth(rt.jwtManager, nil))
	extractionGroup.POST("", rt.extractionHandler.CreateExtraction)
	extractionGroup.GET("/:id", rt.extractionHandler.GetExtraction)

	jobGroup := g.Group("/jobs")
	jobGroup.Use(middleware.JWTAuth(rt.jwtManager, nil))
	jobGroup.GET("/:id", rt.extractionHandler.GetJob)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
		"backend":     rt.cfg.LLM.Backend,
		"model":       rt.cfg.LLM.Model,
	})
}

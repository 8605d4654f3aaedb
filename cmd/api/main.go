package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/umang-projects/action-item-extractor/internal/adapter/handler"
	"github.com/umang-projects/action-item-extractor/internal/adapter/repository"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/cache"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/database"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/storage"
	extractionUsecase "github.com/umang-projects/action-item-extractor/internal/usecase/extraction"
	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/jwt"
	"github.com/umang-projects/action-item-extractor/pkg/llm"
	"github.com/umang-projects/action-item-extractor/pkg/middleware"
	pkgvalidator "github.com/umang-projects/action-item-extractor/pkg/validator"
)

// @title           Action Item Extractor API
// @version         1.0
// @description     Converts meeting dialogue into structured JSON action items using fine-tuned model adapters

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Metrics())

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Manage schema with sql-migrate instead.")
		}
		log.Println("🔄 Running sql-migrate migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize cache (Redis if configured, in-memory otherwise)
	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient)
	} else {
		log.Println("📦 Redis disabled, using in-memory cache")
		cacheStore = cache.NewMemoryStore()
	}

	// Initialize archive storage for invalid completions
	var archive *storage.MinIOClient
	if cfg.Storage.Enabled {
		log.Println("📦 Connecting to MinIO...")
		archive, err = storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
	} else {
		log.Println("📦 Storage disabled, invalid completions will not be archived")
	}

	// Initialize repositories
	dialogueRepo := repository.NewDialogueRepository(db)
	extractionRepo := repository.NewExtractionRepository(db)
	jobRepo := repository.NewExtractionJobRepository(db)

	// Initialize model backend client
	log.Printf("🤖 Initializing %s backend (model: %s)...", cfg.LLM.Backend, cfg.LLM.Model)
	llmClient, err := llm.NewClient(&cfg.LLM, cfg.LLMTimeout())
	if err != nil {
		log.Fatalf("Failed to initialize model backend: %v", err)
	}

	// Initialize extraction service
	extractionService := extractionUsecase.NewExtractionService(
		dialogueRepo,
		extractionRepo,
		jobRepo,
		llmClient,
		cacheStore,
		archive,
		cfg,
		logger,
	)

	// Start async worker pool
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := extractionService.StartWorkerPool(workerCtx, cfg.Worker.Count); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}

	// Initialize JWT manager and handlers
	jwtManager := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authHandler := handler.NewAuthHandler(cfg, jwtManager, logger)
	dialogueHandler := handler.NewDialogueHandler(dialogueRepo, logger)
	extractionHandler := handler.NewExtractionHandler(extractionService, extractionRepo, jobRepo, logger)

	// Setup router
	router := handler.NewRouter(cfg, jwtManager, authHandler, dialogueHandler, extractionHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := extractionService.StopWorkerPool(); err != nil {
		log.Printf("Failed to stop worker pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

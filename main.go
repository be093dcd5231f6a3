package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github/itish2003/pdfchat/config"
	"github/itish2003/pdfchat/controller"
	"github/itish2003/pdfchat/logger"
	"github/itish2003/pdfchat/models"
	"github/itish2003/pdfchat/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.App.LogDir, cfg.App.LogFile, cfg.IsProduction())
	if err != nil {
		log.Fatalf("FATAL: Failed to create logger: %v", err)
	}
	defer zl.Sync()

	reader, err := services.NewPageReader(cfg.PDF.Reader, cfg.PDF.LicenseKey, zl)
	if err != nil {
		zl.Fatal("Failed to create PDF reader", zap.Error(err))
	}
	zl.Info("Using PDF reader", zap.String("reader", reader.Name()))

	extractor := services.NewPDFExtractor(reader, zl)
	configurator := services.NewBackendConfigurator(services.DefaultCredentials{
		OpenAI: cfg.Keys.OpenAI,
		Gemini: cfg.Keys.Gemini,
	}, cfg.App.LogDir)
	engine := services.NewRecursiveEngine(services.DefaultModelFactories(), services.EngineOptions{
		MaxIterations: cfg.Engine.MaxIterations,
		ChunkSize:     cfg.Engine.ChunkSize,
		ChunkOverlap:  cfg.Engine.ChunkOverlap,
	}, zl)
	orchestrator := services.NewSessionOrchestrator(extractor, configurator, engine, zl)
	store := services.NewSessionStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Dir != "" {
		startWatcher(ctx, cfg, store, orchestrator, zl)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(controller.NewSessionController(store, orchestrator, cfg.Upload.MaxBytes))

	port := cfg.App.Port
	zl.Info("PDF chat server starting", zap.String("addr", "http://localhost:"+port))
	zl.Info("Health check available", zap.String("url", "http://localhost:"+port+"/health"))

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		zl.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("Server shutdown failed", zap.Error(err))
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}

func newRouter(sessions *controller.SessionController) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware for browser clients
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "PDF Chat API",
			"version": "1.0.0",
		})
	})

	sessions.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func startWatcher(ctx context.Context, cfg *config.Config, store *services.SessionStore, orchestrator *services.SessionOrchestrator, zl *zap.Logger) {
	dir, err := services.NewDocumentDirectory(cfg.Watch.Dir)
	if err != nil {
		zl.Fatal("Failed to open watch directory", zap.Error(err))
	}
	watcher := services.NewDirectoryWatcher(dir, orchestrator, store.GetOrCreate(services.WatchedSessionID), models.BackendParams{
		Kind:      cfg.Watch.Backend,
		ModelName: cfg.Watch.Model,
		BaseURL:   cfg.Watch.BaseURL,
	}, zl)
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			zl.Error("WATCHER: stopped", zap.Error(err))
		}
	}()
}

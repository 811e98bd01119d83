package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/application/pipeline"
	"github.com/mittenshop/fulfillment/internal/infrastructure/config"
	"github.com/mittenshop/fulfillment/internal/infrastructure/logger"
	"github.com/mittenshop/fulfillment/internal/infrastructure/storage"
	"github.com/mittenshop/fulfillment/internal/interfaces/http/handler"
	"github.com/mittenshop/fulfillment/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	store, err := newManifestStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize manifest storage", zap.Error(err))
	}

	labelTemplate, err := loadLabelTemplate(cfg.Labels.TemplateFile)
	if err != nil {
		log.Fatal("Failed to read label template", zap.Error(err))
	}

	service := pipeline.NewService(log)

	r, err := router.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize router", zap.Error(err))
	}
	r.Register(handler.NewSystemHandler(cfg.App.Name, cfg.App.Env))
	r.Register(handler.NewConversionHandler(handler.ConversionHandlerConfig{
		Service:        service,
		Store:          store,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		LabelsEnabled:  cfg.Labels.Enabled,
		LabelTemplate:  labelTemplate,
	}))
	engine := r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newManifestStore(cfg *config.Config, log *zap.Logger) (pipeline.ManifestStore, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3Storage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPrefix(cfg.Storage.Prefix),
		)
	}
	return storage.NewLocalStorage(cfg.Storage.Dir)
}

func loadLabelTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
	"github.com/Brownie44l1/animal-classifier/internal/config"
	"github.com/Brownie44l1/animal-classifier/internal/handlers"
	"github.com/Brownie44l1/animal-classifier/internal/logger"
	"github.com/Brownie44l1/animal-classifier/internal/metrics"
	"github.com/Brownie44l1/animal-classifier/internal/model"
	"github.com/Brownie44l1/animal-classifier/internal/routes"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Sync()

	// If running from cmd/server, resolve relative paths from the project root
	if wd, err := os.Getwd(); err == nil && filepath.Base(wd) == "server" {
		root := filepath.Join(wd, "../..")
		cfg.ModelPath = fromRoot(root, cfg.ModelPath)
		cfg.MetadataPath = fromRoot(root, cfg.MetadataPath)
		cfg.UploadDir = fromRoot(root, cfg.UploadDir)
	}

	// The model must be loaded before the listener accepts requests.
	log.Infow("Loading model", "path", cfg.ModelPath)
	modelServer, err := model.NewServer(cfg.ModelPath, cfg.MetadataPath, cfg.OnnxLibPath)
	if err != nil {
		log.Fatalw("Failed to initialize model server", "error", err)
	}
	defer modelServer.Close()

	apiClassifier, err := classifier.New(modelServer, classifier.APILabels)
	if err != nil {
		log.Fatalw("Invalid API label table", "error", err)
	}
	formClassifier, err := classifier.New(modelServer, classifier.FormLabels)
	if err != nil {
		log.Fatalw("Invalid form label table", "error", err)
	}

	m := metrics.New()

	hm, err := handlers.NewHandlerManager(handlers.Options{
		APIClassifier:  apiClassifier,
		FormClassifier: formClassifier,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Observer:       m,
		Logger:         log,
	})
	if err != nil {
		log.Fatalw("Failed to create handlers", "error", err)
	}

	r, err := routes.SetupRoutes(hm, m, cfg.AllowedOrigin, log)
	if err != nil {
		log.Fatalw("Failed to set up routes", "error", err)
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infow("Server starting", "addr", srv.Addr, "model", cfg.ModelPath, "allowed_origin", cfg.AllowedOrigin)
	log.Infow("Classes", "api", apiClassifier.Labels(), "form", formClassifier.Labels())
	log.Info("Endpoints:")
	log.Info("  GET  /         - Upload form")
	log.Info("  POST /         - Predict from form upload")
	log.Info("  GET  /predict  - API usage message")
	log.Info("  POST /predict  - Predict from image upload (JSON)")
	log.Info("  GET  /health   - Health check")
	log.Info("  GET  /metrics  - Prometheus metrics")
	log.Infof("Upload test: curl -X POST -F \"image=@cat.jpg\" http://localhost:%s/predict", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
}

func fromRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

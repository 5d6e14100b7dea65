package main

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sdko-org/stream-gate/internal/config"
	"github.com/sdko-org/stream-gate/internal/handlers"
	httpserver "github.com/sdko-org/stream-gate/internal/http"
	"github.com/sdko-org/stream-gate/internal/registry"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	reg := registry.New(logger, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SweepInterval > 0 {
		sweeper := registry.NewSweeper(logger, reg, cfg.SweepInterval)
		go sweeper.Start(ctx)
	}

	handler := handlers.NewAccessCodeHandler(logger, cfg, reg)

	r := mux.NewRouter()
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.MetricsMiddleware)
	handlers.RegisterRoutes(r, handler)

	if err := httpserver.Serve(logger, cfg, r); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}

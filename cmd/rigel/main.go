package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/internal/catalog"
	"github.com/kailas-cloud/rigel/internal/config"
	logpkg "github.com/kailas-cloud/rigel/internal/logger"
	"github.com/kailas-cloud/rigel/internal/metrics"
	chiTransport "github.com/kailas-cloud/rigel/internal/transport/chi"
	healthuc "github.com/kailas-cloud/rigel/internal/usecase/health"
	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
	"github.com/kailas-cloud/rigel/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rigel API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.Int("schemas", len(cfg.Schemas)),
	)

	cat, err := catalog.New(cfg.Schemas)
	if err != nil {
		logger.Fatal("Invalid schema configuration", zap.Error(err))
	}

	// Redis clients block in New until the index answers or the readiness timeout passes.
	client, err := catalog.NewClient(cfg.Index, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}
	defer client.Close()
	logger.Info("Connected to index", zap.String("dialect", client.Dialect().String()))

	metrics.RegisterQueryMetrics()

	querySvc := queryuc.New(client, cat)
	healthSvc := healthuc.New(querySvc)

	server := chiTransport.NewServer(querySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

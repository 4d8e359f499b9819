// Command stubserver runs the in-memory MediAlert backend stand-in. It
// serves the production API's routes with fixture data so the client
// workflows can be exercised without the real service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medialert/medialert-client/internal/config"
	"github.com/medialert/medialert-client/internal/demo"
	"github.com/medialert/medialert-client/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// A missing .env is normal; anything else is worth knowing about.
		logging.Default().Warn("could not load .env", "error", err)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medialert stub backend",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	server := demo.NewServer(demo.ServerConfig{
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	})

	r := chi.NewRouter()
	r.Mount("/", server.Routes())
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// Package main provides the entry point for the report HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mkazarin/pr-times/internal/config"
	"github.com/mkazarin/pr-times/internal/report"
	"github.com/mkazarin/pr-times/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	dataDir := flag.String("data-dir", "data", "directory holding report.json and CSV record sets")
	flag.Parse()

	cfg := config.LoadFromEnv()
	if err := cfg.Logger.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}
	if err := cfg.Server.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	gin.SetMode(gin.ReleaseMode)
	router := report.NewRouter(*dataDir, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("report server listening", "address", srv.Addr, "data_dir", *dataDir)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server stopped unexpectedly", "error", err)
			return 1
		}
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorw("graceful shutdown failed", "error", err)
			return 1
		}
	}

	log.Infow("server stopped")
	return 0
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aashari/go-report-analyzer/internal/app"
	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/logger"
)

// @title           Medical Report Analyzer
// @version         1.0
// @description     Relays medical report images to Gemini and serves the offline application shell.

// @contact.name   API Support
// @contact.url    https://github.com/aashari/go-report-analyzer

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8082
// @BasePath  /

const shutdownTimeout = 30 * time.Second

func main() {
	// .env may carry LOG_* settings, so it is read before the logger starts
	envErr := config.LoadEnvFromMultiplePaths()

	if err := logger.InitFromEnv(); err != nil {
		_, _ = os.Stderr.WriteString("FATAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := logger.WithComponent(context.Background(), logger.ComponentNames.App)
	if envErr != nil {
		logger.Warn(logger.WithStage(ctx, logger.LogStages.Configuration), "Failed to load .env file", "error", envErr)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error(logger.WithStage(ctx, logger.LogStages.Configuration), "Failed to load configuration", err)
		os.Exit(1)
	}

	application := app.New(cfg)

	if cfg.Shell.InstallOnStartup {
		if err := application.InstallShellCache(ctx); err != nil {
			logger.Warn(ctx, "Continuing without offline shell cache", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      application.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server starting",
			"address", srv.Addr,
			"swagger_url", "http://"+srv.Addr+"/swagger/index.html",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serverErr:
		if ok {
			logger.Error(ctx, "Server failed", err)
			os.Exit(1)
		}
		return
	case sig := <-stop:
		logger.Info(logger.WithStage(ctx, logger.LogStages.Shutdown), "Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(logger.WithStage(ctx, logger.LogStages.Shutdown), "Graceful shutdown failed", err)
		os.Exit(1)
	}
	logger.Info(logger.WithStage(ctx, logger.LogStages.Shutdown), "Server stopped")
}

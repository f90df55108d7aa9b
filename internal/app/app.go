package app

import (
	"context"
	"net/http"

	"github.com/aashari/go-report-analyzer/internal/analyzer"
	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/gemini"
	"github.com/aashari/go-report-analyzer/internal/handlers"
	"github.com/aashari/go-report-analyzer/internal/health"
	"github.com/aashari/go-report-analyzer/internal/httpclient"
	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/monitoring"
	"github.com/aashari/go-report-analyzer/internal/router"
	"github.com/aashari/go-report-analyzer/internal/shellcache"
	"github.com/aashari/go-report-analyzer/web"
)

// App centralizes the application's dependencies and configuration
type App struct {
	Config      *config.Config
	Gemini      *gemini.Client
	Analyzer    *analyzer.Service
	ShellCache  *shellcache.Cache
	Metrics     *monitoring.Metrics
	APIHandlers *handlers.APIHandlers
}

// New wires every component from cfg. No network activity happens here.
func New(cfg *config.Config) *App {
	return NewWithFactory(cfg, httpclient.NewFactory(httpclient.Options{Timeout: cfg.Provider.Timeout}))
}

// NewWithFactory is New with a caller-supplied HTTP client factory
func NewWithFactory(cfg *config.Config, factory *httpclient.Factory) *App {
	ctx := logger.WithStage(logger.WithComponent(context.Background(), logger.ComponentNames.App), logger.LogStages.Initialization)

	metrics := monitoring.NewMetrics()
	client := gemini.NewClient(cfg.Provider, factory)
	service := analyzer.NewService(client, metrics)

	fetcher := shellcache.NewNetworkFetcher(
		factory.CreateClient(httpclient.Options{Timeout: cfg.Shell.InstallTimeout}),
		web.Handler(),
	)
	cache := shellcache.New(cfg.Shell, shellcache.NewRegistry(), fetcher)

	checker := health.CreateStandardHealthChecks(client, cache)
	apiHandlers := handlers.NewAPIHandlers(service, checker, cfg.Logging.Version)

	if !cfg.HasCredential() {
		logger.Warn(ctx, "GEMINI_API_KEY is not set; analysis requests will fail with a configuration error")
	}
	logger.Info(ctx, "Application initialized", "config", cfg.ToMap())

	return &App{
		Config:      cfg,
		Gemini:      client,
		Analyzer:    service,
		ShellCache:  cache,
		Metrics:     metrics,
		APIHandlers: apiHandlers,
	}
}

// SetupRoutes returns the HTTP handler for the whole service
func (a *App) SetupRoutes() http.Handler {
	return router.SetupRoutes(router.Routes{
		APIHandlers: a.APIHandlers,
		ShellCache:  a.ShellCache,
		Shell:       web.Handler(),
		Metrics:     a.Metrics,
		EnablePprof: a.Config.Server.EnablePprof,
	})
}

// InstallShellCache populates the shell cache within the configured timeout.
// A failed install is logged and leaves the cache empty; the service keeps running.
func (a *App) InstallShellCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Shell.InstallTimeout)
	defer cancel()
	return a.ShellCache.Install(ctx)
}

package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aashari/go-report-analyzer/docs"
	"github.com/aashari/go-report-analyzer/internal/handlers"
	"github.com/aashari/go-report-analyzer/internal/middleware"
	"github.com/aashari/go-report-analyzer/internal/monitoring"
	"github.com/aashari/go-report-analyzer/internal/shellcache"
)

// Routes groups what SetupRoutes needs to build the HTTP surface
type Routes struct {
	APIHandlers *handlers.APIHandlers
	ShellCache  *shellcache.Cache
	Shell       http.Handler
	Metrics     *monitoring.Metrics
	EnablePprof bool
}

// AnalyzePaths are the paths the analyze endpoint is mounted on. The second
// keeps existing front-ends that post to the serverless function path working.
var AnalyzePaths = []string{"/api/analyze", "/.netlify/functions/analyze"}

// SetupRoutes configures all routes for the application
func SetupRoutes(routes Routes) http.Handler {
	mux := http.NewServeMux()

	for _, path := range AnalyzePaths {
		mux.HandleFunc(path, routes.APIHandlers.AnalyzeHandler)
	}
	mux.HandleFunc("/health", routes.APIHandlers.HealthHandler)

	if routes.Metrics != nil {
		mux.HandleFunc("/metrics", routes.Metrics.Handler())
	}
	if routes.EnablePprof {
		monitoring.SetupPprofRoutes(mux)
	}

	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	var handler http.Handler = mux
	if routes.ShellCache != nil {
		mux.HandleFunc("/service-worker.js", shellcache.ServiceWorkerHandler(routes.ShellCache))
		if routes.Shell != nil {
			mux.Handle("/", routes.Shell)
		}
		handler = shellcache.Middleware(routes.ShellCache)(mux)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestCorrelationMiddleware,
		middleware.CORSMiddleware,
	}
	if routes.Metrics != nil {
		middlewares = append(middlewares, routes.Metrics.Middleware)
	}
	return middleware.Chain(handler, middlewares...)
}

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/aashari/go-report-analyzer/internal/handlers"
	"github.com/aashari/go-report-analyzer/internal/health"
	"github.com/aashari/go-report-analyzer/internal/monitoring"
	"github.com/aashari/go-report-analyzer/internal/shellcache"
	"github.com/aashari/go-report-analyzer/internal/types"
)

type echoAnalyzer struct{}

func (echoAnalyzer) Analyze(_ context.Context, req types.AnalysisRequest) (string, *errors.APIError) {
	return "analysis in " + req.Language, nil
}

type staticFetcher struct{}

func (staticFetcher) Fetch(_ context.Context, key string) (*shellcache.Snapshot, error) {
	return &shellcache.Snapshot{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte("cached " + key),
	}, nil
}

func newTestRoutes(t *testing.T, installed bool) Routes {
	t.Helper()
	cache := shellcache.New(config.ShellConfig{
		CacheName: "test-v1",
		Assets:    []string{"/", "/index.html"},
	}, shellcache.NewRegistry(), staticFetcher{})
	if installed {
		require.NoError(t, cache.Install(context.Background()))
	}

	return Routes{
		APIHandlers: handlers.NewAPIHandlers(echoAnalyzer{}, health.NewHealthChecker(), "test"),
		ShellCache:  cache,
		Shell: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte("live shell"))
		}),
		Metrics: monitoring.NewMetrics(),
	}
}

func TestSetupRoutes(t *testing.T) {
	handler := SetupRoutes(newTestRoutes(t, true))
	require.NotNil(t, handler)

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "analyze endpoint",
			method:         http.MethodPost,
			path:           "/api/analyze",
			body:           `{"imageData":"AAAA","mimeType":"image/png","language":"English"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"analysis":"analysis in English"`,
		},
		{
			name:           "serverless function path",
			method:         http.MethodPost,
			path:           "/.netlify/functions/analyze",
			body:           `{"imageData":"AAAA","mimeType":"image/png","language":"Italiano"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"analysis":"analysis in Italiano"`,
		},
		{
			name:           "analyze rejects GET",
			method:         http.MethodGet,
			path:           "/api/analyze",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `{"error":"Method Not Allowed"}`,
		},
		{
			name:           "preflight",
			method:         http.MethodOptions,
			path:           "/api/analyze",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "health endpoint",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
		{
			name:           "metrics endpoint",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_requests"`,
		},
		{
			name:           "service worker",
			method:         http.MethodGet,
			path:           "/service-worker.js",
			expectedStatus: http.StatusOK,
			expectedBody:   `const CACHE_NAME = "test-v1";`,
		},
		{
			name:           "cached shell",
			method:         http.MethodGet,
			path:           "/",
			expectedStatus: http.StatusOK,
			expectedBody:   "cached /",
		},
		{
			name:           "swagger ui endpoint",
			method:         http.MethodGet,
			path:           "/swagger/index.html",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "swagger doc",
			method:         http.MethodGet,
			path:           "/swagger/doc.json",
			expectedStatus: http.StatusOK,
			expectedBody:   `"/api/analyze"`,
		},
		{
			name:           "unknown path",
			method:         http.MethodGet,
			path:           "/nope",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tc.expectedBody)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSetupRoutes_EmptyCacheFallsThroughToShell(t *testing.T) {
	handler := SetupRoutes(newTestRoutes(t, false))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live shell", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestSetupRoutes_CachedShellIsTagged(t *testing.T) {
	handler := SetupRoutes(newTestRoutes(t, true))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestSetupRoutes_MetricsCountRequests(t *testing.T) {
	routes := newTestRoutes(t, true)
	handler := SetupRoutes(routes)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	assert.Equal(t, int64(2), routes.Metrics.RequestCount)
	assert.Equal(t, int64(1), routes.Metrics.StatusCodeCounts[http.StatusMethodNotAllowed])
}

func TestSetupRoutes_PprofOptIn(t *testing.T) {
	routes := newTestRoutes(t, true)
	rec := httptest.NewRecorder()
	SetupRoutes(routes).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	routes.EnablePprof = true
	rec = httptest.NewRecorder()
	SetupRoutes(routes).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package shellcache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderServiceWorker(t *testing.T) {
	script, err := RenderServiceWorker("medical-report-analyzer-v1", []string{"/", "https://cdn.tailwindcss.com"})
	require.NoError(t, err)

	js := string(script)
	assert.Contains(t, js, `const CACHE_NAME = "medical-report-analyzer-v1";`)
	assert.Contains(t, js, `const urlsToCache = ["/","https://cdn.tailwindcss.com"];`)
	assert.Contains(t, js, "cache.addAll(urlsToCache)")
	assert.Contains(t, js, "response || fetch(event.request)")
}

func TestRenderServiceWorker_EmptyAssets(t *testing.T) {
	script, err := RenderServiceWorker("c", nil)
	require.NoError(t, err)
	assert.Contains(t, string(script), "const urlsToCache = [];")
}

func TestServiceWorkerHandler(t *testing.T) {
	cache := newTestCache(allOK(), false)
	rec := httptest.NewRecorder()
	ServiceWorkerHandler(cache).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/service-worker.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"test-cache-v1"`)
}

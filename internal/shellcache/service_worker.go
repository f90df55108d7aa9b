package shellcache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"text/template"

	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

const serviceWorkerTemplate = `const CACHE_NAME = {{.CacheName}};
const urlsToCache = {{.Assets}};

self.addEventListener('install', event => {
  event.waitUntil(
    caches.open(CACHE_NAME)
      .then(cache => cache.addAll(urlsToCache))
  );
});

self.addEventListener('fetch', event => {
  event.respondWith(
    caches.match(event.request)
      .then(response => response || fetch(event.request))
  );
});
`

var serviceWorker = template.Must(template.New("service-worker").Parse(serviceWorkerTemplate))

// RenderServiceWorker produces the browser worker for the given cache name and assets
func RenderServiceWorker(cacheName string, assets []string) ([]byte, error) {
	name, err := json.Marshal(cacheName)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []string{}
	}
	list, err := json.Marshal(assets)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := serviceWorker.Execute(&buf, struct {
		CacheName string
		Assets    string
	}{CacheName: string(name), Assets: string(list)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ServiceWorkerHandler serves the browser worker rendered from cache's configuration
func ServiceWorkerHandler(cache *Cache) http.HandlerFunc {
	script, renderErr := RenderServiceWorker(cache.Name(), cache.Assets())

	return func(w http.ResponseWriter, r *http.Request) {
		if renderErr != nil {
			ctx := logger.WithComponent(r.Context(), logger.ComponentNames.ShellCache)
			logger.Error(ctx, "Failed to render service worker", renderErr)
			http.Error(w, "service worker unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set(utils.HeaderContentType, utils.ContentTypeJavaScript)
		w.Header().Set(utils.HeaderCacheControl, utils.CacheControlNoCache)
		w.Header().Set(utils.HeaderServiceWorker, "/")
		_, _ = w.Write(script)
	}
}

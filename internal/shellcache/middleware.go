package shellcache

import (
	"net/http"

	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// Middleware answers GET and HEAD requests for cached keys from the store.
// Everything else, including misses, falls through to next untouched.
func Middleware(cache *Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			snap, ok := cache.Match(r.URL.RequestURI())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logger.WithStage(logger.WithComponent(r.Context(), logger.ComponentNames.ShellCache), logger.LogStages.CacheHit)
			logger.Debug(ctx, "Serving request from shell cache", "path", r.URL.Path)

			if r.Method == http.MethodHead {
				snap.ServeHeader(w, utils.CacheHit)
				return
			}
			snap.Serve(w, utils.CacheHit)
		})
	}
}

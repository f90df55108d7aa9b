package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// unmatchedPath labels requests that ended in 404 so probing does not grow the path map
const unmatchedPath = "unmatched"

// Metrics holds application metrics
type Metrics struct {
	mu                    sync.RWMutex
	RequestCount          int64
	RequestDuration       time.Duration
	ErrorCount            int64
	PathRequestCounts     map[string]int64
	ProviderOutcomeCounts map[string]int64
	StatusCodeCounts      map[int]int64
	StartTime             time.Time
}

// NewMetrics creates an empty metrics set starting now
func NewMetrics() *Metrics {
	return &Metrics{
		PathRequestCounts:     make(map[string]int64),
		ProviderOutcomeCounts: make(map[string]int64),
		StatusCodeCounts:      make(map[int]int64),
		StartTime:             time.Now(),
	}
}

// RecordRequest records a request with its duration and status
func (m *Metrics) RecordRequest(duration time.Duration, statusCode int, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestCount++
	m.RequestDuration += duration
	m.StatusCodeCounts[statusCode]++

	if statusCode == http.StatusNotFound {
		path = unmatchedPath
	}
	if path != "" {
		m.PathRequestCounts[path]++
	}

	if statusCode >= 400 {
		m.ErrorCount++
	}
}

// RecordError records an error
func (m *Metrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCount++
}

// RecordProviderOutcome counts how an analysis ended
func (m *Metrics) RecordProviderOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderOutcomeCounts[outcome]++
}

// GetStats returns current statistics
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.StartTime)
	avgDuration := time.Duration(0)
	errorRate := 0.0
	if m.RequestCount > 0 {
		avgDuration = m.RequestDuration / time.Duration(m.RequestCount)
		errorRate = float64(m.ErrorCount) / float64(m.RequestCount)
	}
	requestsPerSecond := 0.0
	if seconds := uptime.Seconds(); seconds > 0 {
		requestsPerSecond = float64(m.RequestCount) / seconds
	}

	// Copy maps to avoid race conditions
	pathCounts := make(map[string]int64, len(m.PathRequestCounts))
	for k, v := range m.PathRequestCounts {
		pathCounts[k] = v
	}

	outcomeCounts := make(map[string]int64, len(m.ProviderOutcomeCounts))
	for k, v := range m.ProviderOutcomeCounts {
		outcomeCounts[k] = v
	}

	statusCounts := make(map[int]int64, len(m.StatusCodeCounts))
	for k, v := range m.StatusCodeCounts {
		statusCounts[k] = v
	}

	return map[string]interface{}{
		"uptime_seconds":      uptime.Seconds(),
		"total_requests":      m.RequestCount,
		"total_errors":        m.ErrorCount,
		"average_duration_ms": avgDuration.Milliseconds(),
		"requests_per_second": requestsPerSecond,
		"error_rate":          errorRate,
		"path_requests":       pathCounts,
		"provider_outcomes":   outcomeCounts,
		"status_code_counts":  statusCounts,
		"start_time":          m.StartTime.Format(time.RFC3339),
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestCount = 0
	m.RequestDuration = 0
	m.ErrorCount = 0
	m.PathRequestCounts = make(map[string]int64)
	m.ProviderOutcomeCounts = make(map[string]int64)
	m.StatusCodeCounts = make(map[int]int64)
	m.StartTime = time.Now()
}

// Middleware wraps HTTP handlers to collect metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		m.RecordRequest(time.Since(start), wrapper.statusCode, r.URL.Path)
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.statusCode = statusCode
		w.headerWritten = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	w.headerWritten = true
	return w.ResponseWriter.Write(data)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Handler returns current metrics as JSON
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(m.GetStats())
		if err != nil {
			ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Monitoring)
			logger.Error(ctx, "Failed to marshal metrics", err)
			http.Error(w, `{"error":"failed to generate metrics"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// SetupPprofRoutes adds pprof endpoints to the router
func SetupPprofRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// maxLoggedBody caps how much of a request or response body is captured for logs
const maxLoggedBody = 10 << 10

// TrackingIDSources contains information about where tracking IDs came from
type TrackingIDSources struct {
	RequestIDSource     string `json:"request_id_source"`
	CorrelationIDSource string `json:"correlation_id_source"`
}

// RequestCorrelationMiddleware assigns request and correlation IDs, echoes them
// as response headers and logs each request and response.
func RequestCorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, correlationID, sources := extractTrackingIDs(r)

		w.Header().Set(utils.HeaderRequestID, requestID)
		w.Header().Set(utils.HeaderCorrelationID, correlationID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		ctx = context.WithValue(ctx, logger.CorrelationIDKey, correlationID)
		ctx = logger.WithComponent(ctx, logger.ComponentNames.Middleware)

		logger.Debug(logger.WithStage(ctx, logger.LogStages.TrackingSetup), "Generated tracking IDs",
			"request_id_source", sources.RequestIDSource,
			"correlation_id_source", sources.CorrelationIDSource,
		)

		start := time.Now()
		wrapper := newResponseRecorder(w)

		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(wrapper, r.WithContext(ctx))
			if wrapper.statusCode >= http.StatusBadRequest {
				logStructuredResponse(ctx, wrapper, time.Since(start))
			}
			return
		}

		// Buffer at most maxLoggedBody+1 bytes; the remainder streams to next.
		prefix, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
		if err != nil {
			logger.Error(logger.WithStage(ctx, logger.LogStages.RequestFailed), "Failed to read request body", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		r.Body = &prefixedBody{Reader: io.MultiReader(bytes.NewReader(prefix), r.Body), Closer: r.Body}

		logStructuredRequest(ctx, r, prefix, len(prefix) > maxLoggedBody)
		next.ServeHTTP(wrapper, r.WithContext(ctx))
		logStructuredResponse(ctx, wrapper, time.Since(start))
	})
}

// extractTrackingIDs prefers client-supplied IDs, then the CloudFlare ray, then generates
func extractTrackingIDs(r *http.Request) (requestID, correlationID string, sources TrackingIDSources) {
	if clientRequestID := r.Header.Get(utils.HeaderRequestID); clientRequestID != "" {
		requestID = clientRequestID
		sources.RequestIDSource = "client-x-request-id"
	} else if cfRay := r.Header.Get(utils.HeaderCloudFlareRay); cfRay != "" {
		requestID = cfRay
		sources.RequestIDSource = "cloudflare-ray"
	} else {
		requestID = utils.GenerateRequestID()
		sources.RequestIDSource = "generated"
	}

	if clientCorrelationID := r.Header.Get(utils.HeaderCorrelationID); clientCorrelationID != "" {
		correlationID = clientCorrelationID
		sources.CorrelationIDSource = "client-x-correlation-id"
	} else {
		correlationID = utils.GenerateCorrelationID()
		sources.CorrelationIDSource = "generated-uuid"
	}

	return requestID, correlationID, sources
}

// isQuietPath reports paths that are only logged when they fail
func isQuietPath(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/swagger/")
}

// prefixedBody replays the logged prefix before the unread remainder
type prefixedBody struct {
	io.Reader
	io.Closer
}

// logStructuredRequest logs incoming request with nested structure.
// body is at most maxLoggedBody+1 bytes; truncated is set when more followed.
func logStructuredRequest(ctx context.Context, r *http.Request, body []byte, truncated bool) {
	requestData := map[string]interface{}{
		"method":     r.Method,
		"endpoint":   r.URL.Path,
		"user_agent": r.Header.Get(utils.HeaderUserAgent),
		"client_ip":  getClientIP(r),
		"headers":    utils.SanitizeHeaders(r.Header),
	}

	switch {
	case len(body) == 0:
	case utils.IsProduction():
		requestData["body"] = "Body omitted in production"
	case truncated:
		requestData["body"] = fmt.Sprintf("Body too large to log (more than %d bytes)", maxLoggedBody)
	default:
		var bodyData interface{}
		if err := json.Unmarshal(body, &bodyData); err == nil {
			requestData["body"] = utils.TruncateBase64InData(bodyData)
		} else {
			requestData["body"] = fmt.Sprintf("Non-JSON body omitted (%d bytes)", len(body))
		}
	}

	logger.Info(logger.WithStage(ctx, logger.LogStages.RequestReceived), "Incoming request",
		"request", requestData,
	)
}

// logStructuredResponse logs outgoing response with nested structure
func logStructuredResponse(ctx context.Context, w *responseRecorder, duration time.Duration) {
	responseData := map[string]interface{}{
		"status_code":    w.statusCode,
		"duration_ms":    duration.Milliseconds(),
		"content_length": w.written,
		"headers":        utils.SanitizeHeaders(w.Header()),
	}

	if w.body.Len() > 0 && !utils.IsProduction() && strings.HasPrefix(w.Header().Get(utils.HeaderContentType), utils.ContentTypeJSON) {
		var bodyData interface{}
		if err := json.Unmarshal(w.body.Bytes(), &bodyData); err == nil {
			responseData["body"] = utils.TruncateBase64InData(bodyData)
		}
	}

	if w.statusCode >= http.StatusBadRequest {
		logger.Warn(logger.WithStage(ctx, logger.LogStages.RequestFailed), "Request failed",
			"response", responseData,
		)
		return
	}
	logger.Info(logger.WithStage(ctx, logger.LogStages.RequestCompleted), "Request completed",
		"response", responseData,
	)
}

// getClientIP extracts client IP with priority cascade
func getClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get(utils.HeaderXForwardedFor); forwardedFor != "" {
		return strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}
	if realIP := r.Header.Get(utils.HeaderXRealIP); realIP != "" {
		return realIP
	}
	if cfIP := r.Header.Get(utils.HeaderCFConnectingIP); cfIP != "" {
		return cfIP
	}
	return r.RemoteAddr
}

// responseRecorder passes writes through and keeps a bounded copy for logging
type responseRecorder struct {
	http.ResponseWriter
	statusCode    int
	body          bytes.Buffer
	written       int
	headerWritten bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	if remaining := maxLoggedBody - w.body.Len(); remaining > 0 {
		if len(data) < remaining {
			remaining = len(data)
		}
		w.body.Write(data[:remaining])
	}
	n, err := w.ResponseWriter.Write(data)
	w.written += n
	return n, err
}

// Flush implements http.Flusher
func (w *responseRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

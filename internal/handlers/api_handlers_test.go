package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/aashari/go-report-analyzer/internal/health"
	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/types"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	if err := logger.Init(logger.DefaultConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	m.Run()
}

type stubAnalyzer struct {
	calls    int32
	analysis string
	err      *errors.APIError
	last     types.AnalysisRequest
}

func (s *stubAnalyzer) Analyze(_ context.Context, req types.AnalysisRequest) (string, *errors.APIError) {
	atomic.AddInt32(&s.calls, 1)
	s.last = req
	return s.analysis, s.err
}

type credential bool

func (c credential) HasCredential() bool { return bool(c) }

type shellState bool

func (s shellState) Name() string      { return "medical-report-analyzer-v1" }
func (s shellState) Installed() bool   { return bool(s) }
func (s shellState) Len() int          { return 0 }
func (s shellState) LastError() string { return "" }

const validBody = `{"imageData":"iVBORw0KGgo=","mimeType":"image/png","language":"English"}`

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	return body["error"]
}

func TestAnalyzeHandler_Success(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: "### Content Summary\nAll good"}
	h := NewAPIHandlers(analyzer, nil, "test")

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(validBody)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"analysis":"### Content Summary\nAll good"}`, rec.Body.String())
	assert.Equal(t, "English", analyzer.last.Language)
	assert.Equal(t, "image/png", analyzer.last.MimeType)
}

func TestAnalyzeHandler_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			analyzer := &stubAnalyzer{}
			h := NewAPIHandlers(analyzer, nil, "test")

			rec := httptest.NewRecorder()
			h.AnalyzeHandler(rec, httptest.NewRequest(method, "/api/analyze", strings.NewReader(validBody)))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "Method Not Allowed", decodeError(t, rec))
			assert.Equal(t, int32(0), atomic.LoadInt32(&analyzer.calls))
		})
	}
}

func TestAnalyzeHandler_InvalidJSON(t *testing.T) {
	analyzer := &stubAnalyzer{}
	h := NewAPIHandlers(analyzer, nil, "test")

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{not json`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "invalid character")
	assert.Equal(t, int32(0), atomic.LoadInt32(&analyzer.calls))
}

func TestAnalyzeHandler_PassesFieldsThroughUnchecked(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: "ok"}
	h := NewAPIHandlers(analyzer, nil, "test")

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"imageData":"AAAA","language":""}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&analyzer.calls))
	assert.Equal(t, types.AnalysisRequest{ImageData: "AAAA"}, analyzer.last)
}

func TestAnalyzeHandler_PropagatesAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *errors.APIError
		status  int
		message string
	}{
		{"blocked", errors.NewBlockedError(), http.StatusBadRequest, errors.MsgBlocked},
		{"malformed", errors.NewMalformedResponseError(), http.StatusInternalServerError, errors.MsgMalformed},
		{"missing credential", errors.NewMissingCredentialError(), http.StatusInternalServerError, errors.MsgMissingCredential},
		{"provider", errors.NewProviderError(http.StatusForbidden, "Forbidden"), http.StatusForbidden, "Error from the Gemini API: Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAPIHandlers(&stubAnalyzer{err: tt.err}, nil, "test")

			rec := httptest.NewRecorder()
			h.AnalyzeHandler(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(validBody)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		credential bool
		shell      bool
		status     string
		services   map[string]string
	}{
		{
			name:       "healthy",
			credential: true,
			shell:      true,
			status:     "healthy",
			services:   map[string]string{"provider_credential": "up", "shell_cache": "up"},
		},
		{
			name:       "degraded without credential",
			credential: false,
			shell:      true,
			status:     "degraded",
			services:   map[string]string{"provider_credential": "down", "shell_cache": "up"},
		},
		{
			name:       "degraded without shell cache",
			credential: true,
			shell:      false,
			status:     "degraded",
			services:   map[string]string{"provider_credential": "up", "shell_cache": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := health.CreateStandardHealthChecks(credential(tt.credential), shellState(tt.shell))
			h := NewAPIHandlers(&stubAnalyzer{}, checker, "abc123")

			rec := httptest.NewRecorder()
			h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.services, resp.Services)
			assert.Equal(t, "abc123", resp.Details["version"])
			assert.Contains(t, resp.Details, "uptime")
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}

func TestNewAPIHandlersDefaultsVersion(t *testing.T) {
	h := NewAPIHandlers(&stubAnalyzer{}, nil, "")
	assert.Equal(t, "unknown", h.Version)
}

package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/types"
)

const analyzeBody = `{"imageData":"iVBORw0KGgo=","mimeType":"image/png","language":"English"}`

type fakeProvider struct {
	*httptest.Server
	calls   int32
	status  int
	payload string
	lastKey atomic.Value
	lastReq atomic.Value
}

func newFakeProvider(t *testing.T, status int, payload string) *fakeProvider {
	t.Helper()
	p := &fakeProvider{status: status, payload: payload}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&p.calls, 1)
		p.lastKey.Store(r.URL.Query().Get("key"))
		body, _ := io.ReadAll(r.Body)
		p.lastReq.Store(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(p.status)
		_, _ = w.Write([]byte(p.payload))
	}))
	t.Cleanup(p.Close)
	return p
}

func newCDN(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte("console.log('cdn')"))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func testConfig(providerURL, apiKey string, assets ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Provider.BaseURL = providerURL
	cfg.Provider.APIKey = apiKey
	cfg.Provider.Timeout = 5 * time.Second
	cfg.Shell.InstallTimeout = 5 * time.Second
	cfg.Shell.Assets = append([]string{"/", "/index.html"}, assets...)
	cfg.Logging.Version = "test"
	return cfg
}

func post(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestAnalyzeEndToEnd(t *testing.T) {
	provider := newFakeProvider(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"### Content Summary\nfine"}]}}]}`)
	application := New(testConfig(provider.URL, "test-key"))
	handler := application.SetupRoutes()

	rec := post(handler, "/api/analyze", analyzeBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"analysis":"### Content Summary\nfine"}`, rec.Body.String())
	assert.Equal(t, "test-key", provider.lastKey.Load())

	var sent types.GenerateContentRequest
	require.NoError(t, json.Unmarshal(provider.lastReq.Load().([]byte), &sent))
	require.Len(t, sent.Contents, 1)
	require.Len(t, sent.Contents[0].Parts, 2)
	assert.Contains(t, *sent.Contents[0].Parts[0].Text, "English")
	assert.Equal(t, "iVBORw0KGgo=", sent.Contents[0].Parts[1].InlineData.Data)

	assert.Equal(t, int64(1), application.Metrics.GetStats()["provider_outcomes"].(map[string]int64)["success"])
}

func TestAnalyzeErrorsEndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		payload    string
		wantStatus int
		wantError  string
	}{
		{"provider failure", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests, "Error from the Gemini API: Too Many Requests"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, http.StatusBadRequest, "The analysis was blocked due to safety restrictions."},
		{"empty", http.StatusOK, `{}`, http.StatusInternalServerError, "The API response is invalid or empty."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeProvider(t, tt.status, tt.payload)
			handler := New(testConfig(provider.URL, "key")).SetupRoutes()

			rec := post(handler, "/api/analyze", analyzeBody)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "quota")
		})
	}
}

func TestAnalyzeForwardsEmptyFieldsToProvider(t *testing.T) {
	provider := newFakeProvider(t, http.StatusBadRequest, `{"error":{"message":"Provided image is not valid."}}`)
	handler := New(testConfig(provider.URL, "key")).SetupRoutes()

	rec := post(handler, "/api/analyze", `{"imageData":"","mimeType":"image/png","language":""}`)

	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Error from the Gemini API: Bad Request"}`, rec.Body.String())

	var sent types.GenerateContentRequest
	require.NoError(t, json.Unmarshal(provider.lastReq.Load().([]byte), &sent))
	assert.Contains(t, *sent.Contents[0].Parts[0].Text, "Reply exclusively in the following language: .")
}

func TestAnalyzeTransportFailureHidesCredential(t *testing.T) {
	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	tests := []struct {
		name    string
		url     string
		timeout time.Duration
	}{
		{"connection refused", closedURL, 5 * time.Second},
		{"timeout", slow.URL, 50 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.url, "SUPERSECRETKEY")
			cfg.Provider.Timeout = tt.timeout
			handler := New(cfg).SetupRoutes()

			rec := post(handler, "/api/analyze", analyzeBody)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), "SUPERSECRETKEY")
			assert.NotContains(t, rec.Body.String(), "key=")

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMissingCredentialNeverCallsProvider(t *testing.T) {
	provider := newFakeProvider(t, http.StatusOK, `{}`)
	application := New(testConfig(provider.URL, ""))
	handler := application.SetupRoutes()

	rec := post(handler, "/api/analyze", analyzeBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&provider.calls))

	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, health.Body.String(), `"status":"degraded"`)
	assert.Contains(t, health.Body.String(), `"provider_credential":"down"`)
}

func TestShellCacheInstallAndServe(t *testing.T) {
	provider := newFakeProvider(t, http.StatusOK, `{}`)
	cdn, cdnHits := newCDN(t)
	application := New(testConfig(provider.URL, "key", cdn.URL+"/marked.min.js"))
	handler := application.SetupRoutes()

	require.NoError(t, application.InstallShellCache(context.Background()))
	assert.True(t, application.ShellCache.Installed())
	assert.Equal(t, 3, application.ShellCache.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(cdnHits))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Medical Report Analyzer")

	snap, hit, err := application.ShellCache.Fetch(context.Background(), cdn.URL+"/marked.min.js")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "console.log('cdn')", string(snap.Body))
	assert.Equal(t, int32(1), atomic.LoadInt32(cdnHits))

	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, health.Body.String(), `"status":"healthy"`)
}

func TestShellCacheInstallFailureKeepsServing(t *testing.T) {
	provider := newFakeProvider(t, http.StatusOK, `{}`)
	cdn, _ := newCDN(t)
	cdn.Close()

	application := New(testConfig(provider.URL, "key", cdn.URL+"/tailwind.js"))
	handler := application.SetupRoutes()

	require.Error(t, application.InstallShellCache(context.Background()))
	assert.Equal(t, 0, application.ShellCache.Len())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Medical Report Analyzer")
}

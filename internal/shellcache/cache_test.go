package shellcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-report-analyzer/internal/config"
)

// countingFetcher serves canned snapshots and counts every call per key
type countingFetcher struct {
	mu        sync.Mutex
	responses map[string]*Snapshot
	failures  map[string]error
	calls     map[string]int
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		responses: make(map[string]*Snapshot),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *countingFetcher) Fetch(_ context.Context, key string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	if snap, ok := f.responses[key]; ok {
		return snap.clone(), nil
	}
	return &Snapshot{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
}

func (f *countingFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func okSnapshot(body string) *Snapshot {
	return &Snapshot{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte(body),
	}
}

var testAssets = []string{"/", "/index.html", "https://cdn.example/app.js"}

func newTestCache(fetcher Fetcher, tolerant bool) *Cache {
	return New(config.ShellConfig{
		CacheName:       "test-cache-v1",
		Assets:          testAssets,
		TolerantInstall: tolerant,
	}, NewRegistry(), fetcher)
}

func allOK() *countingFetcher {
	f := newCountingFetcher()
	for _, key := range testAssets {
		f.responses[key] = okSnapshot("body of " + key)
	}
	return f
}

func TestInstall_StoresEveryAsset(t *testing.T) {
	fetcher := allOK()
	cache := newTestCache(fetcher, false)

	require.NoError(t, cache.Install(context.Background()))
	assert.True(t, cache.Installed())
	assert.Equal(t, 3, cache.Len())
	assert.ElementsMatch(t, testAssets, cache.Store().Keys())
	assert.Equal(t, "test-cache-v1", cache.Store().Name())
}

func TestInstall_OneFailureStoresNothing(t *testing.T) {
	fetcher := allOK()
	fetcher.failures["https://cdn.example/app.js"] = errors.New("connection refused")
	cache := newTestCache(fetcher, false)

	err := cache.Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, cache.Installed())
	assert.Equal(t, 0, cache.Len())
	assert.Contains(t, cache.LastError(), "connection refused")
}

func TestInstall_NonOKStatusFails(t *testing.T) {
	fetcher := allOK()
	fetcher.responses["/index.html"] = &Snapshot{StatusCode: http.StatusInternalServerError, Header: http.Header{}}
	cache := newTestCache(fetcher, false)

	err := cache.Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, 0, cache.Len())
}

func TestInstall_TolerantKeepsSuccesses(t *testing.T) {
	fetcher := allOK()
	fetcher.failures["https://cdn.example/app.js"] = errors.New("timeout")
	cache := newTestCache(fetcher, true)

	err := cache.Install(context.Background())
	require.Error(t, err)
	assert.False(t, cache.Installed())
	assert.ElementsMatch(t, []string{"/", "/index.html"}, cache.Store().Keys())
}

func TestFetch_HitNeverTouchesNetwork(t *testing.T) {
	fetcher := allOK()
	cache := newTestCache(fetcher, false)
	require.NoError(t, cache.Install(context.Background()))
	before := fetcher.total()

	snap, hit, err := cache.Fetch(context.Background(), "/index.html")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "body of /index.html", string(snap.Body))
	assert.Equal(t, "text/plain", snap.Header.Get("Content-Type"))
	assert.Equal(t, before, fetcher.total())
}

func TestFetch_MissGoesToNetworkAndIsNotStored(t *testing.T) {
	fetcher := allOK()
	fetcher.responses["/api/other"] = okSnapshot("fresh")
	cache := newTestCache(fetcher, false)
	require.NoError(t, cache.Install(context.Background()))

	for i := 0; i < 2; i++ {
		snap, hit, err := cache.Fetch(context.Background(), "/api/other")
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "fresh", string(snap.Body))
	}
	assert.Equal(t, 2, fetcher.calls["/api/other"])

	_, stored := cache.Match("/api/other")
	assert.False(t, stored)
	assert.Equal(t, 3, cache.Len())
}

func TestFetch_MissPropagatesNetworkError(t *testing.T) {
	fetcher := newCountingFetcher()
	fetcher.failures["/offline"] = errors.New("network down")
	cache := newTestCache(fetcher, false)

	_, hit, err := cache.Fetch(context.Background(), "/offline")
	assert.False(t, hit)
	assert.EqualError(t, err, "network down")
}

func TestReset(t *testing.T) {
	registry := NewRegistry()
	cache := New(config.ShellConfig{CacheName: "c", Assets: testAssets}, registry, allOK())
	require.NoError(t, cache.Install(context.Background()))
	require.True(t, registry.Has("c"))

	cache.Reset()
	assert.False(t, registry.Has("c"))
	assert.False(t, cache.Installed())
	assert.Equal(t, 0, cache.Len())
}

func TestNetworkFetcher(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("body{}"))
	}))
	defer origin.Close()

	local := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	fetcher := NewNetworkFetcher(origin.Client(), local)

	remote, err := fetcher.Fetch(context.Background(), origin.URL+"/font.css")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, remote.StatusCode)
	assert.Equal(t, "text/css", remote.Header.Get("Content-Type"))
	assert.Equal(t, "body{}", string(remote.Body))

	shell, err := fetcher.Fetch(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, shell.StatusCode)
	assert.Equal(t, "<html></html>", string(shell.Body))

	missing, err := fetcher.Fetch(context.Background(), "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestNetworkFetcher_NoLocalHandler(t *testing.T) {
	_, err := NewNetworkFetcher(nil, nil).Fetch(context.Background(), "/")
	assert.Error(t, err)
}

package shellcache

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Fetcher retrieves an asset from its origin
type Fetcher interface {
	Fetch(ctx context.Context, key string) (*Snapshot, error)
}

// NetworkFetcher fetches absolute URLs over HTTP and relative paths from
// the local application handler, in-process.
type NetworkFetcher struct {
	client *http.Client
	local  http.Handler
}

// NewNetworkFetcher creates a fetcher. local may be nil when every asset is absolute.
func NewNetworkFetcher(client *http.Client, local http.Handler) *NetworkFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &NetworkFetcher{client: client, local: local}
}

// Fetch returns whatever the origin answered, including non-2xx statuses
func (f *NetworkFetcher) Fetch(ctx context.Context, key string) (*Snapshot, error) {
	if isRelative(key) {
		return f.fetchLocal(ctx, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", key, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return snapshotFromResponse(resp)
}

func (f *NetworkFetcher) fetchLocal(ctx context.Context, path string) (*Snapshot, error) {
	if f.local == nil {
		return nil, fmt.Errorf("no local handler for %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	rec := &bufferedResponse{header: make(http.Header)}
	f.local.ServeHTTP(rec, req)
	return rec.snapshot(), nil
}

func isRelative(key string) bool {
	return strings.HasPrefix(key, "/") && !strings.HasPrefix(key, "//")
}

// bufferedResponse captures an in-process handler's answer
type bufferedResponse struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) snapshot() *Snapshot {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	header := b.header.Clone()
	header.Del("Content-Length")
	return &Snapshot{StatusCode: status, Header: header, Body: bytes.Clone(b.body.Bytes())}
}

// Package shellcache keeps a named, cache-first copy of the application shell.
// Install populates a store all-or-nothing; Fetch serves stored snapshots
// verbatim and goes to the network only on a miss, without writing back.
package shellcache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aashari/go-report-analyzer/internal/utils"
)

// maxSnapshotSize bounds a single stored asset
const maxSnapshotSize = 10 << 20

// Snapshot is a stored response: status, headers and body exactly as fetched
type Snapshot struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the snapshot is a successful response
func (s *Snapshot) OK() bool {
	return s.StatusCode >= 200 && s.StatusCode <= 299
}

// Serve writes the snapshot to w unchanged, tagging it with the cache status
func (s *Snapshot) Serve(w http.ResponseWriter, cacheStatus string) {
	s.ServeHeader(w, cacheStatus)
	_, _ = w.Write(s.Body)
}

// ServeHeader writes the status and headers Serve would, without the body.
// Content-Length still reports the stored body's size.
func (s *Snapshot) ServeHeader(w http.ResponseWriter, cacheStatus string) {
	header := w.Header()
	for key, values := range s.Header {
		header[key] = append([]string(nil), values...)
	}
	header.Set(utils.HeaderContentLength, strconv.Itoa(len(s.Body)))
	if cacheStatus != "" {
		header.Set(utils.HeaderXCache, cacheStatus)
	}
	w.WriteHeader(s.StatusCode)
}

func (s *Snapshot) clone() *Snapshot {
	return &Snapshot{
		StatusCode: s.StatusCode,
		Header:     s.Header.Clone(),
		Body:       bytes.Clone(s.Body),
	}
}

// snapshotFromResponse reads resp fully and closes its body
func snapshotFromResponse(resp *http.Response) (*Snapshot, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxSnapshotSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxSnapshotSize)
	}

	header := resp.Header.Clone()
	header.Del(utils.HeaderContentLength)
	return &Snapshot{StatusCode: resp.StatusCode, Header: header, Body: body}, nil
}

package shellcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/logger"
)

// Cache binds a named store to its asset list and a fetcher
type Cache struct {
	name      string
	assets    []string
	tolerant  bool
	registry  *Registry
	fetcher   Fetcher
	installed atomic.Bool
	lastErr   atomic.Value
}

// New creates the cache described by cfg. The store is opened lazily by Install.
func New(cfg config.ShellConfig, registry *Registry, fetcher Fetcher) *Cache {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Cache{
		name:     cfg.CacheName,
		assets:   append([]string(nil), cfg.Assets...),
		tolerant: cfg.TolerantInstall,
		registry: registry,
		fetcher:  fetcher,
	}
}

// Name returns the cache name
func (c *Cache) Name() string {
	return c.name
}

// Assets returns the configured asset list
func (c *Cache) Assets() []string {
	return append([]string(nil), c.assets...)
}

// Store returns the named store
func (c *Cache) Store() *Store {
	return c.registry.Open(c.name)
}

// Installed reports whether the last Install completed without error
func (c *Cache) Installed() bool {
	return c.installed.Load()
}

// Len returns the number of stored assets
func (c *Cache) Len() int {
	if !c.registry.Has(c.name) {
		return 0
	}
	return c.Store().Len()
}

// LastError returns the message of the last failed install, if any
func (c *Cache) LastError() string {
	if msg, ok := c.lastErr.Load().(string); ok {
		return msg
	}
	return ""
}

type fetched struct {
	key  string
	snap *Snapshot
}

// Install fetches every asset concurrently. Unless the cache is tolerant, a
// single failed fetch or non-2xx answer stores nothing and fails the install.
// A tolerant install keeps what succeeded and returns the joined failures.
func (c *Cache) Install(ctx context.Context) error {
	ctx = logger.WithStage(logger.WithComponent(ctx, logger.ComponentNames.ShellCache), logger.LogStages.CacheInstall)
	start := time.Now()

	logger.Info(ctx, "Installing shell cache",
		"cache_name", c.name,
		"asset_count", len(c.assets),
		"tolerant", c.tolerant,
	)

	var (
		results []fetched
		err     error
	)
	if c.tolerant {
		results, err = c.fetchTolerant(ctx)
	} else {
		results, err = c.fetchAll(ctx)
	}

	if len(results) > 0 {
		entries := make(map[string]*Snapshot, len(results))
		for _, r := range results {
			entries[r.key] = r.snap
		}
		c.Store().PutAll(entries)
	}

	if err != nil {
		c.installed.Store(false)
		c.lastErr.Store(err.Error())
		logger.Error(ctx, "Shell cache install failed", err,
			"cache_name", c.name,
			"stored", len(results),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	c.installed.Store(true)
	c.lastErr.Store("")
	logger.Info(ctx, "Shell cache installed",
		"cache_name", c.name,
		"stored", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// fetchAll returns every snapshot or none
func (c *Cache) fetchAll(ctx context.Context) ([]fetched, error) {
	results := make([]fetched, len(c.assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range c.assets {
		g.Go(func() error {
			snap, err := c.fetchOK(gctx, key)
			if err != nil {
				return err
			}
			results[i] = fetched{key: key, snap: snap}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchTolerant lets every fetch finish and keeps the successful ones
func (c *Cache) fetchTolerant(ctx context.Context) ([]fetched, error) {
	var (
		mu      sync.Mutex
		results []fetched
		errs    []error
		g       errgroup.Group
	)
	for _, key := range c.assets {
		g.Go(func() error {
			snap, err := c.fetchOK(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			results = append(results, fetched{key: key, snap: snap})
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}

func (c *Cache) fetchOK(ctx context.Context, key string) (*Snapshot, error) {
	snap, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if !snap.OK() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", key, snap.StatusCode)
	}
	return snap, nil
}

// Match returns the stored snapshot for key without touching the network
func (c *Cache) Match(key string) (*Snapshot, bool) {
	if !c.registry.Has(c.name) {
		return nil, false
	}
	return c.Store().Match(key)
}

// Fetch serves key cache-first. A hit never reaches the network; a miss is
// fetched and returned as-is, never written to the store.
func (c *Cache) Fetch(ctx context.Context, key string) (*Snapshot, bool, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.ShellCache)

	if snap, ok := c.Match(key); ok {
		logger.Debug(logger.WithStage(ctx, logger.LogStages.CacheHit), "Serving asset from shell cache", "key", key)
		return snap, true, nil
	}

	logger.Debug(logger.WithStage(ctx, logger.LogStages.CacheMiss), "Asset not cached, fetching from network", "key", key)
	snap, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return snap, false, nil
}

// Reset drops the named store, discarding every entry
func (c *Cache) Reset() {
	c.registry.Delete(c.name)
	c.installed.Store(false)
}

package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mchmarny/bureau/pkg/tradeline"
)

// loadTimeout bounds a shared load, which outlives the caller that started it.
const loadTimeout = 5 * time.Minute

// LoadObserver is notified after every load attempt.
type LoadObserver interface {
	ObserveLoad(source string, rows int, d time.Duration, err error)
}

// Cache holds the loaded tradeline table in memory. The first Get loads the
// source; concurrent callers share that load. Safe for concurrent use.
type Cache struct {
	loader   Loader
	observer LoadObserver

	group singleflight.Group

	mu       sync.RWMutex
	rows     []tradeline.Record
	loaded   bool
	loadedAt time.Time
}

// NewCache returns an empty cache over loader. observer may be nil.
func NewCache(loader Loader, observer LoadObserver) *Cache {
	return &Cache{loader: loader, observer: observer}
}

// Name returns the loader name.
func (c *Cache) Name() string {
	return c.loader.Name()
}

// Get returns the cached table, loading it on first use. The returned slice
// is shared and must not be modified.
func (c *Cache) Get(ctx context.Context) ([]tradeline.Record, error) {
	c.mu.RLock()
	if c.loaded {
		rows := c.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("load", func() (any, error) {
		c.mu.RLock()
		if c.loaded {
			rows := c.rows
			c.mu.RUnlock()
			return rows, nil
		}
		c.mu.RUnlock()

		return c.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]tradeline.Record), nil
}

// Reload reads the source again. On failure the previous table is kept.
func (c *Cache) Reload(ctx context.Context) (int, error) {
	v, err, _ := c.group.Do("load", func() (any, error) {
		return c.load(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(v.([]tradeline.Record)), nil
}

// Invalidate drops the cached table so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
	c.loaded = false
	c.loadedAt = time.Time{}
}

// LoadedAt returns when the table was last loaded, zero when it is not.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Cache) load(ctx context.Context) ([]tradeline.Record, error) {
	// waiters share this load, so one caller's cancellation must not fail them all
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	start := time.Now()
	rows, err := c.loader.Load(ctx)
	d := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveLoad(c.loader.Name(), len(rows), d, err)
	}
	if err != nil {
		slog.Error("failed to load source", "source", c.loader.Name(), "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.rows = rows
	c.loaded = true
	c.loadedAt = time.Now()
	c.mu.Unlock()

	slog.Info("source loaded", "source", c.loader.Name(), "rows", len(rows), "duration", d)
	return rows, nil
}

package dataset

import (
	"context"
	"sync"
	"time"

	"hpoannotate/domain/annotation"
	"hpoannotate/internal"
	"hpoannotate/ports"

	"golang.org/x/sync/singleflight"
)

// Cache holds the records shared by every session. The slice is read-only
// once published; sessions copy what they need into their own table.
type Cache struct {
	reader ports.DatasetReader
	group  singleflight.Group
	logger *internal.Logger
	onLoad func(err error)

	mu       sync.RWMutex
	records  []annotation.Record
	loaded   bool
	loadedAt time.Time
}

// Status describes the cache for health and state endpoints
type Status struct {
	Path     string    `json:"path"`
	Loaded   bool      `json:"loaded"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// Option configures a Cache
type Option func(*Cache)

// WithLoadObserver is called after every read of the underlying file
func WithLoadObserver(fn func(err error)) Option {
	return func(c *Cache) { c.onLoad = fn }
}

// NewCache creates an empty cache over reader
func NewCache(reader ports.DatasetReader, opts ...Option) *Cache {
	c := &Cache{
		reader: reader,
		logger: internal.DefaultLogger.With("dataset"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Records returns the dataset, reading it on first use. Concurrent first
// calls share a single read, which runs detached from the first caller's
// cancellation. Failures are not cached, so a corrected file is picked up by
// the next caller.
func (c *Cache) Records(ctx context.Context) ([]annotation.Record, error) {
	if records, ok := c.cached(); ok {
		return records, nil
	}

	readCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do("records", func() (interface{}, error) {
		if records, ok := c.cached(); ok {
			return records, nil
		}

		records, err := c.reader.ReadRecords(readCtx)
		if c.onLoad != nil {
			c.onLoad(err)
		}
		if err != nil {
			c.logger.Error("Failed to load %s: %v", c.reader.Path(), err)
			return nil, err
		}
		if records == nil {
			records = []annotation.Record{}
		}

		c.mu.Lock()
		c.records = records
		c.loaded = true
		c.loadedAt = time.Now()
		c.mu.Unlock()

		c.logger.Info("Dataset cached (%d records)", len(records))
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Trace("Shared in-flight dataset load")
	}
	return v.([]annotation.Record), nil
}

func (c *Cache) cached() ([]annotation.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records, c.loaded
}

// Loader adapts the cache to a session loader
func (c *Cache) Loader() annotation.Loader {
	return c.Records
}

// Status reports whether the dataset has been loaded
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Path:     c.reader.Path(),
		Loaded:   c.loaded,
		Count:    len(c.records),
		LoadedAt: c.loadedAt,
	}
}

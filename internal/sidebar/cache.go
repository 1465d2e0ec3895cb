// Package sidebar caches the navigation sidebar of one documentation version.
//
// The cache holds at most one entry. Every fetch carries a generation token;
// a completion is committed only while its generation is still the latest
// one started, so a slow response for a version the user already left can
// never overwrite the sidebar of the version they are on.
package sidebar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/fetch"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// Entry is the cached sidebar and the version it belongs to.
type Entry struct {
	Version versioning.ID
	Data    *content.SidebarData
	// Stale entries are still served for their version but refetched on the
	// next Ensure.
	Stale bool
}

// Update is delivered to the observer when the latest fetch settles.
type Update struct {
	Version    versioning.ID
	Generation uint64
	Data       *content.SidebarData // nil on failure
	Err        error
}

// Observer receives settled updates. It is called outside the cache lock and
// from the fetch goroutine.
type Observer func(Update)

type flight struct {
	version    versioning.ID
	generation uint64
}

// Cache is a single-entry, version-keyed sidebar cache. Safe for concurrent use.
type Cache struct {
	fetcher  fetch.Fetcher
	observer Observer
	recorder metrics.Recorder
	logger   *slog.Logger

	mu         sync.Mutex
	entry      *Entry
	generation uint64
	inflight   *flight

	wg sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

func WithObserver(o Observer) Option { return func(c *Cache) { c.observer = o } }

func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache backed by f.
func New(f fetch.Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:  f,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure makes the sidebar for version v available. It returns true when a
// fetch was started, and false when the cached entry already serves v or a
// fetch for v is already the latest in flight.
//
// A hit also supersedes any in-flight fetch for another version.
func (c *Cache) Ensure(ctx context.Context, v versioning.ID) bool {
	c.mu.Lock()
	if c.entry != nil && !c.entry.Stale && c.entry.Version == v {
		if c.inflight != nil {
			c.generation++
			c.inflight = nil
		}
		c.mu.Unlock()
		c.recorder.IncSidebarLookup(metrics.LookupHit)
		return false
	}
	if c.inflight != nil && c.inflight.version == v {
		c.mu.Unlock()
		c.recorder.IncSidebarLookup(metrics.LookupDedup)
		return false
	}
	c.generation++
	fl := &flight{version: v, generation: c.generation}
	c.inflight = fl
	c.wg.Add(1)
	c.mu.Unlock()

	c.recorder.IncSidebarLookup(metrics.LookupMiss)
	c.logger.DebugContext(ctx, "Fetching sidebar",
		logfields.Version(string(v)), logfields.Generation(fl.generation))

	go c.run(ctx, fl)
	return true
}

func (c *Cache) run(ctx context.Context, fl *flight) {
	defer c.wg.Done()

	key := route.SidebarPath(fl.version)
	start := time.Now()
	data, err := c.load(ctx, key)
	c.recorder.ObserveFetchDuration(metrics.FetchSidebar, time.Since(start), err == nil)

	c.mu.Lock()
	if c.inflight != fl {
		c.mu.Unlock()
		c.recorder.IncStaleDiscard(metrics.FetchSidebar)
		c.logger.DebugContext(ctx, "Discarding superseded sidebar",
			logfields.Version(string(fl.version)), logfields.Generation(fl.generation))
		return
	}
	c.inflight = nil
	if err == nil {
		c.entry = &Entry{Version: fl.version, Data: data}
	}
	observer := c.observer
	c.mu.Unlock()

	if err != nil {
		c.logger.WarnContext(ctx, "Sidebar fetch failed",
			logfields.Version(string(fl.version)), logfields.FetchKey(key), logfields.Error(err))
	}
	if observer != nil {
		observer(Update{Version: fl.version, Generation: fl.generation, Data: data, Err: err})
	}
}

func (c *Cache) load(ctx context.Context, key string) (*content.SidebarData, error) {
	raw, err := c.fetcher.FetchJSON(ctx, key)
	if err != nil {
		return nil, err
	}
	return content.DecodeSidebar(raw)
}

// Lookup returns the cached sidebar when it belongs to v.
func (c *Cache) Lookup(v versioning.ID) (*content.SidebarData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || c.entry.Version != v {
		return nil, false
	}
	return c.entry.Data, true
}

// Entry returns a copy of the cached entry.
func (c *Cache) Entry() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return Entry{}, false
	}
	return *c.entry, true
}

// Pending reports whether a fetch for v is the latest in flight.
func (c *Cache) Pending(v versioning.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil && c.inflight.version == v
}

// Invalidate marks the cached entry stale. It stays visible for its version
// until a refetch replaces it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	if c.entry != nil {
		c.entry.Stale = true
	}
	c.mu.Unlock()
}

// Wait blocks until every started fetch has settled.
func (c *Cache) Wait() {
	c.wg.Wait()
}

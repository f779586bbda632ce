// Package querycache holds query results keyed by collection or entity,
// notifies subscribers on change and refetches invalidated keys.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoFetcher is returned by Fetch when no fetcher was ever registered.
var ErrNoFetcher = errors.New("querycache: no fetcher registered")

// Fetcher loads the current value of a key from the server.
type Fetcher func(ctx context.Context) (any, error)

// EventKind says what happened to a key.
type EventKind int

const (
	// Written is a direct replacement, speculative or restored.
	Written EventKind = iota
	// Invalidated marks the value stale; a refetch follows when possible.
	Invalidated
	// Fetched is a refetch result that was applied.
	Fetched
	// FetchFailed is a refetch that errored; the previous value is kept.
	FetchFailed
)

func (k EventKind) String() string {
	switch k {
	case Written:
		return "written"
	case Invalidated:
		return "invalidated"
	case Fetched:
		return "fetched"
	case FetchFailed:
		return "fetch_failed"
	}
	return "unknown"
}

// Event is delivered to subscribers of a key.
type Event struct {
	Key   Key
	Kind  EventKind
	Value any
	Err   error
}

// Snapshot is the observable state of a key.
type Snapshot struct {
	Value     any
	Present   bool
	Stale     bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

type entry struct {
	value     any
	present   bool
	stale     bool
	loading   bool
	err       error
	updatedAt time.Time
	// gen orders fetch results against writes, invalidations and cancels.
	gen     uint64
	fetcher Fetcher
	subs    map[int]func(Event)
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Value:     e.value,
		Present:   e.present,
		Stale:     e.stale,
		Loading:   e.loading,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

// Cache is safe for concurrent use. Values are shared, so callers must treat
// them as immutable and replace rather than modify.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	nextSub int

	group   singleflight.Group
	wg      sync.WaitGroup
	baseCtx context.Context

	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithContext sets the context background refetches run under.
func WithContext(ctx context.Context) Option {
	return func(c *Cache) {
		c.baseCtx = ctx
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		baseCtx: context.Background(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) entry(k Key) *entry {
	e, ok := c.entries[k]
	if !ok {
		e = &entry{subs: make(map[int]func(Event))}
		c.entries[k] = e
	}
	return e
}

// Read returns the current state of k without blocking and registers fetch
// as its fetcher. A missing or stale value triggers a background fetch.
func (c *Cache) Read(k Key, fetch Fetcher) Snapshot {
	c.mu.Lock()
	e := c.entry(k)
	if fetch != nil {
		e.fetcher = fetch
	}
	fresh := e.present && !e.stale
	start := !fresh && !e.loading && e.fetcher != nil
	var gen uint64
	var fetcher Fetcher
	if start {
		e.loading = true
		gen, fetcher = e.gen, e.fetcher
	}
	snap := e.snapshot()
	c.mu.Unlock()

	if fresh {
		c.metrics.hit(k)
	} else {
		c.metrics.miss(k)
	}
	if start {
		c.background(k, gen, fetcher)
	}
	return snap
}

// Fetch returns a fresh value for k, fetching it when missing or stale.
// Concurrent fetches of the same key and generation share one call.
func (c *Cache) Fetch(ctx context.Context, k Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entry(k)
	if fetch != nil {
		e.fetcher = fetch
	}
	if e.present && !e.stale {
		v := e.value
		c.mu.Unlock()
		c.metrics.hit(k)
		return v, nil
	}
	gen, fetcher := e.gen, e.fetcher
	c.mu.Unlock()
	c.metrics.miss(k)

	if fetcher == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoFetcher, k)
	}
	return c.run(ctx, k, gen, fetcher)
}

// Get returns the raw cached value of k.
func (c *Cache) Get(k Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok || !e.present {
		return nil, false
	}
	return e.value, true
}

// Write replaces the value of k. Fetches already in flight for k are
// discarded when they complete.
func (c *Cache) Write(k Key, value any) {
	c.mu.Lock()
	e := c.entry(k)
	e.gen++
	e.value = value
	e.present = true
	e.stale = false
	e.loading = false
	e.err = nil
	e.updatedAt = c.now()
	subs := subscribers(e)
	c.mu.Unlock()

	notify(subs, Event{Key: k, Kind: Written, Value: value})
}

// Invalidate marks k stale and refetches it in the background when a fetcher
// is registered. It never blocks on the network.
func (c *Cache) Invalidate(k Key) {
	c.mu.Lock()
	e := c.entry(k)
	e.gen++
	e.stale = true
	var gen uint64
	fetcher := e.fetcher
	if fetcher != nil {
		e.loading = true
		gen = e.gen
	} else {
		e.loading = false
	}
	value := e.value
	subs := subscribers(e)
	c.mu.Unlock()

	notify(subs, Event{Key: k, Kind: Invalidated, Value: value})
	if fetcher != nil {
		c.background(k, gen, fetcher)
	}
}

// Cancel discards the result of any fetch of k that is in flight.
func (c *Cache) Cancel(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(k)
	e.gen++
	e.loading = false
}

// Entities returns the cached entity keys of a collection, sorted by id.
func (c *Cache) Entities(collection string) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Key
	for k, e := range c.entries {
		if k.Collection == collection && k.ID != "" && e.present {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b Key) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Subscribe registers fn for events on k. Callbacks run synchronously on the
// goroutine that caused the change, outside the cache lock.
func (c *Cache) Subscribe(k Key, fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.entry(k).subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.entry(k).subs, id)
			c.mu.Unlock()
		})
	}
}

// Wait blocks until background fetches have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) background(k Key, gen uint64, fetcher Fetcher) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, _ = c.run(c.baseCtx, k, gen, fetcher)
	}()
}

func (c *Cache) run(ctx context.Context, k Key, gen uint64, fetcher Fetcher) (any, error) {
	flightKey := k.String() + "#" + strconv.FormatUint(gen, 10)
	ran := false
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		ran = true
		return fetcher(ctx)
	})
	// Settling after the flight has ended lets subscribers fetch the same
	// key again without joining the call that is notifying them.
	if ran {
		c.settle(k, gen, v, err)
	}
	return v, err
}

// settle applies a fetch result unless a newer write, invalidation or cancel
// bumped the generation.
func (c *Cache) settle(k Key, gen uint64, v any, err error) {
	c.mu.Lock()
	e := c.entry(k)
	if e.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch", "key", k.String())
		return
	}
	e.loading = false
	var ev Event
	if err != nil {
		e.err = err
		ev = Event{Key: k, Kind: FetchFailed, Value: e.value, Err: err}
	} else {
		e.value = v
		e.present = true
		e.stale = false
		e.err = nil
		e.updatedAt = c.now()
		ev = Event{Key: k, Kind: Fetched, Value: v}
	}
	subs := subscribers(e)
	c.mu.Unlock()

	if err != nil {
		c.metrics.fetchError(k)
		c.logger.Warn("fetch failed", "key", k.String(), "error", err)
	}
	notify(subs, ev)
}

func subscribers(e *entry) []func(Event) {
	out := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}

// Package mutation runs optimistic writes: snapshot the affected cache keys,
// apply a speculative value, perform the call, then commit or roll back and
// invalidate every affected key once.
package mutation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"domaindesk/internal/client/querycache"
)

const tracerName = "domaindesk/internal/client/mutation"

// Phase is a step in a mutation's life.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committed
	RolledBack
	Settled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Cache is the part of the query cache a mutation touches.
type Cache interface {
	Cancel(k querycache.Key)
	Get(k querycache.Key) (any, bool)
	Write(k querycache.Key, value any)
	Invalidate(k querycache.Key)
	Entities(collection string) []querycache.Key
}

// Observer is told about every phase transition.
type Observer func(ctx context.Context, name string, phase Phase)

// Controller runs mutations against one cache.
type Controller struct {
	cache    Cache
	notifier Notifier
	observer Observer
	tracer   trace.Tracer
	metrics  *Metrics
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func NewController(cache Cache, opts ...Option) *Controller {
	c := &Controller{
		cache:    cache,
		notifier: LogNotifier{Logger: slog.Default()},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) observe(ctx context.Context, name string, phase Phase) {
	if c.observer != nil {
		c.observer(ctx, name, phase)
	}
}

// Definition describes one kind of mutation.
type Definition[In, Out any] struct {
	// Name labels traces, metrics and observer calls.
	Name string
	// Keys lists the cache keys the mutation affects. A collection key also
	// covers every cached entity of that collection, however it was keyed.
	Keys func(in In) []querycache.Key
	// Speculate returns the value to show for key while the call is in
	// flight. It is only called for keys with a cached value and must not
	// modify current. Returning false leaves the key alone. Nil disables
	// speculative writes, as for creates.
	Speculate func(in In, key querycache.Key, current any) (any, bool)
	// Perform is the network call.
	Perform func(ctx context.Context, in In) (Out, error)
	// Success is the confirmation text; empty means no notification.
	Success func(in In, out Out) string
	// Failure is the failure text. Nil uses the error message.
	Failure func(in In, err error) string
}

// Mutation is a Definition bound to a controller.
type Mutation[In, Out any] struct {
	controller *Controller
	def        Definition[In, Out]
}

func New[In, Out any](c *Controller, def Definition[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{controller: c, def: def}
}

type snapshot struct {
	key     querycache.Key
	value   any
	present bool
}

// Execute runs the mutation. Every affected key is invalidated exactly once
// after the call, whatever its outcome.
func (m *Mutation[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	c := m.controller
	name := m.def.Name
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "mutation "+name,
		trace.WithAttributes(attribute.String("mutation.name", name)))
	defer span.End()

	keys := c.affected(uniqueKeys(m.def.Keys, in))
	c.observe(ctx, name, Pending)

	snaps := make([]snapshot, 0, len(keys))
	for _, k := range keys {
		c.cache.Cancel(k)
		v, ok := c.cache.Get(k)
		snaps = append(snaps, snapshot{key: k, value: v, present: ok})
		if ok && m.def.Speculate != nil {
			if next, changed := m.def.Speculate(in, k, v); changed {
				c.cache.Write(k, next)
			}
		}
	}
	span.AddEvent("speculative writes applied")

	out, err := m.def.Perform(ctx, in)
	if err != nil {
		for _, s := range snaps {
			if s.present {
				c.cache.Write(s.key, s.value)
			}
		}
		c.observe(ctx, name, RolledBack)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.observe(name, RolledBack, time.Since(start))
		c.notifier.Failure(ctx, m.failureMessage(in, err), err)
	} else {
		c.observe(ctx, name, Committed)
		c.metrics.observe(name, Committed, time.Since(start))
	}

	for _, k := range keys {
		c.cache.Invalidate(k)
	}
	c.observe(ctx, name, Settled)

	if err == nil && m.def.Success != nil {
		if msg := m.def.Success(in, out); msg != "" {
			c.notifier.Success(ctx, msg)
		}
	}
	return out, err
}

func (m *Mutation[In, Out]) failureMessage(in In, err error) string {
	if m.def.Failure != nil {
		return m.def.Failure(in, err)
	}
	return err.Error()
}

// affected adds the cached entities of every collection key, so a detail
// cached under a slug is refreshed by a mutation addressed by id.
func (c *Controller) affected(keys []querycache.Key) []querycache.Key {
	seen := make(map[querycache.Key]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	out := keys
	for _, k := range keys {
		if k.ID != "" {
			continue
		}
		for _, ek := range c.cache.Entities(k.Collection) {
			if _, dup := seen[ek]; !dup {
				seen[ek] = struct{}{}
				out = append(out, ek)
			}
		}
	}
	return out
}

func uniqueKeys[In any](fn func(In) []querycache.Key, in In) []querycache.Key {
	if fn == nil {
		return nil
	}
	seen := make(map[querycache.Key]struct{})
	var out []querycache.Key
	for _, k := range fn(in) {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

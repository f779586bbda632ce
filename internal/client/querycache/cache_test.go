package querycache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CacheSuite struct {
	suite.Suite
	cache   *Cache
	metrics *Metrics
	key     Key
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.cache = New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.key = Collection("domains")
}

func constant(v any) Fetcher {
	return func(context.Context) (any, error) { return v, nil }
}

// recorder collects events for one key.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (s *CacheSuite) TestKeyString() {
	s.Equal("domains", Collection("domains").String())
	s.Equal("domains/abc", Entity("domains", "abc").String())
}

func (s *CacheSuite) TestReadLoadsInBackground() {
	snap := s.cache.Read(s.key, constant([]string{"a"}))
	s.False(snap.Present)
	s.True(snap.Loading)

	s.cache.Wait()

	snap = s.cache.Read(s.key, nil)
	s.True(snap.Present)
	s.False(snap.Stale)
	s.False(snap.Loading)
	s.Equal([]string{"a"}, snap.Value)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Hits.WithLabelValues("domains")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Misses.WithLabelValues("domains")))
}

func (s *CacheSuite) TestWriteNotifiesSynchronously() {
	rec := &recorder{}
	unsubscribe := s.cache.Subscribe(s.key, rec.add)

	s.cache.Write(s.key, 1)
	s.Equal([]EventKind{Written}, rec.kinds())

	v, ok := s.cache.Get(s.key)
	s.True(ok)
	s.Equal(1, v)

	unsubscribe()
	unsubscribe()
	s.cache.Write(s.key, 2)
	s.Len(rec.kinds(), 1)
}

func (s *CacheSuite) TestInvalidateRefetches() {
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		n := int(calls.Add(1))
		if n > 1 {
			<-release
		}
		return n, nil
	}
	_, err := s.cache.Fetch(context.Background(), s.key, fetch)
	s.Require().NoError(err)

	rec := &recorder{}
	s.cache.Subscribe(s.key, rec.add)
	s.cache.Invalidate(s.key)

	snap := s.cache.Read(s.key, nil)
	s.True(snap.Stale)
	s.True(snap.Loading)
	s.Equal(1, snap.Value)

	close(release)
	s.cache.Wait()
	v, _ := s.cache.Get(s.key)
	s.Equal(2, v)
	s.Equal([]EventKind{Invalidated, Fetched}, rec.kinds())
}

func (s *CacheSuite) TestInvalidateWithoutFetcherOnlyMarksStale() {
	s.cache.Write(s.key, "x")
	s.cache.Invalidate(s.key)
	s.cache.Wait()

	snap := s.cache.Read(s.key, nil)
	s.True(snap.Stale)
	s.False(snap.Loading)
	s.Equal("x", snap.Value)
}

func (s *CacheSuite) TestConcurrentFetchesCollapse() {
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.cache.Fetch(context.Background(), s.key, fetch)
			s.NoError(err)
			results[i] = v
		}()
	}
	// Let the goroutines reach the flight before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal(int32(1), calls.Load())
	for _, v := range results {
		s.Equal("v", v)
	}
}

func (s *CacheSuite) TestLatestSettleWins() {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(slowStarted)
			<-releaseSlow
			return "old", nil
		}
		return "new", nil
	}

	s.cache.Read(s.key, fetch)
	<-slowStarted

	// A newer invalidation starts a second fetch that finishes first.
	s.cache.Invalidate(s.key)
	s.Eventually(func() bool {
		v, ok := s.cache.Get(s.key)
		return ok && v == "new"
	}, time.Second, 5*time.Millisecond)

	close(releaseSlow)
	s.cache.Wait()

	v, _ := s.cache.Get(s.key)
	s.Equal("new", v)
}

func (s *CacheSuite) TestCancelDiscardsInFlightFetch() {
	release := make(chan struct{})
	s.cache.Write(s.key, "cached")
	s.cache.Invalidate(s.key)
	s.cache.Cancel(s.key)

	s.cache.Read(s.key, func(context.Context) (any, error) {
		<-release
		return "fetched", nil
	})
	s.cache.Cancel(s.key)
	s.cache.Write(s.key, "speculative")

	close(release)
	s.cache.Wait()

	v, _ := s.cache.Get(s.key)
	s.Equal("speculative", v)
}

func (s *CacheSuite) TestFetchErrorKeepsValue() {
	s.cache.Write(s.key, "kept")
	boom := errors.New("boom")
	s.cache.Read(s.key, func(context.Context) (any, error) { return nil, boom })
	s.cache.Invalidate(s.key)
	s.cache.Wait()

	snap := s.cache.Read(s.key, nil)
	s.Equal("kept", snap.Value)
	s.ErrorIs(snap.Err, boom)
	s.GreaterOrEqual(testutil.ToFloat64(s.metrics.FetchErrors.WithLabelValues("domains")), 1.0)
}

func TestFetchWithoutFetcher(t *testing.T) {
	c := New()
	_, err := c.Fetch(context.Background(), Entity("domains", "x"), nil)
	require.ErrorIs(t, err, ErrNoFetcher)
	assert.Contains(t, err.Error(), "domains/x")
}

func (s *CacheSuite) TestSubscriberCanRetryFailedFetch() {
	var calls atomic.Int32
	fetcher := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		return "recovered", nil
	}

	retried := make(chan any, 1)
	s.cache.Subscribe(s.key, func(ev Event) {
		if ev.Kind != FetchFailed {
			return
		}
		v, err := s.cache.Fetch(context.Background(), s.key, nil)
		s.NoError(err)
		retried <- v
	})

	done := make(chan error, 1)
	go func() {
		_, err := s.cache.Fetch(context.Background(), s.key, fetcher)
		done <- err
	}()

	select {
	case err := <-done:
		s.Error(err)
	case <-time.After(2 * time.Second):
		s.FailNow("first fetch never returned")
	}
	s.Equal("recovered", <-retried)
	s.Equal(int32(2), calls.Load())

	v, ok := s.cache.Get(s.key)
	s.True(ok)
	s.Equal("recovered", v)
}

func (s *CacheSuite) TestEntitiesListsCachedMembers() {
	s.cache.Write(Entity("domains", "b"), 2)
	s.cache.Write(Entity("domains", "a"), 1)
	s.cache.Write(Entity("offers", "a"), 1)
	s.cache.Write(s.key, []int{1, 2})
	s.cache.Invalidate(Entity("domains", "never-loaded"))

	s.Equal([]Key{Entity("domains", "a"), Entity("domains", "b")}, s.cache.Entities("domains"))
	s.Empty(s.cache.Entities("consultations"))
}

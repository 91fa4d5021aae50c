package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(t *testing.T, size int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, err := NewCache(size, 5*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return c, clock
}

func counting(calls *int32) ComputeFunc {
	return func(context.Context) (*Result, error) {
		n := atomic.AddInt32(calls, 1)
		return &Result{VaultID: "v", ItemCount: int(n)}, nil
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache(t, 8)
	var calls int32
	ctx := context.Background()

	first, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)

	hitsBefore := testutil.ToFloat64(cacheLookups.WithLabelValues(resultHit))
	clock.Advance(4*time.Minute + 59*time.Second)
	second, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(cacheLookups.WithLabelValues(resultHit)))
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c, clock := newTestCache(t, 8)
	var calls int32
	ctx := context.Background()

	_, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	res, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 2, res.ItemCount)
}

func TestCache_ForceRefreshAlwaysComputes(t *testing.T) {
	c, _ := newTestCache(t, 8)
	var calls int32
	ctx := context.Background()

	_, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)
	res, err := c.Get(ctx, "v1", true, counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemCount)

	// The forced result replaces the cached one.
	again, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)
	assert.Same(t, res, again)
	assert.Equal(t, int32(2), calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache(t, 8)
	ctx := context.Background()
	boom := errors.New("store down")

	_, err := c.Get(ctx, "v1", false, func(context.Context) (*Result, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	var calls int32
	_, err = c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, 8)
	var calls int32
	ctx := context.Background()

	_, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)
	c.Invalidate("v1")
	_, err = c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls)
}

func TestCache_SizeIsBounded(t *testing.T) {
	c, _ := newTestCache(t, 3)
	var calls int32
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := c.Get(ctx, fmt.Sprintf("v%d", i), false, counting(&calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())

	// v9 is still cached, v0 was evicted.
	_, err := c.Get(ctx, "v9", false, counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(10), calls)

	_, err = c.Get(ctx, "v0", false, counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(11), calls)
}

func TestCache_ConcurrentMissesShareComputation(t *testing.T) {
	c, _ := newTestCache(t, 8)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	compute := func(context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Result{VaultID: "v1"}, nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Get(ctx, "v1", false, compute)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Let every goroutine reach the cache before the computation finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCache_Defaults(t *testing.T) {
	c, err := NewCache(0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.TTL())

	_, err = c.Get(context.Background(), "v", false, nil)
	assert.Error(t, err)
}

func TestCache_JoinedCallerSurvivesFirstCallerCancel(t *testing.T) {
	c, _ := newTestCache(t, 8)

	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (*Result, error) {
		close(started)
		select {
		case <-release:
			return &Result{VaultID: "v1", ItemCount: 7}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(firstCtx, "v1", false, compute)
		firstErr <- err
	}()
	<-started

	type outcome struct {
		res *Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := c.Get(context.Background(), "v1", false, compute)
		second <- outcome{res, err}
	}()

	// Give the second caller time to join the running computation.
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 7, got.res.ItemCount)
}

func TestCache_InvalidateDuringComputeDiscardsResult(t *testing.T) {
	c, _ := newTestCache(t, 8)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	stale := func(context.Context) (*Result, error) {
		close(started)
		<-release
		return &Result{VaultID: "v1", ItemCount: 1}, nil
	}

	done := make(chan *Result, 1)
	go func() {
		res, err := c.Get(ctx, "v1", false, stale)
		assert.NoError(t, err)
		done <- res
	}()
	<-started

	discardsBefore := testutil.ToFloat64(staleDiscards)
	c.Invalidate("v1")

	// A lookup after the invalidation starts its own computation instead of
	// joining the running one.
	fresh, err := c.Get(ctx, "v1", false, func(context.Context) (*Result, error) {
		return &Result{VaultID: "v1", ItemCount: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.ItemCount)

	close(release)
	assert.Equal(t, 1, (<-done).ItemCount)
	assert.Equal(t, discardsBefore+1, testutil.ToFloat64(staleDiscards))

	var calls int32
	cached, err := c.Get(ctx, "v1", false, counting(&calls))
	require.NoError(t, err)
	assert.Same(t, fresh, cached)
	assert.Zero(t, calls)
}

func TestCache_CallerDeadlineStopsWaiting(t *testing.T) {
	c, _ := newTestCache(t, 8)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "v1", false, func(context.Context) (*Result, error) {
		<-release
		return &Result{}, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type threshold struct {
	ID     int64   `json:"id"`
	Target float64 `json:"target"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(append([]MemoryOption{WithMemoryClock(clock.Now)}, opts...)...)
	t.Cleanup(func() { _ = mc.Close() })
	return mc, clock
}

func TestMemorySetGetStruct(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(t)

	require.NoError(t, mc.Set(ctx, "threshold:machine:42", threshold{ID: 3, Target: 90}, time.Minute))

	var got threshold
	require.NoError(t, mc.Get(ctx, "threshold:machine:42", &got))
	assert.Equal(t, threshold{ID: 3, Target: 90}, got)

	var s string
	require.NoError(t, mc.Set(ctx, "plain", "value", time.Minute))
	require.NoError(t, mc.Get(ctx, "plain", &s))
	assert.Equal(t, "value", s)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestCache(t)

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	clock.Advance(2 * time.Minute)

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestCache(t, WithMemoryMaxSize(2))

	require.NoError(t, mc.Set(ctx, "a", 1, time.Hour))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Hour))
	clock.Advance(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clock.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Hour))

	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
	assert.NoError(t, mc.Get(ctx, "c", &v))
}

func TestMemoryDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(t)

	for _, k := range []string{"threshold:machine:1", "threshold:line:2", "config:7"} {
		require.NoError(t, mc.Set(ctx, k, 1, time.Hour))
	}
	require.NoError(t, mc.DeleteByPattern(ctx, "threshold:*"))

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "threshold:machine:1", &v), ErrCacheMiss)
	assert.ErrorIs(t, mc.Get(ctx, "threshold:line:2", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "config:7", &v))
}

func TestMemoryTryLock(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestCache(t)

	ok, err := mc.TryLock(ctx, "cooldown:42", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = mc.TryLock(ctx, "cooldown:42", time.Minute)
	assert.False(t, ok)

	clock.Advance(61 * time.Second)
	ok, _ = mc.TryLock(ctx, "cooldown:42", time.Minute)
	assert.True(t, ok)

	require.NoError(t, mc.Unlock(ctx, "cooldown:42"))
	ok, _ = mc.TryLock(ctx, "cooldown:42", time.Minute)
	assert.True(t, ok)
}

func TestLayeredReadsThroughToL2(t *testing.T) {
	ctx := context.Background()
	l2, _ := newTestCache(t)
	lc := NewLayeredCache(l2)
	t.Cleanup(func() { _ = lc.l1.Close() })

	require.NoError(t, l2.Set(ctx, "k", threshold{ID: 9}, time.Hour))

	var got threshold
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, int64(9), got.ID)

	require.NoError(t, l2.Delete(ctx, "k"))
	got = threshold{}
	require.NoError(t, lc.Get(ctx, "k", &got), "served from L1")
	assert.Equal(t, int64(9), got.ID)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "threshold:machine:42", Key("threshold", "machine", 42))
	assert.Equal(t, "fleet", Key("fleet"))
}

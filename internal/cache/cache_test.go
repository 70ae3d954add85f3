package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

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

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCache_GetFreshAndExpired(t *testing.T) {
	clock := newClock()
	c := New(10, 5*time.Minute, WithClock(clock.Now))

	c.Set("k", "v1")
	e, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v1", e.Response)
	require.Equal(t, clock.Now(), e.Timestamp)

	clock.Advance(5 * time.Minute)
	_, ok = c.Get("k")
	require.False(t, ok)

	stale, ok := c.GetStale("k")
	require.True(t, ok)
	require.Equal(t, "v1", stale.Response)
}

func TestCache_SetOverwritesAndRefreshes(t *testing.T) {
	clock := newClock()
	c := New(10, time.Minute, WithClock(clock.Now))

	c.Set("k", "old")
	clock.Advance(2 * time.Minute)
	c.Set("k", "new")

	e, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", e.Response)
	require.Equal(t, 1, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", "3")
	require.Equal(t, 2, c.Len())
	_, ok = c.GetStale("b")
	require.False(t, ok)
	_, ok = c.GetStale("a")
	require.True(t, ok)
	_, ok = c.GetStale("c")
	require.True(t, ok)
}

func TestCache_Defaults(t *testing.T) {
	c := New(0, 0)
	require.Equal(t, DefaultCapacity, c.capacity)
	require.Equal(t, DefaultTTL, c.ttl)
}

func TestCache_ConcurrentWrites(t *testing.T) {
	c := New(16, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%8)
			c.Set(key, fmt.Sprintf("v%d", i))
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 8, c.Len())
}

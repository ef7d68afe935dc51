package querycache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/querycache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCache() (*querycache.Cache, *clock) {
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return querycache.New(querycache.WithClock(clk.Now)), clk
}

func TestKey_Matches(t *testing.T) {
	k := querycache.Key{Entity: "items", ID: "trip-1", User: "alice", Variant: "packed=true"}

	assert.True(t, k.Matches(querycache.Key{Entity: "items"}))
	assert.True(t, k.Matches(querycache.Key{Entity: "items", ID: "trip-1"}))
	assert.True(t, k.Matches(querycache.Key{Entity: "items", User: "alice"}))
	assert.True(t, k.Matches(k))
	assert.False(t, k.Matches(querycache.Key{Entity: "bags"}))
	assert.False(t, k.Matches(querycache.Key{Entity: "items", ID: "trip-2"}))
	assert.False(t, k.Matches(querycache.Key{Entity: "items", User: "bob"}))
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "items/trip-1", querycache.Key{Entity: "items", ID: "trip-1"}.String())
	assert.Equal(t, "trips//alice", querycache.Key{Entity: "trips", User: "alice"}.String())
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c, _ := newCache()
	c.Set(querycache.Key{Entity: "items", ID: "t1", User: "u", Variant: "all"}, 1)
	c.Set(querycache.Key{Entity: "items", ID: "t1", User: "u", Variant: "packed"}, 2)
	c.Set(querycache.Key{Entity: "items", ID: "t2", User: "u"}, 3)
	c.Set(querycache.Key{Entity: "bags", ID: "t1", User: "u"}, 4)

	n := c.Invalidate(querycache.Key{Entity: "items", ID: "t1"})

	assert.Equal(t, 2, n)
	_, ok := c.Get(querycache.Key{Entity: "items", ID: "t2", User: "u"})
	assert.True(t, ok)
	_, ok = c.Get(querycache.Key{Entity: "bags", ID: "t1", User: "u"})
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_TTL(t *testing.T) {
	c, clk := newCache()
	k := querycache.Key{Entity: "preview", Variant: "x"}
	c.SetTTL(k, "v", 30*time.Minute)

	clk.Advance(29 * time.Minute)
	_, ok := c.Get(k)
	assert.True(t, ok)

	clk.Advance(time.Minute)
	_, ok = c.Get(k)
	assert.False(t, ok)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Len())
}

func TestFetch_ReadThrough(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{Entity: "trips", User: "u"}
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	got, err := querycache.Fetch(context.Background(), c, k, 0, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	_, err = querycache.Fetch(context.Background(), c, k, 0, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	c.Invalidate(querycache.Key{Entity: "trips"})
	_, err = querycache.Fetch(context.Background(), c, k, 0, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorsNotCached(t *testing.T) {
	c, _ := newCache()
	k := querycache.Key{Entity: "trips", User: "u"}
	boom := errors.New("boom")

	_, err := querycache.Fetch(context.Background(), c, k, 0, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestSubscribe(t *testing.T) {
	c, _ := newCache()
	mine, cancelMine := c.Subscribe(func(k querycache.Key) bool { return k.User == "alice" }, 4)
	all, cancelAll := c.Subscribe(nil, 4)
	defer cancelAll()

	c.Invalidate(querycache.Key{Entity: "items", ID: "t1", User: "alice"})
	c.Invalidate(querycache.Key{Entity: "items", ID: "t9", User: "bob"})

	require.Len(t, mine, 1)
	assert.Equal(t, "t1", (<-mine).ID)
	assert.Len(t, all, 2)

	cancelMine()
	cancelMine()
	_, open := <-mine
	assert.False(t, open)
}

func TestSubscribe_FullBufferDoesNotBlock(t *testing.T) {
	c, _ := newCache()
	ch, cancel := c.Subscribe(nil, 1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for range 5 {
			c.Invalidate(querycache.Key{Entity: "bags"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Invalidate blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestJanitor_Sweeps(t *testing.T) {
	c := querycache.New()
	c.SetTTL(querycache.Key{Entity: "preview"}, 1, time.Millisecond)

	j := querycache.NewJanitor(c, nil)
	require.NoError(t, j.Start(10*time.Millisecond))
	defer j.Stop()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

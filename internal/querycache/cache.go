// Package querycache is an in-memory read-through cache keyed by
// (entity, id, user, variant), with explicit invalidation and a pub/sub
// feed of invalidated keys.
//
// Nothing is invalidated implicitly except by TTL: callers invalidate after
// every successful mutation, and subscribers (e.g. an event stream) learn
// which keys went stale.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Key identifies a cached query. In an invalidation pattern, empty fields are
// wildcards, so Key{Entity: "items", ID: tripID} covers every user and
// variant of that trip's item queries.
type Key struct {
	Entity  string `json:"entity"`
	ID      string `json:"id,omitempty"`
	User    string `json:"user,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// Matches reports whether k falls under pattern.
func (k Key) Matches(pattern Key) bool {
	return field(pattern.Entity, k.Entity) &&
		field(pattern.ID, k.ID) &&
		field(pattern.User, k.User) &&
		field(pattern.Variant, k.Variant)
}

func field(pattern, v string) bool {
	return pattern == "" || pattern == v
}

// String renders the non-empty fields joined by "/".
func (k Key) String() string {
	parts := []string{k.Entity, k.ID, k.User, k.Variant}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "/")
}

type entry struct {
	value   any
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type subscriber struct {
	ch     chan Key
	filter func(Key) bool
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	subs    map[int]subscriber
	nextSub int
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]entry),
		subs:    make(map[int]subscriber),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns a live entry.
func (c *Cache) Get(k Key) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores v until it is invalidated.
func (c *Cache) Set(k Key, v any) {
	c.SetTTL(k, v, 0)
}

// SetTTL stores v for ttl; ttl <= 0 means no expiry.
func (c *Cache) SetTTL(k Key, v any, ttl time.Duration) {
	e := entry{value: v}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[k] = e
	c.mu.Unlock()
}

// Invalidate drops every entry matching pattern and notifies subscribers
// with the pattern itself. It returns the number of entries dropped.
func (c *Cache) Invalidate(pattern Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k.Matches(pattern) {
			delete(c.entries, k)
			n++
		}
	}

	for _, s := range c.subs {
		if s.filter != nil && !s.filter(pattern) {
			continue
		}
		select {
		case s.ch <- pattern:
		default:
			// Slow subscriber; it refetches on its next read anyway.
		}
	}
	return n
}

// Subscribe delivers invalidated patterns accepted by filter (nil accepts
// all) on a buffered channel. Delivery never blocks Invalidate; a full
// buffer drops the notification. Call cancel to unsubscribe and close the
// channel.
func (c *Cache) Subscribe(filter func(Key) bool, buffer int) (<-chan Key, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Key, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = subscriber{ch: ch, filter: filter}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Sweep removes expired entries and returns how many it removed.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch returns the cached T for k, or calls load and caches its result for
// ttl (0 = until invalidated). Errors are not cached. A cached value of a
// different type is treated as a miss.
func Fetch[T any](ctx context.Context, c *Cache, k Key, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(k); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.SetTTL(k, v, ttl)
	return v, nil
}

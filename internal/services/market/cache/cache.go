// Package cache provides the in-process response cache for read paths.
//
// The cache is process-local by design: the application runs as a single
// process, so no cross-process coherence is attempted. Entries expire after
// their TTL, and writes drop affected entries by key pattern so subsequent
// reads rebuild from the store.
package cache

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the janitor evicts expired entries for
// keys nobody re-reads.
const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats reports the current cache population.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"entries"`
}

// Cache is a TTL-bounded key/value map. The zero value is not usable;
// construct with New and release with Stop.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

// New returns a running cache whose janitor sweeps expired entries every
// sweepInterval. A non-positive interval falls back to DefaultSweepInterval.
func New(sweepInterval time.Duration) *Cache {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	c := &Cache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go c.janitor(sweepInterval)
	return c
}

// Set stores value under key until ttl elapses.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the live value for key. An expired entry is evicted in the
// same read, so callers never observe a stale value between sweeps.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether key holds a live value.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes one key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// InvalidatePattern deletes every key matching the regular expression and
// returns how many were dropped. Plain substrings such as "products:" are
// valid patterns and match any key containing them.
func (c *Cache) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile invalidation pattern: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped, nil
}

// GetStats returns the current size and key list.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Stats{Size: len(c.entries), Keys: keys}
}

// Stop shuts down the janitor and drops all entries. Safe to call more
// than once; intended for test teardown and process shutdown.
func (c *Cache) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
	c.Clear()
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Key builds a stable cache key from a prefix and query parameters.
// Parameter names are sorted before concatenation so logically identical
// queries collide on the same key regardless of argument order.
func Key(prefix string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+":"+params[name])
	}
	return prefix + ":" + strings.Join(pairs, "|")
}

package tracker

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = sql.ErrNoRows

// EntryCache is an in-memory cache of campaign entries with TTL. The tracking
// redirect resolves slugs on every click, so entries are kept hot instead of
// hitting SQLite per request.
type EntryCache struct {
	mu      sync.RWMutex
	entries []Entry
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewEntryCache creates an EntryCache backed by the given Store.
func NewEntryCache(s *Store, ttl time.Duration) *EntryCache {
	return &EntryCache{store: s, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.entries != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

func (c *EntryCache) load() error {
	if c.valid() {
		return nil
	}
	entries, err := c.store.ListEntries("")
	if err != nil {
		return err
	}
	c.entries = entries
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached entries after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *EntryCache) ensureLoaded() ([]Entry, error) {
	c.mu.RLock()
	if c.valid() {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.entries, nil
}

// ListEntries returns entries, optionally filtered by status.
func (c *EntryCache) ListEntries(status string) ([]Entry, error) {
	entries, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return entries, nil
	}
	var filtered []Entry
	for _, e := range entries {
		if e.Status == status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// GetEntry returns a single entry by slug from the cache.
func (c *EntryCache) GetEntry(slug string) (Entry, error) {
	entries, err := c.ensureLoaded()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

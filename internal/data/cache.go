package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"flex-valuation/internal/valuation"
)

// CacheEntry is one stored valuation run.
type CacheEntry struct {
	ID            string
	Result        *valuation.Result
	GlobalAverage float64
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ResultCache keeps valuation runs in memory so their rows can be paged after the run.
// Entries expire after the TTL; a background goroutine evicts them until Close.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &ResultCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Get retrieves an entry if present and not expired.
func (c *ResultCache) Get(id string) (*CacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Set stores a run under id.
func (c *ResultCache) Set(id string, res *valuation.Result, globalAvg float64) *CacheEntry {
	if c == nil {
		return nil
	}
	now := c.now()
	entry := &CacheEntry{
		ID:            id,
		Result:        res,
		GlobalAverage: globalAvg,
		CreatedAt:     now,
		ExpiresAt:     now.Add(c.ttl),
	}
	c.mu.Lock()
	c.store[id] = entry
	c.mu.Unlock()
	return entry
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the eviction goroutine.
func (c *ResultCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *ResultCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *ResultCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
		}
	}
}

// CacheKey derives a deterministic id from any JSON-encodable run description
// (configuration plus request options). Identical runs share an id.
func CacheKey(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:8]), nil
}

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// MemoryCache implements Service in-process. Values are stored JSON-encoded
// so reads behave identically to the Redis layer. When the cache is full,
// the entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]memoryItem
	maxSize int
	stop    chan struct{}
}

// NewMemoryCache creates the cache and starts a background sweep for
// expired entries.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &MemoryCache{
		items:   make(map[string]memoryItem),
		maxSize: cfg.MaxSize,
		stop:    make(chan struct{}),
	}
	go c.sweep(cfg.CleanupInterval)
	return c
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOneLocked()
	}
	c.items[key] = memoryItem{data: data, expiresAt: expiresAt}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || it.expired(time.Now()) {
		return ErrCacheMiss
	}
	return json.Unmarshal(it.data, dest)
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

// Close stops the background sweep.
func (c *MemoryCache) Close() error {
	close(c.stop)
	return nil
}

func (c *MemoryCache) evictOneLocked() {
	var victim string
	var soonest time.Time
	for k, it := range c.items {
		if victim == "" || (!it.expiresAt.IsZero() && (soonest.IsZero() || it.expiresAt.Before(soonest))) {
			victim = k
			soonest = it.expiresAt
		}
	}
	if victim != "" {
		delete(c.items, victim)
	}
}

func (c *MemoryCache) sweep(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if it.expired(now) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

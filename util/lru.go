package util

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// expirableValue holds a cached value with its expiration deadline.
type expirableValue struct {
	value     interface{}
	expiresAt time.Time
}

// ExpirableLruCache is an LRU cache with a fixed TTL per entry. Eviction is
// lazy: an expired entry is purged when it is looked up.
type ExpirableLruCache struct {
	lru *lru.Cache
	mu  sync.Mutex
	ttl time.Duration

	// custom `time.Now` function, which could be used for testing
	timeNowFunc func() time.Time
}

func NewExpirableLruCache(size int, ttl time.Duration, timeNowFunc ...func() time.Time) *ExpirableLruCache {
	nowFunc := time.Now
	if len(timeNowFunc) > 0 {
		nowFunc = timeNowFunc[0]
	}

	cache, _ := lru.New(max(size, 1))
	return &ExpirableLruCache{lru: cache, ttl: ttl, timeNowFunc: nowFunc}
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *ExpirableLruCache) Add(key, value interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.add(key, value)
}

// Get looks up a key's value from the cache. Will purge the entry and return
// nil if the entry expired.
func (c *ExpirableLruCache) Get(key interface{}) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, expired, found := c.get(key)
	if !found {
		return nil, false
	}

	if expired {
		c.lru.Remove(key)
		return nil, false
	}

	return v, true
}

// GetOrUpdate gets the cached value for the given key, calling updateFunc to
// produce a fresh one when the entry is missing or expired. An updateFunc
// error is returned as is and nothing is cached.
func (c *ExpirableLruCache) GetOrUpdate(key interface{}, updateFunc func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, expired, found := c.get(key)
	if found && !expired {
		return v, nil
	}

	v, err := updateFunc()
	if err != nil {
		return nil, err
	}

	c.add(key, v)

	return v, nil
}

func (c *ExpirableLruCache) get(key interface{}) (v interface{}, expired, found bool) {
	cv, ok := c.lru.Get(key)
	if !ok {
		return nil, false, false
	}

	ev := cv.(*expirableValue)
	if ev.expiresAt.Before(c.timeNowFunc()) {
		return ev.value, true, true
	}

	return ev.value, false, true
}

func (c *ExpirableLruCache) add(key, value interface{}) bool {
	return c.lru.Add(key, &expirableValue{
		value:     value,
		expiresAt: c.timeNowFunc().Add(c.ttl),
	})
}

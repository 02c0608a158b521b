package util_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/openrollup/evmstore/util"
)

// mockTime is used to simulate time progression in tests.
type mockTime struct {
	mu          sync.Mutex
	currentTime time.Time
}

func (m *mockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *mockTime) Add(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

func TestAddAndGet(t *testing.T) {
	cache := util.NewExpirableLruCache(5, 50*time.Millisecond)
	cache.Add("key1", "value1")

	value, found := cache.Get("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", value)
}

func TestExpiration(t *testing.T) {
	mt := &mockTime{currentTime: time.Now()}
	cache := util.NewExpirableLruCache(5, 50*time.Millisecond, mt.Now)
	cache.Add("key1", "value1")

	// Simulate time passing beyond the TTL
	mt.Add(60 * time.Millisecond)

	value, found := cache.Get("key1")
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestGetOrUpdate(t *testing.T) {
	mt := &mockTime{currentTime: time.Now()}
	cache := util.NewExpirableLruCache(5, 50*time.Millisecond, mt.Now)

	calls := 0
	update := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	value, err := cache.GetOrUpdate("key1", update)
	assert.NoError(t, err)
	assert.Equal(t, 1, value)

	// fresh entry is served from cache
	value, err = cache.GetOrUpdate("key1", update)
	assert.NoError(t, err)
	assert.Equal(t, 1, value)

	// expired entry triggers a refresh
	mt.Add(60 * time.Millisecond)

	value, err = cache.GetOrUpdate("key1", update)
	assert.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestGetOrUpdateError(t *testing.T) {
	cache := util.NewExpirableLruCache(5, time.Minute)

	expectedErr := errors.New("update failed")
	_, err := cache.GetOrUpdate("key1", func() (interface{}, error) {
		return nil, expectedErr
	})
	assert.ErrorIs(t, err, expectedErr)

	// nothing was cached on failure
	_, found := cache.Get("key1")
	assert.False(t, found)
}

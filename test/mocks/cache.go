package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MockCache is an in-memory Cache implementation for tests that do not want
// to spin up miniredis. TTLs are ignored.
type MockCache struct {
	mu   sync.RWMutex
	kv   map[string]string
	sets map[string]map[string]struct{}
}

// NewMockCache creates a new mock cache instance.
func NewMockCache() *MockCache {
	return &MockCache{
		kv:   make(map[string]string),
		sets: make(map[string]map[string]struct{}),
	}
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	default:
		return ""
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kv[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = toString(value)
	return nil
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.kv, key)
	}
	return nil
}

func (m *MockCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.kv[key]; ok {
			n++
		}
	}
	return n, nil
}

func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	return m.addInt(key, 1)
}

func (m *MockCache) Decr(ctx context.Context, key string) (int64, error) {
	return m.addInt(key, -1)
}

func (m *MockCache) addInt(key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.kv[key], 10, 64)
	n += delta
	m.kv[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *MockCache) SAdd(ctx context.Context, key string, members ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, member := range members {
		m.sets[key][toString(member)] = struct{}{}
	}
	return nil
}

func (m *MockCache) SRem(ctx context.Context, key string, members ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		delete(m.sets[key], toString(member))
	}
	return nil
}

func (m *MockCache) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (m *MockCache) SIsMember(ctx context.Context, key string, member interface{}) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[key][toString(member)]
	return ok, nil
}

func (m *MockCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = toString(value)
	return true, nil
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *MockCache) Health(ctx context.Context) error {
	return nil
}

func (m *MockCache) Close() error {
	return nil
}

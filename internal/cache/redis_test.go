package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// setupTestCache starts an embedded Redis server and wraps it in a RedisCache.
func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.New("error", "console", "stdout")
	return NewRedisCacheFromClient(client, log), mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	// Missing key is empty, not an error
	val, err := c.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty value for missing key, got %q", val)
	}

	if err := c.Set(ctx, "case:1", "active", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	val, err = c.Get(ctx, "case:1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "active" {
		t.Errorf("Expected 'active', got %q", val)
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "board:daily", "[]", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// miniredis advances TTLs manually
	mr.FastForward(2 * time.Minute)

	val, err := c.Get(ctx, "board:daily")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected expired key to be empty, got %q", val)
	}
}

func TestRedisCache_IncrDecr(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	n, err := c.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("Incr() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}

	n, err = c.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("Incr() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}

	n, err = c.Decr(ctx, "counter")
	if err != nil {
		t.Fatalf("Decr() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}
}

func TestRedisCache_Sets(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.SAdd(ctx, "voters:1", "alice", "bob"); err != nil {
		t.Fatalf("SAdd() failed: %v", err)
	}

	ok, err := c.SIsMember(ctx, "voters:1", "alice")
	if err != nil {
		t.Fatalf("SIsMember() failed: %v", err)
	}
	if !ok {
		t.Error("Expected alice to be a member")
	}

	members, err := c.SMembers(ctx, "voters:1")
	if err != nil {
		t.Fatalf("SMembers() failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}

	if err := c.SRem(ctx, "voters:1", "alice"); err != nil {
		t.Fatalf("SRem() failed: %v", err)
	}
	ok, err = c.SIsMember(ctx, "voters:1", "alice")
	if err != nil {
		t.Fatalf("SIsMember() failed: %v", err)
	}
	if ok {
		t.Error("Expected alice to be removed")
	}
}

func TestRedisCache_SetNX(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "lock:closure", "runner-1", time.Minute)
	if err != nil {
		t.Fatalf("SetNX() failed: %v", err)
	}
	if !ok {
		t.Error("Expected first SetNX to win")
	}

	// A second holder is rejected while the lock lives
	ok, err = c.SetNX(ctx, "lock:closure", "runner-2", time.Minute)
	if err != nil {
		t.Fatalf("SetNX() failed: %v", err)
	}
	if ok {
		t.Error("Expected second SetNX to lose")
	}

	val, err := c.Get(ctx, "lock:closure")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "runner-1" {
		t.Errorf("Expected lock held by runner-1, got %q", val)
	}
}

func TestRedisCache_DelExists(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := c.Set(ctx, "b", "2", 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	n, err := c.Exists(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 existing keys, got %d", n)
	}

	if err := c.Del(ctx, "a", "b"); err != nil {
		t.Fatalf("Del() failed: %v", err)
	}
	n, err = c.Exists(ctx, "a", "b")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 existing keys, got %d", n)
	}
}

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newTestRedis connects to PIXELSORT_REDIS_URL or skips.
func newTestRedis(t *testing.T) Cache {
	t.Helper()
	url := os.Getenv("PIXELSORT_REDIS_URL")
	if url == "" {
		t.Skip("PIXELSORT_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	key := "pixelsort-test:" + uuid.NewString()

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get(new key) = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v; want payload hit", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry present after Delete")
	}
}

func TestRedisCacheClear(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	prefix := "pixelsort-test:" + uuid.NewString() + ":"

	for i := 0; i < 3; i++ {
		if err := c.Set(ctx, prefix+uuid.NewString(), []byte("v"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	other := "pixelsort-test-other:" + uuid.NewString()
	if err := c.Set(ctx, other, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Delete(ctx, other) })

	n, err := c.Clear(ctx, prefix)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, other); !hit {
		t.Error("Clear removed a key outside the prefix")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("NewRedisCache(bad url) should fail")
	}
}

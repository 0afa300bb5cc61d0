package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(missing) error = %v, want ErrMiss", err)
	}
	if err := c.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(0, 0)
	exerciseCache(t, c)

	now := time.Now()
	c.now = func() time.Time { return now }
	if err := c.Set(context.Background(), "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	c.now = func() time.Time { return now.Add(2 * time.Second) }
	if _, err := c.Get(context.Background(), "short"); !errors.Is(err, ErrMiss) {
		t.Errorf("expired entry error = %v, want ErrMiss", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len after Close = %d", c.Len())
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(0, 0)
	value := []byte("abc")
	_ = c.Set(context.Background(), "k", value, 0)
	value[0] = 'z'
	got, _ := c.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Errorf("stored value was aliased: %q", got)
	}
}

func TestMemoryCache_BoundedSize(t *testing.T) {
	c := NewMemoryCache(100, time.Hour)
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		if err := c.Set(ctx, Key("query", strconv.Itoa(i)), []byte("x"), time.Nanosecond); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}
	if c.Len() != 100 {
		t.Errorf("Len = %d, want 100", c.Len())
	}
	if _, err := c.Get(ctx, Key("query", "0")); !errors.Is(err, ErrMiss) {
		t.Errorf("oldest entry error = %v, want ErrMiss", err)
	}
}

func TestMemoryCache_MaxAgePurgesEntries(t *testing.T) {
	c := NewMemoryCache(100, 20*time.Millisecond)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		_ = c.Set(ctx, strconv.Itoa(i), []byte("x"), 0)
	}
	time.Sleep(200 * time.Millisecond)
	if _, err := c.Get(ctx, "0"); !errors.Is(err, ErrMiss) {
		t.Errorf("aged entry error = %v, want ErrMiss", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len after max age = %d, want 0", c.Len())
	}
}

func TestRedisCache(t *testing.T) {
	server := miniredis.RunT(t)
	c := NewRedisCache(server.Addr(), "", 0, "cnpdb:")
	defer c.Close()

	exerciseCache(t, c)

	if !server.Exists("cnpdb:k") {
		t.Errorf("expected prefixed key in redis, keys = %v", server.Keys())
	}
	server.FastForward(2 * time.Minute)
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expired entry error = %v, want ErrMiss", err)
	}
}

func TestNew(t *testing.T) {
	server := miniredis.RunT(t)
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", Config{}, false},
		{"memory", Config{Type: TypeMemory}, false},
		{"redis", Config{Type: TypeRedis, Address: server.Addr()}, false},
		{"unknown", Config{Type: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New error = %v, wantErr %v", err, tt.wantErr)
			}
			if c != nil {
				_ = c.Close()
			}
		})
	}
}

func TestKey(t *testing.T) {
	if Key("a", "bc") == Key("ab", "c") {
		t.Error("Key must separate parts")
	}
	if Key("x", "y") != Key("x", "y") {
		t.Error("Key must be deterministic")
	}
	if len(Key("x")) != 64 {
		t.Errorf("Key length = %d, want 64", len(Key("x")))
	}
}

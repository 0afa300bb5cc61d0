package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Cache stores opaque payloads with a time to live
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and configures a cache implementation
type Config struct {
	Type     string        `yaml:"type"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
	// Size caps the number of entries of the memory cache
	Size int `yaml:"size"`
}

// New creates the cache described by config. Redis is pinged once so a bad address fails early.
func New(ctx context.Context, config Config) (Cache, error) {
	switch config.Type {
	case "", TypeMemory:
		return NewMemoryCache(config.Size, config.TTL), nil
	case TypeRedis:
		c := NewRedisCache(config.Address, config.Password, config.DB, config.Prefix)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("redis cache at %s: %w", config.Address, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", config.Type)
	}
}

// Key derives a stable cache key from its parts
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

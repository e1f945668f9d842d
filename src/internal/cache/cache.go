package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Cache interface defines caching operations
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
}

// MemoryCache implements Cache using in-process storage (fallback)
type MemoryCache struct {
	data map[string]cacheItem
	mu   sync.RWMutex
}

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// Manager wraps a primary cache with an in-memory fallback
type Manager struct {
	primary   Cache
	fallback  Cache
	enabled   bool
	keyPrefix string
}

// NewManager creates a cache manager from configuration. Redis is used when
// enabled and reachable; otherwise everything lands in the memory fallback.
func NewManager(cfg *viper.Viper) *Manager {
	m := &Manager{
		enabled:   cfg.GetBool("cache.enabled"),
		keyPrefix: cfg.GetString("cache.key_prefix"),
	}
	if m.keyPrefix == "" {
		m.keyPrefix = "casforum:"
	}

	if m.enabled && cfg.GetBool("redis.enabled") {
		if rc, err := NewRedisCache(cfg); err == nil {
			m.primary = rc
		}
	}
	m.fallback = NewMemoryCache()

	return m
}

// NewRedisCache creates a Redis cache instance and verifies the connection
func NewRedisCache(cfg *viper.Viper) (*RedisCache, error) {
	addr := cfg.GetString("redis.addr")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.GetString("redis.password"),
		DB:           cfg.GetInt("redis.db"),
		DialTimeout:  time.Second * 5,
		ReadTimeout:  time.Second * 3,
		WriteTimeout: time.Second * 3,
		PoolSize:     10,
		PoolTimeout:  time.Second * 4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewMemoryCache creates an in-memory cache instance
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]cacheItem)}
}

// Manager methods

func (m *Manager) key(key string) string {
	return m.keyPrefix + key
}

func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	if !m.enabled {
		return "", ErrCacheMiss
	}

	fullKey := m.key(key)
	if m.primary != nil {
		if value, err := m.primary.Get(ctx, fullKey); err == nil {
			return value, nil
		}
	}
	return m.fallback.Get(ctx, fullKey)
}

func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !m.enabled {
		return nil
	}

	fullKey := m.key(key)
	if m.primary != nil {
		if err := m.primary.Set(ctx, fullKey, value, ttl); err == nil {
			return nil
		}
	}
	return m.fallback.Set(ctx, fullKey, value, ttl)
}

func (m *Manager) Delete(ctx context.Context, key string) error {
	if !m.enabled {
		return nil
	}

	fullKey := m.key(key)
	if m.primary != nil {
		m.primary.Delete(ctx, fullKey)
	}
	return m.fallback.Delete(ctx, fullKey)
}

func (m *Manager) DeletePattern(ctx context.Context, pattern string) error {
	if !m.enabled {
		return nil
	}

	fullPattern := m.key(pattern)
	if m.primary != nil {
		m.primary.DeletePattern(ctx, fullPattern)
	}
	return m.fallback.DeletePattern(ctx, fullPattern)
}

// GetJSON reads a key and unmarshals it into dest
func (m *Manager) GetJSON(ctx context.Context, key string, dest interface{}) error {
	value, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(value), dest)
}

// SetJSON marshals value and stores it under key
func (m *Manager) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !m.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.Set(ctx, key, string(data), ttl)
}

func (m *Manager) Close() error {
	if m.primary != nil {
		m.primary.Close()
	}
	return m.fallback.Close()
}

// RedisCache methods

func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return value, err
}

func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

func (rc *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := rc.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return rc.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// MemoryCache methods

func (mc *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	mc.mu.RLock()
	item, ok := mc.data[key]
	mc.mu.RUnlock()

	if !ok {
		return "", ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		mc.mu.Lock()
		delete(mc.data, key)
		mc.mu.Unlock()
		return "", ErrCacheMiss
	}
	return item.value, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	mc.mu.Lock()
	mc.data[key] = cacheItem{value: fmt.Sprintf("%v", value), expiresAt: expiresAt}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	delete(mc.data, key)
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for key := range mc.data {
		if matched, _ := path.Match(pattern, key); matched {
			delete(mc.data, key)
		}
	}
	return nil
}

func (mc *MemoryCache) Close() error {
	return nil
}

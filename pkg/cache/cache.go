// Package cache is a small JSON key/value cache. Values live in Redis once
// Connect succeeds; until then (or when Redis is down) an in-process map with
// per-entry expiry is used, so callers never have to check availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/metrics"
)

var RDB *redis.Client
var Ctx = context.Background()

type entry struct {
	data    []byte
	expires time.Time
}

var (
	memMu sync.Mutex
	mem   = map[string]entry{}
)

// Connect initialises the Redis client and verifies it with a ping. On error
// RDB stays nil and the in-memory store keeps serving.
func Connect() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(Ctx).Err(); err != nil {
		_ = client.Close()
		RDB = nil
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Driver reports which backend is active.
func Driver() string {
	if RDB != nil {
		return "redis"
	}
	return "memory"
}

// Get unmarshals the value under key into dest. Returns true on a hit.
func Get(key string, dest interface{}) bool {
	raw, ok := getRaw(key)
	metrics.RecordCacheLookup(prefix(key), ok)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func getRaw(key string) ([]byte, bool) {
	if RDB != nil {
		val, err := RDB.Get(Ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		return val, true
	}

	memMu.Lock()
	defer memMu.Unlock()
	e, ok := mem[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(mem, key)
		return nil, false
	}
	return e.data, true
}

// Set stores value under key for ttl. A zero ttl never expires.
func Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if RDB != nil {
		return RDB.Set(Ctx, key, data, ttl).Err()
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	memMu.Lock()
	mem[key] = e
	memMu.Unlock()
	return nil
}

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB != nil {
		return RDB.Del(Ctx, keys...).Err()
	}
	memMu.Lock()
	for _, k := range keys {
		delete(mem, k)
	}
	memMu.Unlock()
	return nil
}

// Forget is an alias for Del.
func Forget(key string) error {
	return Del(key)
}

// Remember returns the cached value for key, or calls fn, caches its result
// for ttl and returns it. Errors from fn are not cached.
func Remember[T any](key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	if Get(key, &cached) {
		return cached, nil
	}

	v, err := fn()
	if err != nil {
		return v, err
	}
	_ = Set(key, v, ttl)
	return v, nil
}

// Flush empties the in-memory store. Redis is left alone.
func Flush() {
	memMu.Lock()
	mem = map[string]entry{}
	memMu.Unlock()
}

func prefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

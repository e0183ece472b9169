package cache

import (
	"context"
	"encoding/json"
	"time"

	"HospitalMS/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

var (
	ErrNotInitialized  = errors.New("redis client is not initialized")
	ErrLockNotAcquired = errors.New("lock is held by another owner")
	ErrNotLockOwner    = errors.New("lock release failed: not the lock owner")
)

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

var releaseLock = redis.NewScript(releaseLockScript)

// Cache wraps Redis. Every call goes through a circuit breaker so an unavailable
// Redis turns into cache misses instead of slow failures.
type Cache struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	log    zerolog.Logger
}

// NewCache creates a new Cache instance, ensuring that client is not nil.
func NewCache(client *redis.Client, log zerolog.Logger) (*Cache, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return &Cache{client: client, cb: config.NewCircuitBreaker("redis", log), log: log}, nil
}

// Client exposes the underlying Redis client for health checks.
func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) do(fn func() (interface{}, error)) (interface{}, error) {
	return c.cb.Execute(fn)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.do(func() (interface{}, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	return err
}

// DeleteAll removes every key matching pattern using SCAN.
func (c *Cache) DeleteAll(ctx context.Context, pattern string) error {
	_, err := c.do(func() (interface{}, error) {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return nil, err
			}
		}
		return nil, iter.Err()
	})
	return err
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_, err := c.do(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, value, expiration).Err()
	})
	return err
}

// Get returns "" and no error when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.do(func() (interface{}, error) {
		v, err := c.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return "", nil
		}
		return v, err
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

// GetJSON decodes a cached value into dst. It reports false on a miss or any failure.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry is corrupt")
		return false
	}
	return true
}

// SetJSON encodes value and stores it. Failures are logged and returned.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache value")
	}
	if err := c.Set(ctx, key, payload, expiration); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return err
	}
	return nil
}

// Invalidate deletes keys and patterns, logging instead of failing the caller's write.
func (c *Cache) Invalidate(ctx context.Context, keys []string, patterns ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
	for _, p := range patterns {
		if err := c.DeleteAll(ctx, p); err != nil {
			c.log.Warn().Err(err).Str("pattern", p).Msg("cache invalidation failed")
		}
	}
}

// Lock acquires a distributed lock and returns the owner token.
func (c *Cache) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.do(func() (interface{}, error) {
		return c.client.SetNX(ctx, key, token, ttl).Result()
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to acquire lock")
	}
	if !ok.(bool) {
		return "", ErrLockNotAcquired
	}
	return token, nil
}

// Unlock releases a lock only when token still owns it.
func (c *Cache) Unlock(ctx context.Context, key, token string) error {
	res, err := c.do(func() (interface{}, error) {
		return releaseLock.Run(ctx, c.client, []string{key}, token).Result()
	})
	if err != nil {
		return errors.Wrap(err, "failed to release lock")
	}
	if n, _ := res.(int64); n == 0 {
		return ErrNotLockOwner
	}
	return nil
}

// LockOptions tune WithLock retries.
type LockOptions struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

var DefaultLockOptions = LockOptions{TTL: 10 * time.Second, Retries: 40, RetryDelay: 50 * time.Millisecond}

// WithLock runs fn while holding key. When Redis itself is unreachable fn still runs;
// the database unique indexes remain the last line of protection.
func (c *Cache) WithLock(ctx context.Context, key string, opts LockOptions, fn func() error) error {
	var token string
	var err error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		token, err = c.Lock(ctx, key, opts.TTL)
		if err == nil || !errors.Is(err, ErrLockNotAcquired) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	switch {
	case err == nil:
		defer func() {
			if err := c.Unlock(context.Background(), key, token); err != nil {
				c.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
			}
		}()
	case errors.Is(err, ErrLockNotAcquired):
		return errors.Wrapf(err, "failed to acquire lock %s after retries", key)
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("redis unavailable, continuing without lock")
	}
	return fn()
}

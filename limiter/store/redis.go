package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed implementation of Store.
// Suitable for distributed deployments in Kubernetes.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds configuration for Redis connection.
// Populate from environment variables in your application code.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	Prefix   string
}

// takeScript atomically applies the window semantics: start a fresh
// window when the key is absent or the window is zero, refuse without
// incrementing when the counter has reached the limit, and otherwise
// increment. Returns {allowed, remaining, pttl_ms}.
var takeScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

if window == 0 then
	redis.call('DEL', key)
end

local count = tonumber(redis.call('GET', key) or '0')

if count >= limit then
	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		ttl = 0
	end
	return {0, 0, ttl}
end

count = redis.call('INCR', key)
if count == 1 and window > 0 then
	redis.call('PEXPIRE', key, window)
end

local ttl = redis.call('PTTL', key)
if ttl < 0 then
	ttl = window
end
return {1, limit - count, ttl}
`)

// NewRedis creates a Redis store with the given configuration.
func NewRedis(config RedisConfig) (*Redis, error) {
	if config.Prefix == "" {
		config.Prefix = "secgate:ratelimit:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.URL,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{
		client: client,
		prefix: config.Prefix,
	}, nil
}

func (r *Redis) Take(ctx context.Context, key string, limit int64, window time.Duration) (Result, error) {
	vals, err := takeScript.Run(ctx, r.client, []string{r.prefix + key},
		limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("redis take failed: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("redis take returned %d values, want 3", len(vals))
	}

	return Result{
		Allowed:   vals[0] == 1,
		Remaining: vals[1],
		ResetAt:   time.Now().Add(time.Duration(vals[2]) * time.Millisecond),
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis reset failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

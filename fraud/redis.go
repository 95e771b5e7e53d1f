package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// historyTTL bounds how long an idle actor's history is kept in Redis.
// It comfortably covers the 24-hour lookback used by time-pattern
// analysis.
const historyTTL = 48 * time.Hour

// RedisHistory is a Redis-backed implementation of History.
// Events are stored as a JSON list per actor, trimmed to the history
// cap and expired after a period of inactivity.
type RedisHistory struct {
	client *redis.Client
	prefix string
}

// RedisHistoryConfig holds configuration for the Redis connection.
type RedisHistoryConfig struct {
	URL      string
	Password string
	DB       int
	Prefix   string
}

// NewRedisHistory creates a Redis-backed history with the given
// configuration.
func NewRedisHistory(config RedisHistoryConfig) (*RedisHistory, error) {
	if config.Prefix == "" {
		config.Prefix = "secgate:events:"
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

	return &RedisHistory{
		client: client,
		prefix: config.Prefix,
	}, nil
}

func (h *RedisHistory) Append(ctx context.Context, actor string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := h.prefix + actor
	pipe := h.client.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -maxHistoryPerActor, -1)
	pipe.Expire(ctx, key, historyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append failed: %w", err)
	}
	return nil
}

func (h *RedisHistory) Events(ctx context.Context, actor string) ([]Event, error) {
	vals, err := h.client.LRange(ctx, h.prefix+actor, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis events failed: %w", err)
	}

	events := make([]Event, 0, len(vals))
	for _, v := range vals {
		var e Event
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (h *RedisHistory) Close() error {
	return h.client.Close()
}

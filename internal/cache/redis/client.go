package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/pkg/logger"
)

// Client caches raw classifier output keyed by query hash. Lookups are
// best-effort: any redis failure is logged and treated as a miss so the
// query pipeline never depends on the cache being up.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis classification cache initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("ttl", ttl),
	)

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetClassification returns the cached raw classifier output for the query
// hash, if present.
func (c *Client) GetClassification(ctx context.Context, key string) (string, bool) {
	raw, err := c.client.Get(ctx, classificationKey(key)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warn("Classification cache lookup failed", zap.Error(err))
		return "", false
	}

	logger.Debug("Classification cache hit", zap.String("query_hash", key))
	return raw, true
}

// SetClassification stores raw classifier output under the query hash.
func (c *Client) SetClassification(ctx context.Context, key, raw string) {
	if err := c.client.Set(ctx, classificationKey(key), raw, c.ttl).Err(); err != nil {
		logger.Warn("Classification cache store failed", zap.Error(err))
		return
	}

	logger.Debug("Classification cached", zap.String("query_hash", key))
}

func classificationKey(hash string) string {
	return fmt.Sprintf("classification:%s", hash)
}

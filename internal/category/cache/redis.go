// Package cache stores built category trees in Redis, keyed by the content
// hash of the collection they came from. A changed collection hashes to a new
// key, so entries never need explicit invalidation; the TTL reclaims them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	treeKeyPrefix  = "categories:tree:"
	DefaultTreeTTL = 10 * time.Minute
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(cfg config.RedisConfig, log logger.ZapLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("redis connected", zap.String("addr", cfg.Addr))
	return client, nil
}

type RedisTreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ category.TreeCache = (*RedisTreeCache)(nil)

func NewRedisTreeCache(client *redis.Client, ttl time.Duration) *RedisTreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &RedisTreeCache{client: client, ttl: ttl}
}

func (c *RedisTreeCache) GetTree(ctx context.Context, key string) ([]*model.TreeNode, bool, error) {
	raw, err := c.client.Get(ctx, treeKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get tree: %w", err)
	}

	var tree []*model.TreeNode
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, false, fmt.Errorf("decode cached tree: %w", err)
	}
	return tree, true, nil
}

func (c *RedisTreeCache) SetTree(ctx context.Context, key string, tree []*model.TreeNode) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if err := c.client.Set(ctx, treeKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set tree: %w", err)
	}
	return nil
}

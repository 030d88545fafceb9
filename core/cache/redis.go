package cache

import (
	"context"
	"fmt"

	"setlist-api/core/config"
	"setlist-api/core/logger"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:NewRedisClient:Ping:Error", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

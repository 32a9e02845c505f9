package redisdb

import (
	"github.com/redis/go-redis/v9"

	"go-dialog/internal/config"
)

// NewClient connects to the Redis instance that backs login sessions.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

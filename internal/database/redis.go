package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions resolves the client options. REDIS_URL takes precedence over
// the host and port settings.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// InitDB opens a pgx pool for the postgres favorites backend and pings it.
func InitDB(ctx context.Context, cfg *DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.GetLogger().Infow("Connected to database",
		"url", logger.MaskConnectionString(cfg.URL()),
		"maxConns", poolConfig.MaxConns)
	return pool, nil
}

// InitRedis creates a Redis client and pings it. TLS is enabled when
// configured, which hosted providers such as Upstash require.
func InitRedis(ctx context.Context, cfg *RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: time.Hour,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.GetLogger().Infow("Connected to Redis", "address", cfg.Address, "tls", cfg.UseTLS)
	return client, nil
}

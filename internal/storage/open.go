package storage

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hperssn/attention/internal/config"
)

// Open builds the KV backend selected by cfg.StoreBackend.
func Open(cfg config.Config) (KV, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryKV(), nil

	case config.BackendFile, "":
		return NewFileKV(cfg.StoreDir), nil

	case config.BackendSQLite:
		kv, err := NewSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return kv, nil

	case config.BackendPostgres:
		kv, err := NewPostgresKV(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return kv, nil

	case config.BackendRedis:
		client := ConnectRedis(cfg)
		if client == nil {
			return nil, fmt.Errorf("redis backend needs REDIS_ADDR")
		}
		return NewRedisKV(client), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

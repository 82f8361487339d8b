package store

import (
	"context"
	"fmt"
	"strings"

	"mines-client/internal/config"
)

// Open builds the backend selected by STORE_DRIVER.
func Open(ctx context.Context, cfg config.StoreConfig) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return NewFileKV(cfg.StateDir)
	case "memory":
		return NewMemoryKV(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.KeyPrefix)
	case "postgres":
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
		return OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

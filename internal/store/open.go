package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/config"

	"github.com/redis/go-redis/v9"
)

// Open builds the adapter selected by cfg.Backend. The returned close func is never nil.
func Open(ctx context.Context, cfg config.Config) (board.Adapter, func() error, error) {
	nop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", config.BackendFile:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, nop, err
		}
		return NewFileAdapter(dir), nop, nil

	case config.BackendSQLite:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, nop, err
		}
		a, err := OpenSQLite(ctx, filepath.Join(dir, SQLiteFileName))
		if err != nil {
			return nil, nop, fmt.Errorf("open sqlite: %w", err)
		}
		return a, a.Close, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nop, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		a := NewRedisAdapter(client, cfg.Redis.Key)
		return a, a.Close, nil

	default:
		return nil, nop, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/config"
	"kanban-cli/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter stores the board JSON document under a single key.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, key string) *RedisAdapter {
	if client == nil {
		panic("store.NewRedisAdapter: client is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &RedisAdapter{client: client, key: key}
}

func (a *RedisAdapter) Key() string { return a.key }

func (a *RedisAdapter) source() string {
	return "redis:" + a.key
}

func (a *RedisAdapter) Load(ctx context.Context) (model.Board, error) {
	raw, err := a.client.Get(ctx, a.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Board{}, board.ErrAbsent
	}
	if err != nil {
		return model.Board{}, err
	}
	return decodeBoard(raw, a.source())
}

func (a *RedisAdapter) Save(ctx context.Context, b model.Board) error {
	raw, err := encodeBoard(b)
	if err != nil {
		return err
	}
	return a.client.Set(ctx, a.key, raw, 0).Err()
}

// Quarantine renames the key to <key>:corrupt:<unixms>. A missing key is left alone.
func (a *RedisAdapter) Quarantine(ctx context.Context) error {
	dest := fmt.Sprintf("%s:corrupt:%d", a.key, time.Now().UTC().UnixMilli())
	return a.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, a.key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Rename(ctx, a.key, dest)
			return nil
		})
		return err
	}, a.key)
}

func (a *RedisAdapter) Close() error {
	return a.client.Close()
}

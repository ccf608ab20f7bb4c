package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection parameters for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis keeps each account as a JSON string at "account:{id}". Suited to
// deployments where several host processes share one ledger backend.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects and pings to verify connectivity.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, unavailable("redis: ping", err)
	}
	return &Redis{rdb: rdb}, nil
}

func accountKey(accountID string) string {
	return "account:" + accountID
}

func (r *Redis) Load(ctx context.Context, accountID string) (*ledger.Account, error) {
	data, err := r.rdb.Get(ctx, accountKey(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: load: %w: %q", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return nil, unavailable("redis: load", err)
	}
	return decode([]byte(data))
}

func (r *Redis) Save(ctx context.Context, acct *ledger.Account) error {
	data, err := encode(acct)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, accountKey(acct.ID), data, 0).Err(); err != nil {
		return unavailable("redis: save", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, accountID string) error {
	n, err := r.rdb.Del(ctx, accountKey(accountID)).Result()
	if err != nil {
		return unavailable("redis: delete", err)
	}
	if n == 0 {
		return fmt.Errorf("redis: delete: %w: %q", ErrAccountNotFound, accountID)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atendo-hq/atendo/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

const unreadKeyPrefix = "unread:"

// ErrCounterMiss signals the per-user counter is absent and must be
// recomputed from the store.
var ErrCounterMiss = errors.New("unread counter missing")

// UnreadCounter maintains the per-user unread message counter. Keeping it as
// a direct counter avoids recounting addressed-minus-read on every access;
// the store query remains the source of truth on a miss.
type UnreadCounter struct {
	client *redis.Client
}

// NewUnreadCounter builds a counter over an established connection.
func NewUnreadCounter(r *Redis) *UnreadCounter {
	if r == nil {
		return &UnreadCounter{}
	}
	return &UnreadCounter{client: r.Client}
}

// Incr bumps the counter for a recipient of a new message.
func (u *UnreadCounter) Incr(ctx context.Context, userID string) error {
	if u == nil || u.client == nil {
		return nil
	}
	return u.client.Incr(ctx, unreadKeyPrefix+userID).Err()
}

// Decr lowers the counter after a read receipt, never below zero.
func (u *UnreadCounter) Decr(ctx context.Context, userID string) error {
	if u == nil || u.client == nil {
		return nil
	}
	key := unreadKeyPrefix + userID
	n, err := u.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return u.client.Set(ctx, key, 0, 0).Err()
	}
	return nil
}

// Get returns the counter value or ErrCounterMiss when absent.
func (u *UnreadCounter) Get(ctx context.Context, userID string) (int64, error) {
	if u == nil || u.client == nil {
		return 0, ErrCounterMiss
	}
	n, err := u.client.Get(ctx, unreadKeyPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCounterMiss
	}
	return n, err
}

// Set seeds the counter after a recompute.
func (u *UnreadCounter) Set(ctx context.Context, userID string, value int64) error {
	if u == nil || u.client == nil {
		return nil
	}
	return u.client.Set(ctx, unreadKeyPrefix+userID, value, 0).Err()
}

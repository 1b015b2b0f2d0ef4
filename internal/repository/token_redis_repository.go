package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisTokenRepository struct {
	client *redis.Client
	key    string
}

// NewRedisTokenRepository stores the token under a single Redis key,
// letting several client processes on one host share a login.
func NewRedisTokenRepository(client *redis.Client, key string) TokenRepository {
	return &redisTokenRepository{client: client, key: key}
}

func (r *redisTokenRepository) Get(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Set stores the token without a TTL; expiry is decided from the exp
// claim by the session controller.
func (r *redisTokenRepository) Set(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.key, token, 0).Err()
}

func (r *redisTokenRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

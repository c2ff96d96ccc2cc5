package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps short-lived verification codes keyed by purpose and email.
type OTPStore interface {
	Set(ctx context.Context, purpose, email, code string, ttl time.Duration) error
	Get(ctx context.Context, purpose, email string) (string, error)
	Delete(ctx context.Context, purpose, email string) error
}

type redisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) getKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func (s *redisOTPStore) Set(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, s.getKey(purpose, email), code, ttl).Err()
}

// Get returns the stored code, or an empty string when none exists.
func (s *redisOTPStore) Get(ctx context.Context, purpose, email string) (string, error) {
	val, err := s.client.Get(ctx, s.getKey(purpose, email)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, purpose, email string) error {
	return s.client.Del(ctx, s.getKey(purpose, email)).Err()
}

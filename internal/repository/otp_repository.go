package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRepository holds transient OTP state in Redis: pending code hashes
// and the windowed send/verify counters. Keys carry their own TTLs, so
// nothing here needs a cleanup job.
type OTPRepository struct {
	redis *redis.Client
}

// NewOTPRepository creates a new OTP state repository.
func NewOTPRepository(redisClient *redis.Client) *OTPRepository {
	return &OTPRepository{redis: redisClient}
}

// Set stores a value under the key for the given TTL.
func (r *OTPRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("otp set %s: %w", key, err)
	}
	return nil
}

// Get returns the value under the key. The second return is false when the
// key does not exist (never stored, or its TTL elapsed).
func (r *OTPRepository) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("otp get %s: %w", key, err)
	}
	return val, true, nil
}

// Del removes the given keys. Missing keys are not an error.
func (r *OTPRepository) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("otp del: %w", err)
	}
	return nil
}

// IncrWindow increments a windowed counter and returns the new count.
// The TTL is set on first increment only, so the window doesn't slide
// forward on every request.
func (r *OTPRepository) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("otp incr %s: %w", key, err)
	}
	if n == 1 {
		_ = r.redis.Expire(ctx, key, window).Err()
	}
	return n, nil
}

package policy

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const ageGapKey = "quarters:settings:age_gap"

// RedisStore shares the setting across instances. An unset key falls back
// to the configured default.
type RedisStore struct {
	client        *redis.Client
	defaultAgeGap int
}

func NewRedisStore(client *redis.Client, defaultAgeGap int) *RedisStore {
	return &RedisStore{client: client, defaultAgeGap: defaultAgeGap}
}

func (s *RedisStore) AgeGap(ctx context.Context) (int, error) {
	val, err := s.client.Get(ctx, ageGapKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.defaultAgeGap, nil
		}
		return 0, fmt.Errorf("get age gap: %w", err)
	}

	years, err := strconv.Atoi(val)
	if err != nil || validateAgeGap(years) != nil {
		// A corrupted value must not poison bulk runs.
		return s.defaultAgeGap, nil
	}
	return years, nil
}

func (s *RedisStore) SetAgeGap(ctx context.Context, years int) error {
	if err := validateAgeGap(years); err != nil {
		return err
	}
	if err := s.client.Set(ctx, ageGapKey, strconv.Itoa(years), 0).Err(); err != nil {
		return fmt.Errorf("set age gap: %w", err)
	}
	return nil
}

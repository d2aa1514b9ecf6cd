// Package cache is a thin read-through JSON cache over Redis. Every helper
// degrades to a no-op when Redis was never connected, so the service keeps
// working (slower) without it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	MealsKey = "homeplate:meals"
	StatsKey = "homeplate:stats"

	StatsTTL = 60 * time.Second
	MealsTTL = 5 * time.Minute
)

var Client *redis.Client

func Init(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	Client = client
	return nil
}

// GetJSON loads key into dest, reporting whether it was present.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if Client == nil {
		return false, nil
	}
	data, err := Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if Client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Client.Set(ctx, key, data, ttl).Err()
}

// Invalidate drops keys, logging rather than failing: a stale cache entry
// expires on its own soon enough.
func Invalidate(ctx context.Context, keys ...string) {
	if Client == nil {
		return
	}
	if err := Client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("cache invalidation failed")
	}
}

func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}

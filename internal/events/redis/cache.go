package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-attendance/internal/models"
)

const defaultCacheTTL = 30 * time.Second

// Redis caches access-code lookups for the check-in hot path. The TTL is kept
// short so a deleted event's code stops resolving quickly even when the
// explicit invalidation is missed.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Redis{Client: client, TTL: ttl}
}

func codeKey(code string) string {
	return "event_code:" + code
}

// GetEvent returns the cached event for an access code, or nil on a miss.
func (r *Redis) GetEvent(code string) (*models.Event, error) {
	val, err := r.Client.Get(context.Background(), codeKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var event models.Event
	if err := json.Unmarshal([]byte(val), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *Redis) SetEvent(event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.Client.Set(context.Background(), codeKey(event.AccessCode), msgBytes, r.TTL).Err()
}

func (r *Redis) Invalidate(code string) error {
	return r.Client.Del(context.Background(), codeKey(code)).Err()
}

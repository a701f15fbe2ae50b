package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evreserve/internal/models"
)

// ActiveSessions caches each user's non-terminal sessions in redis so
// repeated list calls skip the ledger scan. Entries are invalidated on
// every committed transition for that user.
type ActiveSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a redis-backed cache.
func New(client *redis.Client, ttl time.Duration) *ActiveSessions {
	return &ActiveSessions{client: client, ttl: ttl}
}

func (c *ActiveSessions) key(userID string) string {
	return fmt.Sprintf("sessions:user:%s:active", userID)
}

// Get returns the cached session list; redis.Nil on a miss.
func (c *ActiveSessions) Get(ctx context.Context, userID string) ([]*models.Session, error) {
	result, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	var sessions []*models.Session
	if err := json.Unmarshal([]byte(result), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save caches the session list for the user.
func (c *ActiveSessions) Save(ctx context.Context, userID string, sessions []*models.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID), data, c.ttl).Err()
}

// Invalidate drops the user's cached list.
func (c *ActiveSessions) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionRecordPrefix = "petloc:session-record:"

// SessionRecord is the lightweight profile cached for a signed-in user. The
// role here is advisory (UI hints); authorization always re-reads the store.
type SessionRecord struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RoleCache keeps session records in Redis so profile/role lookups do not hit
// Mongo on every request.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{client: client, ttl: ttl}
}

func (c *RoleCache) Put(ctx context.Context, rec *SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return c.client.Set(ctx, sessionRecordPrefix+rec.ID, data, c.ttl).Err()
}

// Get returns the cached record, or nil when there is none.
func (c *RoleCache) Get(ctx context.Context, userID string) (*SessionRecord, error) {
	data, err := c.client.Get(ctx, sessionRecordPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	return &rec, nil
}

func (c *RoleCache) Remove(ctx context.Context, userID string) error {
	return c.client.Del(ctx, sessionRecordPrefix+userID).Err()
}

package store

import (
	"context"
	"time"

	platformredis "tramita/internal/platform/redis"
	id "tramita/pkg/domain"
)

const (
	codeKeyPrefix = "tramita:verify:"
	codeTTL       = 24 * time.Hour
)

// RedisCodeCache caches verification-code lookups. The public verification
// endpoint is the only anonymous surface of the system, so its hot path
// avoids the database on repeat lookups. Cache failures degrade to a store
// read and are never surfaced to callers.
type RedisCodeCache struct {
	client *platformredis.Client
}

func NewRedisCodeCache(client *platformredis.Client) *RedisCodeCache {
	return &RedisCodeCache{client: client}
}

func (c *RedisCodeCache) Get(ctx context.Context, code string) (id.DocumentID, bool) {
	if c == nil || c.client == nil {
		return id.DocumentID{}, false
	}
	raw, err := c.client.Get(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return id.DocumentID{}, false
	}
	documentID, err := id.ParseDocumentID(raw)
	if err != nil {
		return id.DocumentID{}, false
	}
	return documentID, true
}

func (c *RedisCodeCache) Set(ctx context.Context, code string, documentID id.DocumentID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.SetEx(ctx, codeKeyPrefix+code, documentID.String(), codeTTL)
}

func (c *RedisCodeCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, codeKeyPrefix+code)
}

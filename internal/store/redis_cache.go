package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortify/internal/shortener"
)

// RedisLinkCache is a shortener.Cache backed by one Redis hash per code.
// A zero ttl keeps entries until the server's maxmemory policy evicts them.
type RedisLinkCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLinkCache creates a Redis link cache.
func NewRedisLinkCache(client *redis.Client, ttl time.Duration) *RedisLinkCache {
	return &RedisLinkCache{
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

func (r *RedisLinkCache) Get(ctx context.Context, code shortener.Code) (*shortener.ShortLink, bool, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(result) == 0 {
		return nil, false, nil
	}

	id, err := strconv.ParseInt(result["id"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	ownerID, err := strconv.ParseInt(result["owner_id"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortLink{
		ID:        id,
		LongURL:   result["long_url"],
		Code:      code,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
	}, true, nil
}

func (r *RedisLinkCache) Put(ctx context.Context, code shortener.Code, link *shortener.ShortLink) error {
	pipe := r.client.Pipeline()
	key := r.prefix + string(code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":         link.ID,
		"long_url":   link.LongURL,
		"owner_id":   link.OwnerID,
		"created_at": link.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, err := pipe.Exec(ctx)

	return err
}

var _ shortener.Cache = (*RedisLinkCache)(nil)

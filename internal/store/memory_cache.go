package store

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/serroba/shortify/internal/shortener"
)

// MemoryLinkCache is an in-process shortener.Cache. Entries never expire and are never evicted.
type MemoryLinkCache struct {
	entries *cache.Cache
}

func NewMemoryLinkCache() *MemoryLinkCache {
	return &MemoryLinkCache{entries: cache.New(cache.NoExpiration, 0)}
}

func (c *MemoryLinkCache) Get(_ context.Context, code shortener.Code) (*shortener.ShortLink, bool, error) {
	v, ok := c.entries.Get(string(code))
	if !ok {
		return nil, false, nil
	}

	link := v.(shortener.ShortLink)

	return &link, true, nil
}

func (c *MemoryLinkCache) Put(_ context.Context, code shortener.Code, link *shortener.ShortLink) error {
	c.entries.Set(string(code), *link, cache.NoExpiration)

	return nil
}

// Len reports the number of cached entries.
func (c *MemoryLinkCache) Len() int {
	return c.entries.ItemCount()
}

var _ shortener.Cache = (*MemoryLinkCache)(nil)

package binding

import (
	"context"
	"time"

	"github.com/allegro/bigcache"
	"github.com/pkg/errors"
)

// Cache is a read-through cache over verify lookups
type Cache interface {
	Put(ctx context.Context, key string, entry []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type defaultCache struct {
	backend *bigcache.BigCache
}

// NewDefaultCache initializes a bigcache-backed cache
func NewDefaultCache(ttl time.Duration) (Cache, error) {
	backend, err := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize default cache")
	}

	return &defaultCache{backend: backend}, nil
}

func (c *defaultCache) Put(ctx context.Context, key string, entry []byte) error {
	return errors.Wrapf(c.backend.Set(key, entry), "failed to cache entry: %s", key)
}

func (c *defaultCache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := c.backend.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, ErrRecordNotFound
		}

		return nil, err
	}

	return entry, nil
}

func (c *defaultCache) Delete(ctx context.Context, key string) error {
	if err := c.backend.Delete(key); err != nil && err != bigcache.ErrEntryNotFound {
		return err
	}

	return nil
}

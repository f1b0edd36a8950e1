// Package modelstore persists fitted forecasting models keyed by a
// slugified commodity name and decides whether a stored model is fresh.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pricecast/pricecast/internal/config"
)

// ErrCacheMiss is returned when no blob is stored under a key
var ErrCacheMiss = errors.New("cache miss")

// CacheMissError names the key that was not found
type CacheMissError struct {
	Key string
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("no cached model for %q", e.Key)
}

func (e *CacheMissError) Unwrap() error {
	return ErrCacheMiss
}

// Store is a durable blob store. Put replaces the whole blob atomically:
// readers see either the previous or the new blob, never a partial one.
type Store interface {
	// Get returns the blob and the time it was stored
	Get(ctx context.Context, key string) ([]byte, time.Time, error)

	// Put writes the blob and returns its storage time
	Put(ctx context.Context, key string, blob []byte) (time.Time, error)

	// StoredAt returns the storage time without reading the blob
	StoredAt(ctx context.Context, key string) (time.Time, error)

	// Location describes where key is stored, for responses and logs
	Location(key string) string

	// Root describes where all keys are stored
	Root() string

	Close() error
}

// NewStore creates the store selected by configuration
func NewStore(cfg config.ModelsConfig) (Store, error) {
	switch cfg.Store {
	case "", config.ModelStoreFilesystem:
		return NewFilesystemStore(cfg.Dir)
	case config.ModelStoreRedis:
		return NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	case config.ModelStoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported model store: %s", cfg.Store)
	}
}

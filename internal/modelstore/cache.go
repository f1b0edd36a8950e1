package modelstore

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/logging"
)

// defaultMemoSize bounds the decoded models kept in memory
const defaultMemoSize = 256

type memoEntry struct {
	storedAt time.Time
	model    *forecast.ProphetModel
}

// ModelCache maps a commodity key to its persisted model. A model is fresh
// when its storage time is not older than the data version. Decoded models
// are memoized per storage time, so a rewrite by another process is picked
// up on the next Load.
type ModelCache struct {
	store  Store
	memo   *lru.Cache[string, memoEntry]
	logger *logging.Logger
}

// NewModelCache wraps store
func NewModelCache(store Store, logger *logging.Logger) *ModelCache {
	if logger == nil {
		logger = logging.NewNop()
	}
	memo, _ := lru.New[string, memoEntry](defaultMemoSize)
	return &ModelCache{store: store, memo: memo, logger: logger}
}

// Key returns the cache key of a commodity. Names without a single letter
// or digit fall back to a hash of the raw name so they never share a key.
func (c *ModelCache) Key(commodity string) string {
	if key := Slugify(commodity); key != "" {
		return key
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(commodity))
	return fmt.Sprintf("h%016x", h.Sum64())
}

// Location describes where the model for key is stored
func (c *ModelCache) Location(key string) string {
	return c.store.Location(key)
}

// Root describes where all models are stored
func (c *ModelCache) Root() string {
	return c.store.Root()
}

// IsFresh reports whether a model exists under key and was stored at or
// after dataVersion. Store errors count as not fresh.
func (c *ModelCache) IsFresh(ctx context.Context, key string, dataVersion time.Time) bool {
	storedAt, err := c.store.StoredAt(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Model freshness check failed", "key", key, "error", err)
		}
		return false
	}
	return !storedAt.Before(dataVersion)
}

// Load returns the model stored under key. It fails with a CacheMissError
// when nothing is stored, ErrOutdatedModel for an older format and
// ErrCorruptModel when the blob is unusable.
func (c *ModelCache) Load(ctx context.Context, key string) (*forecast.ProphetModel, error) {
	storedAt, err := c.store.StoredAt(ctx, key)
	if err != nil {
		return nil, err
	}
	if e, ok := c.memo.Get(key); ok && e.storedAt.Equal(storedAt) {
		return e.model, nil
	}

	blob, storedAt, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	model, err := Decode(blob)
	if err != nil {
		c.memo.Remove(key)
		return nil, fmt.Errorf("failed to load model %s: %w", key, err)
	}

	c.memo.Add(key, memoEntry{storedAt: storedAt, model: model})
	return model, nil
}

// Store encodes and writes model under key, returning the storage time
func (c *ModelCache) Store(ctx context.Context, key string, model *forecast.ProphetModel) (time.Time, error) {
	blob, err := Encode(model)
	if err != nil {
		return time.Time{}, err
	}
	storedAt, err := c.store.Put(ctx, key, blob)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to store model %s: %w", key, err)
	}

	c.memo.Add(key, memoEntry{storedAt: storedAt, model: model})
	c.logger.Debug("Model stored", "key", key, "location", c.store.Location(key), "bytes", len(blob))
	return storedAt, nil
}

// Evict drops the decoded copy of key
func (c *ModelCache) Evict(key string) {
	c.memo.Remove(key)
}

// Memoized reports whether a decoded copy of key is held in memory
func (c *ModelCache) Memoized(key string) bool {
	return c.memo.Contains(key)
}

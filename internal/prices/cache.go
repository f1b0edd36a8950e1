package prices

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/pricecast/pricecast/internal/logging"
)

// CachedSource keeps recently loaded snapshots keyed by source version.
// A version change misses the cache and reloads; concurrent misses for the
// same version share one load.
type CachedSource struct {
	source Source
	cache  *lru.Cache[string, *Dataset]
	group  singleflight.Group
	logger *logging.Logger
}

// NewCachedSource wraps source with an LRU of the given size
func NewCachedSource(source Source, size int, logger *logging.Logger) (*CachedSource, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache, err := lru.New[string, *Dataset](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	return &CachedSource{source: source, cache: cache, logger: logger}, nil
}

func (c *CachedSource) Name() string {
	return c.source.Name()
}

func (c *CachedSource) Version(ctx context.Context) (time.Time, error) {
	return c.source.Version(ctx)
}

func (c *CachedSource) Load(ctx context.Context) (*Dataset, error) {
	version, err := c.source.Version(ctx)
	if err != nil {
		return nil, err
	}

	key := c.key(version)
	if ds, ok := c.cache.Get(key); ok {
		return ds, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		ds, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Add(c.key(ds.Version), ds)
		c.logger.Info("Price snapshot loaded",
			"source", c.source.Name(),
			"version", ds.Version,
			"records", ds.Len())
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (c *CachedSource) key(version time.Time) string {
	return c.source.Name() + "@" + version.UTC().Format(time.RFC3339Nano)
}

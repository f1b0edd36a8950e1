package services

import (
	"context"
	"testing"
	"time"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/modelstore"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/workers"
)

var (
	testStart   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dataVersion = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

// staticSource serves a fixed dataset
type staticSource struct {
	ds  *prices.Dataset
	err error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Version(ctx context.Context) (time.Time, error) {
	if s.err != nil {
		return time.Time{}, s.err
	}
	return s.ds.Version, nil
}

func (s *staticSource) Load(ctx context.Context) (*prices.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

func newStaticSource(records ...[]prices.PriceRecord) *staticSource {
	var all []prices.PriceRecord
	for _, r := range records {
		all = append(all, r...)
	}
	return &staticSource{ds: &prices.Dataset{Records: all, Version: dataVersion}}
}

// linearRecords builds one record per day from testStart
func linearRecords(commodity string, n int, base, step float64) []prices.PriceRecord {
	out := make([]prices.PriceRecord, n)
	for i := range out {
		out[i] = prices.PriceRecord{
			Commodity: commodity,
			Date:      testStart.AddDate(0, 0, i),
			Amount:    base + step*float64(i),
			Type:      "Retail",
		}
	}
	return out
}

type testEngine struct {
	*ForecastEngine
	store *modelstore.MemoryStore
}

func newTestEngine(t *testing.T, source prices.Source) *testEngine {
	t.Helper()
	store := modelstore.NewMemoryStore()
	engine := NewForecastEngine(source, modelstore.NewModelCache(store, nil), EngineOptions{
		Noise: forecast.NewNoise(42),
		Pool:  workers.NewPool(2, 0),
	})
	return &testEngine{ForecastEngine: engine, store: store}
}

// corrupt stores an undecodable blob for commodity at storedAt
func (e *testEngine) corrupt(commodity string, storedAt time.Time) {
	e.store.PutAt(e.cache.Key(commodity), []byte("not a model"), storedAt)
}

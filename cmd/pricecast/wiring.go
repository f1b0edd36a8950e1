package main

import (
	"context"
	"fmt"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/metrics"
	"github.com/pricecast/pricecast/internal/modelstore"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/queue"
	"github.com/pricecast/pricecast/internal/services"
	"github.com/pricecast/pricecast/internal/workers"
)

// components holds everything the subcommands share
type components struct {
	source   prices.Source
	store    modelstore.Store
	events   queue.Queue
	metrics  *metrics.Metrics
	pool     *workers.Pool
	engine   *services.ForecastEngine
	training *services.TrainingService
	catalog  *services.CatalogService

	closers []func()
}

// build connects the data source, model store and event bus
func build(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*components, error) {
	c := &components{}

	logger.Info("Opening price source", "source", cfg.Data.Source, "path", cfg.Data.Path)
	raw, err := prices.NewSource(ctx, cfg.Data, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open price source: %w", err)
	}
	if pg, ok := raw.(*prices.PostgresSource); ok {
		c.closers = append(c.closers, pg.Close)
	}
	c.source, err = prices.NewCachedSource(raw, cfg.Data.SnapshotCacheSize, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Opening model store", "store", cfg.Models.Store)
	c.store, err = modelstore.NewStore(cfg.Models)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open model store: %w", err)
	}
	c.closers = append(c.closers, func() { _ = c.store.Close() })

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	c.events, err = queue.NewQueue(cfg.Queue)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}
	c.closers = append(c.closers, func() { _ = c.events.Close() })

	c.metrics = metrics.New()
	c.pool = workers.NewPool(cfg.Forecast.FitWorkers, cfg.Forecast.FitTimeout)
	c.metrics.RegisterGaugeFunc("fit_pool_in_flight", "Fit and predict calls currently running",
		func() float64 { return float64(c.pool.InFlight()) })
	c.metrics.RegisterGaugeFunc("fit_pool_size", "Concurrent fit and predict slots",
		func() float64 { return float64(c.pool.Size()) })

	c.engine = services.NewForecastEngine(c.source, modelstore.NewModelCache(c.store, logger), services.EngineOptions{
		Noise:   forecast.NewNoise(cfg.Forecast.Seed),
		Pool:    c.pool,
		Events:  c.events,
		Metrics: c.metrics,
		Logger:  logger,

		Seasonality: cfg.Forecast.Seasonality,
	})
	c.training = services.NewTrainingService(c.engine, cfg.Training, logger)
	c.catalog = services.NewCatalogService(c.source)
	return c, nil
}

// Close releases connections in reverse order of acquisition
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

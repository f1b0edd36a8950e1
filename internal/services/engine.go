package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pricecast/pricecast/internal/analytics"
	"github.com/pricecast/pricecast/internal/analytics/anomaly"
	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/metrics"
	"github.com/pricecast/pricecast/internal/modelstore"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/queue"
	"github.com/pricecast/pricecast/internal/utils"
	"github.com/pricecast/pricecast/internal/workers"
)

// Forecast kinds, used in logs and metric labels
const (
	KindDaily    = "daily"
	KindWeekly   = "weekly"
	KindExtended = "extended"
)

// plan describes one forecast path: which history it uses and which
// heuristics back up the primary model
type plan struct {
	kind         string
	window       int
	minPoints    int
	insufficient string // format, commodity
	exhausted    string // format, commodity
	fallbacks    []forecast.Forecaster
}

// Result is a successful run of a fallback chain
type Result struct {
	Commodity      string
	Points         []forecast.ForecastPoint
	Method         string
	PrimaryError   string // set when a fallback produced the points
	DataPointsUsed int
}

// EngineOptions are the optional collaborators of a ForecastEngine
type EngineOptions struct {
	Noise   forecast.Noise
	Pool    *workers.Pool
	Events  queue.Publisher
	Metrics *metrics.Metrics
	Logger  *logging.Logger

	// Seasonality is forecast.SeasonalityAuto (default) or forecast.SeasonalityNone
	Seasonality string
}

// ForecastEngine produces forecasts from the price source. The primary
// model is read from the model cache when fresh and fitted on demand
// otherwise; any primary failure falls through to the heuristics.
type ForecastEngine struct {
	source     prices.Source
	aggregator *prices.SeriesAggregator
	filter     *anomaly.OutlierFilter
	cache      *modelstore.ModelCache
	prophet    *forecast.ProphetForecaster
	pool       *workers.Pool
	events     queue.Publisher
	metrics    *metrics.Metrics
	logger     *logging.Logger
	fits       singleflight.Group

	daily    plan
	weekly   plan
	extended plan
}

// NewForecastEngine wires an engine over source and cache
func NewForecastEngine(source prices.Source, cache *modelstore.ModelCache, opts EngineOptions) *ForecastEngine {
	if opts.Noise == nil {
		opts.Noise = forecast.NewNoise(0)
	}
	if opts.Pool == nil {
		opts.Pool = workers.NewPool(runtime.NumCPU(), 0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	prophet := forecast.NewProphetForecaster()
	if err := prophet.SetSeasonality(opts.Seasonality); err != nil {
		opts.Logger.Warn("Ignoring seasonality setting", "error", err)
	}

	pattern := forecast.NewPatternForecaster(opts.Noise)
	naive := forecast.NewNaiveForecaster(opts.Noise)

	return &ForecastEngine{
		source:     source,
		aggregator: prices.NewSeriesAggregator(),
		filter:     anomaly.NewOutlierFilter(utils.OutlierSigma),
		cache:      cache,
		prophet:    prophet,
		pool:       opts.Pool,
		events:     opts.Events,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		daily: plan{
			kind:         KindDaily,
			window:       utils.DailyHistoryWindow,
			minPoints:    utils.MinDailyPoints,
			insufficient: "Not enough valid data for '%s' after outlier removal",
			exhausted:    "All forecasting methods failed for '%s'",
			fallbacks:    []forecast.Forecaster{pattern, naive},
		},
		weekly: plan{
			kind:         KindWeekly,
			window:       utils.DailyHistoryWindow,
			minPoints:    utils.MinDailyPoints,
			insufficient: "Not enough valid historical data for '%s' weekly forecast",
			exhausted:    "Weekly forecasting failed for '%s'",
			fallbacks:    []forecast.Forecaster{pattern, naive},
		},
		extended: plan{
			kind:         KindExtended,
			window:       utils.ExtendedHistoryWindow,
			minPoints:    utils.MinExtendedPoints,
			insufficient: "Not enough valid historical data for '%s' extended forecast (need at least 30 days)",
			exhausted:    "Extended forecasting failed for '%s'",
			fallbacks:    []forecast.Forecaster{forecast.NewExtendedLinearForecaster()},
		},
	}
}

// Source returns the price source the engine reads
func (e *ForecastEngine) Source() prices.Source {
	return e.source
}

// Cache returns the model cache
func (e *ForecastEngine) Cache() *modelstore.ModelCache {
	return e.cache
}

// run loads the history for commodity and walks the fallback chain of p
func (e *ForecastEngine) run(ctx context.Context, p plan, commodity string, days int) (*Result, error) {
	ds, err := e.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	series, err := e.aggregator.Aggregate(ds.Records, commodity, p.window)
	if err != nil {
		return nil, fromDataError(err)
	}

	history, removed := e.filter.Filter(series)
	if history.Len() < p.minPoints {
		return nil, NewServiceError(CodeInsufficientData, fmt.Sprintf(p.insufficient, commodity))
	}

	log := e.logger.WithContext(ctx).With("commodity", commodity, "kind", p.kind)
	log.Debug("History prepared", "points", history.Len(), "outliers_removed", removed, "days", days)

	points, err := e.primary(ctx, commodity, history, ds.Version, days)
	if err == nil {
		e.metrics.Forecasts.WithLabelValues(p.kind, forecast.MethodProphet).Inc()
		return &Result{
			Commodity:      commodity,
			Points:         points,
			Method:         forecast.MethodProphet,
			DataPointsUsed: history.Len(),
		}, nil
	}

	primaryErr := err
	from := forecast.MethodProphet
	for _, f := range p.fallbacks {
		log.Warn("Forecast method failed, falling back", "from", from, "to", f.Name(), "error", err)
		e.metrics.Fallbacks.WithLabelValues(p.kind, from, f.Name()).Inc()

		points, err = f.Forecast(history, days)
		if err == nil && len(points) > 0 {
			e.metrics.Forecasts.WithLabelValues(p.kind, f.Name()).Inc()
			return &Result{
				Commodity:      commodity,
				Points:         points,
				Method:         f.Name(),
				PrimaryError:   primaryErr.Error(),
				DataPointsUsed: history.Len(),
			}, nil
		}
		if err == nil {
			err = forecast.ErrNoForecast
		}
		from = f.Name()
	}

	log.Error("All forecasting methods failed", "last_error", err, "primary_error", primaryErr)
	e.metrics.ForecastFailures.WithLabelValues(p.kind).Inc()
	return nil, NewServiceError(CodeForecastUnavailable, fmt.Sprintf(p.exhausted, commodity))
}

// primary predicts days points with the cached model, fitting and storing
// a new one first when the cache is stale or holds an older model format
func (e *ForecastEngine) primary(ctx context.Context, commodity string, history analytics.TimeSeriesData, version time.Time, days int) ([]forecast.ForecastPoint, error) {
	key := e.cache.Key(commodity)

	var model *forecast.ProphetModel
	if e.cache.IsFresh(ctx, key, version) {
		m, err := e.cache.Load(ctx, key)
		switch {
		case err == nil:
			e.metrics.ModelCache.WithLabelValues("fresh").Inc()
			model = m
		case errors.Is(err, modelstore.ErrOutdatedModel):
			e.metrics.ModelCache.WithLabelValues("outdated").Inc()
		case errors.Is(err, modelstore.ErrCorruptModel):
			e.metrics.ModelCache.WithLabelValues("corrupt").Inc()
			return nil, err
		default:
			e.metrics.ModelCache.WithLabelValues("error").Inc()
			return nil, err
		}
	} else {
		e.metrics.ModelCache.WithLabelValues("stale").Inc()
	}

	if model == nil {
		m, _, err := e.fitAndStore(ctx, commodity, key, history, queue.TriggerOnDemand)
		if err != nil {
			return nil, err
		}
		model = m
	}

	points, err := workers.Run(ctx, e.pool, func(context.Context) ([]forecast.ForecastPoint, error) {
		return model.Predict(days)
	})
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Yhat = utils.Round2(points[i].Yhat)
		points[i].YhatLower = utils.Round2(points[i].YhatLower)
		points[i].YhatUpper = utils.Round2(points[i].YhatUpper)
	}
	return points, nil
}

type fitResult struct {
	model    *forecast.ProphetModel
	storedAt time.Time
}

// fitAndStore fits history on the worker pool and writes the model under
// key. Concurrent calls for the same key and history share one fit, which
// is bounded by the pool timeout rather than by any one caller: a caller
// that gives up returns its ctx error while the fit completes for the rest.
func (e *ForecastEngine) fitAndStore(ctx context.Context, commodity, key string, history analytics.TimeSeriesData, trigger string) (*forecast.ProphetModel, time.Time, error) {
	flight := key
	if history.Len() > 0 {
		flight = fmt.Sprintf("%s|%d|%s", key, history.Len(), history.Last().Time.Format(utils.DateLayout))
	}

	fitCtx := context.WithoutCancel(ctx)
	ch := e.fits.DoChan(flight, func() (interface{}, error) {
		start := time.Now()
		model, err := workers.Run(fitCtx, e.pool, func(context.Context) (*forecast.ProphetModel, error) {
			return e.prophet.Fit(history)
		})
		e.metrics.FitDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			e.metrics.ModelFits.WithLabelValues(trigger, "failed").Inc()
			return nil, err
		}

		storedAt, err := e.cache.Store(fitCtx, key, model)
		if err != nil {
			e.metrics.ModelFits.WithLabelValues(trigger, "failed").Inc()
			return nil, err
		}
		e.metrics.ModelFits.WithLabelValues(trigger, "ok").Inc()

		e.publish(fitCtx, queue.ModelTrainedEvent{
			Commodity: commodity,
			Key:       key,
			RowsUsed:  history.Len(),
			StoredAt:  storedAt,
			Trigger:   trigger,
		})
		return &fitResult{model: model, storedAt: storedAt}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, time.Time{}, res.Err
		}
		r := res.Val.(*fitResult)
		return r.model, r.storedAt, nil
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	}
}

// publish announces a model write. Failures are logged, never returned.
func (e *ForecastEngine) publish(ctx context.Context, evt queue.ModelTrainedEvent) {
	if e.events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.EventPublishTimeout)
	defer cancel()

	if err := queue.PublishModelTrained(pubCtx, e.events, evt); err != nil {
		e.metrics.ModelEvents.WithLabelValues("failed").Inc()
		e.logger.Warn("Failed to publish model event", "key", evt.Key, "error", err)
		return
	}
	e.metrics.ModelEvents.WithLabelValues("published").Inc()
}

// HandleModelEvent drops the decoded copy of a model rewritten elsewhere.
// It is the subscriber for queue.SubjectModelTrained.
func (e *ForecastEngine) HandleModelEvent(data []byte) error {
	evt, err := queue.DecodeModelTrained(data)
	if err != nil {
		e.logger.Warn("Dropping malformed model event", "error", err)
		return nil
	}
	e.metrics.ModelEvents.WithLabelValues("received").Inc()
	e.cache.Evict(evt.Key)
	e.logger.Debug("Model memo evicted", "key", evt.Key, "trigger", evt.Trigger, "event_id", evt.ID)
	return nil
}

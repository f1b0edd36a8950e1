package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/queue"
	"github.com/pricecast/pricecast/internal/utils"
)

// TrainingService force-fits and stores models, bypassing freshness
type TrainingService struct {
	engine      *ForecastEngine
	limiter     *rate.Limiter
	concurrency int
	logger      *logging.Logger
}

// NewTrainingService creates a TrainingService. A non-positive rate
// disables limiting.
func NewTrainingService(engine *ForecastEngine, cfg config.TrainingConfig, logger *logging.Logger) *TrainingService {
	if logger == nil {
		logger = logging.NewNop()
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &TrainingService{
		engine:      engine,
		limiter:     rate.NewLimiter(limit, burst),
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *TrainingService) allow() error {
	if !s.limiter.Allow() {
		return NewServiceError(CodeRateLimited, "Too many training requests, try again later")
	}
	return nil
}

// Train fits the substring-matched commodity on its last two years of
// daily means, without outlier removal
func (s *TrainingService) Train(ctx context.Context, commodity string) (*models.TrainResponse, error) {
	if err := s.allow(); err != nil {
		return nil, err
	}

	ds, err := s.engine.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.engine.aggregator.Aggregate(ds.Records, commodity, utils.TrainHistoryWindow)
	if err != nil {
		return nil, fromDataError(err)
	}

	key := s.engine.cache.Key(commodity)
	if _, _, err := s.engine.fitAndStore(ctx, commodity, key, history, queue.TriggerTrain); err != nil {
		s.engine.metrics.Training.WithLabelValues(models.TrainStatusFailed).Inc()
		return nil, err
	}
	s.engine.metrics.Training.WithLabelValues(models.TrainStatusTrained).Inc()

	s.logger.Info("Model trained", "commodity", commodity, "key", key, "rows_used", history.Len())
	return &models.TrainResponse{
		Status:    models.TrainStatusTrained,
		Commodity: commodity,
		ModelPath: s.engine.cache.Location(key),
		RowsUsed:  history.Len(),
	}, nil
}

// TrainAll trains every distinct commodity, matched exactly, in sorted
// order. Per-commodity failures are reported in the summary.
func (s *TrainingService) TrainAll(ctx context.Context) (*models.TrainAllResponse, error) {
	if err := s.allow(); err != nil {
		return nil, err
	}

	ds, err := s.engine.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	byCommodity := make(map[string][]prices.PriceRecord)
	for _, r := range ds.Records {
		byCommodity[r.Commodity] = append(byCommodity[r.Commodity], r)
	}
	commodities := make([]string, 0, len(byCommodity))
	for c := range byCommodity {
		commodities = append(commodities, c)
	}
	sort.Strings(commodities)

	summary := make([]models.TrainSummary, len(commodities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, commodity := range commodities {
		g.Go(func() error {
			summary[i] = s.trainOne(gctx, commodity, byCommodity[commodity])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trained := 0
	for _, item := range summary {
		s.engine.metrics.Training.WithLabelValues(item.Status).Inc()
		if item.Status == models.TrainStatusTrained {
			trained++
		}
	}
	s.logger.Info("Training run finished", "commodities", len(commodities), "trained", trained)

	return &models.TrainAllResponse{
		Summary:  summary,
		ModelDir: s.engine.cache.Root(),
	}, nil
}

func (s *TrainingService) trainOne(ctx context.Context, commodity string, records []prices.PriceRecord) models.TrainSummary {
	history := prices.DailyMean(records).Tail(utils.TrainHistoryWindow)
	if history.Len() < utils.MinDailyPoints {
		return models.TrainSummary{
			Commodity: commodity,
			Status:    models.TrainStatusSkipped,
			Reason:    models.TrainReasonNotEnoughData,
		}
	}

	key := s.engine.cache.Key(commodity)
	if _, _, err := s.engine.fitAndStore(ctx, commodity, key, history, queue.TriggerTrainAll); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Warn("Training cancelled", "commodity", commodity)
		} else {
			s.logger.Warn("Training failed", "commodity", commodity, "error", err)
		}
		return models.TrainSummary{
			Commodity: commodity,
			Status:    models.TrainStatusFailed,
			Error:     err.Error(),
		}
	}
	return models.TrainSummary{
		Commodity: commodity,
		Status:    models.TrainStatusTrained,
		RowsUsed:  history.Len(),
	}
}

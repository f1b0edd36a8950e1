package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/modelstore"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/services"
	"github.com/pricecast/pricecast/internal/workers"
)

var (
	testStart   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dataVersion = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

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

// dailyRecords builds n consecutive daily records
func dailyRecords(commodity, typ string, n int, base, step float64) []prices.PriceRecord {
	out := make([]prices.PriceRecord, n)
	for i := range out {
		out[i] = prices.PriceRecord{
			Commodity: commodity,
			Date:      testStart.AddDate(0, 0, i),
			Amount:    base + step*float64(i),
			Type:      typ,
		}
	}
	return out
}

func fixtureSource() *staticSource {
	var records []prices.PriceRecord
	records = append(records, dailyRecords("Rice, Well Milled", "Retail", 120, 40, 0.05)...)
	records = append(records, dailyRecords("Corn", "Wholesale", 60, 20, 0.02)...)
	records = append(records, prices.PriceRecord{Commodity: "Sugar", Date: testStart, Amount: 55})
	return &staticSource{ds: &prices.Dataset{Records: records, Version: dataVersion}}
}

// newTestApp mounts every handler on a bare fiber app
func newTestApp(t *testing.T, source prices.Source, full bool) *fiber.App {
	t.Helper()
	logger := logging.NewNop()
	engine := services.NewForecastEngine(source, modelstore.NewModelCache(modelstore.NewMemoryStore(), logger),
		services.EngineOptions{
			Noise:  forecast.NewNoise(7),
			Pool:   workers.NewPool(2, 0),
			Logger: logger,
		})
	training := services.NewTrainingService(engine, config.TrainingConfig{Concurrency: 2}, logger)
	h := New(logger, engine, training, services.NewCatalogService(source), full)

	app := fiber.New()
	app.Get("/", h.Root)
	app.Get("/health", h.Health)
	app.Get("/commodities", h.Commodities)
	app.Get("/forecast/:commodity/:days", h.Forecast)
	app.Get("/extended-forecast/:commodity/:months", h.ExtendedForecast)
	app.Get("/forecast-weekly/:commodity/:months", h.WeeklyForecast)
	app.Post("/train/:commodity", h.Train)
	app.Post("/train-all", h.TrainAll)
	app.Get("/history", h.History)
	app.Get("/history/recent", h.RecentHistory)
	app.Get("/commodity/:commodity", h.CommodityDetails)
	app.Get("/commodity/:commodity/all-data", h.CommodityData)
	app.Get("/type/:type/all-data", h.TypeData)
	app.Get("/data/date-range/:start/:end", h.DateRange)
	app.Get("/data-stats", h.DataStats)
	app.Get("/forecast-summary/:commodity", h.ForecastSummary)
	app.Use(h.NotFound)
	return app
}

// do performs a request and decodes the JSON body into out
func do(t *testing.T, app *fiber.App, method, target string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), 10000)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

func failingSource() *staticSource {
	return &staticSource{err: errors.New("connection refused")}
}

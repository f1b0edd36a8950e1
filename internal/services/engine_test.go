package services

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/internal/analytics"
	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/modelstore"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/queue"
	"github.com/pricecast/pricecast/internal/workers"
)

func assertPoints(t *testing.T, points []forecast.ForecastPoint, days int) {
	t.Helper()
	require.Len(t, points, days)
	for i, p := range points {
		assert.LessOrEqual(t, p.YhatLower, p.YhatUpper, "point %d", i)
	}
}

func TestForecast_FitsAndCachesPrimaryModel(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))
	ctx := context.Background()

	resp, err := engine.Forecast(ctx, "Rice", 7)
	require.NoError(t, err)

	assert.Equal(t, "Rice", resp.Commodity)
	assert.Equal(t, forecast.MethodProphet, resp.Method)
	assert.Empty(t, resp.ProphetError)
	assertPoints(t, resp.Forecast, 7)
	assert.Equal(t, testStart.AddDate(0, 0, 60), resp.Forecast[0].Date)
	assert.InDelta(t, 160, resp.Forecast[0].Yhat, 0.01)
	assert.Equal(t, 1, engine.store.Len())

	first, err := engine.store.StoredAt(ctx, "rice")
	require.NoError(t, err)

	// fresh model is reused, not rewritten
	again, err := engine.Forecast(ctx, "Rice", 7)
	require.NoError(t, err)
	assert.Equal(t, resp.Forecast, again.Forecast)

	second, err := engine.store.StoredAt(ctx, "rice")
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestForecast_NonASCIINamesKeepSeparateModels(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(
		linearRecords("Ubé", 60, 100, 0.1),
		linearRecords("Ubí", 60, 500, 0.1),
		linearRecords("茶", 60, 50, 0.1),
		linearRecords("米", 60, 900, 0.1),
	))
	ctx := context.Background()

	high, err := engine.Forecast(ctx, "Ubí", 3)
	require.NoError(t, err)
	low, err := engine.Forecast(ctx, "Ubé", 3)
	require.NoError(t, err)
	tea, err := engine.Forecast(ctx, "茶", 3)
	require.NoError(t, err)
	rice, err := engine.Forecast(ctx, "米", 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.MethodProphet, low.Method)
	assert.InDelta(t, 506, high.Forecast[0].Yhat, 1)
	assert.InDelta(t, 106, low.Forecast[0].Yhat, 1)
	assert.InDelta(t, 56, tea.Forecast[0].Yhat, 1)
	assert.InDelta(t, 906, rice.Forecast[0].Yhat, 1)
	assert.Equal(t, 4, engine.store.Len())
	assert.NotEqual(t, engine.cache.Key("Ubé"), engine.cache.Key("Ubí"))
}

func TestForecast_CorruptModelFallsBackToPattern(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))
	engine.corrupt("Rice", time.Now())

	resp, err := engine.Forecast(context.Background(), "Rice", 14)
	require.NoError(t, err)

	assert.Equal(t, forecast.MethodPattern, resp.Method)
	assert.NotEmpty(t, resp.ProphetError)
	assertPoints(t, resp.Forecast, 14)
}

func TestForecast_FewPointsFallsBackToNaive(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 5, 100, 1)))
	engine.corrupt("Rice", time.Now())

	resp, err := engine.Forecast(context.Background(), "Rice", 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.MethodNaive, resp.Method)
	assert.NotEmpty(t, resp.ProphetError)
	assertPoints(t, resp.Forecast, 3)
}

func TestForecast_StaleModelIsRefitted(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 30, 100, 1)))
	engine.corrupt("Rice", dataVersion.Add(-time.Hour))

	resp, err := engine.Forecast(context.Background(), "Rice", 5)
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodProphet, resp.Method)

	storedAt, err := engine.store.StoredAt(context.Background(), "rice")
	require.NoError(t, err)
	assert.False(t, storedAt.Before(dataVersion))
}

func TestForecast_OutdatedModelIsRefitted(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 30, 100, 1)))
	ctx := context.Background()

	_, err := engine.Forecast(ctx, "Rice", 5)
	require.NoError(t, err)

	// same model, written by an older format
	blob, _, err := engine.store.Get(ctx, "rice")
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(blob[4:], 1)
	engine.store.PutAt("rice", blob, dataVersion)
	_, err = engine.cache.Load(ctx, "rice")
	require.ErrorIs(t, err, modelstore.ErrOutdatedModel)

	resp, err := engine.Forecast(ctx, "Rice", 5)
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodProphet, resp.Method)
	assert.Empty(t, resp.ProphetError)

	storedAt, err := engine.store.StoredAt(ctx, "rice")
	require.NoError(t, err)
	assert.True(t, storedAt.After(dataVersion))
	_, err = engine.cache.Load(ctx, "rice")
	assert.NoError(t, err)
}

func TestFitAndStore_OutlivesCancelledCaller(t *testing.T) {
	engine := newTestEngine(t, newStaticSource())

	history := make(analytics.TimeSeriesData, 40)
	for i := range history {
		history[i] = analytics.TimeSeriesPoint{Time: testStart.AddDate(0, 0, i), Value: 10 + float64(i)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model, _, err := engine.fitAndStore(ctx, "Rice", "rice", history, queue.TriggerOnDemand)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	} else {
		assert.NotNil(t, model)
	}

	// the shared fit is not bound to the caller that started it
	assert.Eventually(t, func() bool { return engine.store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	again, _, err := engine.fitAndStore(context.Background(), "Rice", "rice", history, queue.TriggerOnDemand)
	require.NoError(t, err)
	assert.Equal(t, 40, again.RowsUsed)
}

func TestForecast_HorizonBounds(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 30, 100, 1)))
	ctx := context.Background()

	resp, err := engine.Forecast(ctx, "Rice", 365)
	require.NoError(t, err)
	assert.Len(t, resp.Forecast, 365)

	_, err = engine.Forecast(ctx, "Rice", 366)
	require.Error(t, err)
	assert.Equal(t, "Maximum forecast period is 365 days. Use /extended-forecast for longer periods.", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = engine.Forecast(ctx, "Rice", 0)
	require.Error(t, err)
	assert.Equal(t, "Days must be a positive integer", err.Error())
}

func TestForecast_SubstringMatchIgnoresCase(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(
		linearRecords("Rice, Well Milled", 20, 40, 0.5),
		linearRecords("Corn", 20, 20, 0.1),
	))

	resp, err := engine.Forecast(context.Background(), "rice", 5)
	require.NoError(t, err)
	assert.Equal(t, "rice", resp.Commodity)
	assertPoints(t, resp.Forecast, 5)
	assert.InDelta(t, 50, resp.Forecast[0].Yhat, 0.01)
}

func TestForecast_DataErrors(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(
		linearRecords("Rice", 20, 40, 0.5),
		linearRecords("Salt", 1, 10, 0),
	))
	ctx := context.Background()

	_, err := engine.Forecast(ctx, "gold", 5)
	require.Error(t, err)
	assert.Equal(t, "No data found for 'gold'", err.Error())
	assert.ErrorIs(t, err, prices.ErrNotFound)

	_, err = engine.Forecast(ctx, "salt", 5)
	require.Error(t, err)
	assert.Equal(t, "Not enough data for 'salt' to make forecasts (need at least 2 data points)", err.Error())
	assert.ErrorIs(t, err, prices.ErrInsufficientData)
}

func TestForecast_SourceErrorIsNotAServiceError(t *testing.T) {
	engine := newTestEngine(t, &staticSource{err: errors.New("disk unavailable")})

	_, err := engine.Forecast(context.Background(), "Rice", 5)
	require.Error(t, err)

	var se *ServiceError
	assert.False(t, errors.As(err, &se))
	assert.Equal(t, "Failed to generate forecast: disk unavailable", UserMessage(err, "Failed to generate forecast"))
}

func TestForecast_PoolTimeoutFallsThrough(t *testing.T) {
	store := modelstore.NewMemoryStore()
	engine := NewForecastEngine(
		newStaticSource(linearRecords("Rice", 30, 100, 1)),
		modelstore.NewModelCache(store, nil),
		EngineOptions{Noise: forecast.NewNoise(7), Pool: workers.NewPool(1, time.Nanosecond)},
	)

	resp, err := engine.Forecast(context.Background(), "Rice", 5)
	require.NoError(t, err)
	assertPoints(t, resp.Forecast, 5)
	if resp.Method != forecast.MethodProphet {
		assert.NotEmpty(t, resp.ProphetError)
	}
}

func TestExtendedForecast(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))

	resp, err := engine.ExtendedForecast(context.Background(), "Rice", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ForecastPeriodMonths)
	assert.Equal(t, 60, resp.ForecastPeriodDays)
	assert.Equal(t, forecast.MethodProphet, resp.Method)
	assert.Equal(t, 60, resp.DataPointsUsed)
	assertPoints(t, resp.Forecast, 60)
	require.Len(t, resp.MonthlySummary, 2)
	assert.Equal(t, 30, resp.MonthlySummary[0].ForecastCount)
	assert.NotEmpty(t, resp.Note)
}

func TestExtendedForecast_Fallback(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))
	engine.corrupt("Rice", time.Now())

	resp, err := engine.ExtendedForecast(context.Background(), "Rice", 1)
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodExtendedLinear, resp.Method)
	assert.NotEmpty(t, resp.ProphetError)
	assertPoints(t, resp.Forecast, 30)
}

func TestExtendedForecast_Validation(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 20, 100, 1)))
	ctx := context.Background()

	_, err := engine.ExtendedForecast(ctx, "Rice", 0)
	require.Error(t, err)
	assert.Equal(t, "Months must be a positive integer", err.Error())

	_, err = engine.ExtendedForecast(ctx, "Rice", 25)
	require.Error(t, err)
	assert.Equal(t, "Maximum extended forecast period is 24 months (2 years)", err.Error())

	_, err = engine.ExtendedForecast(ctx, "Rice", 1)
	require.Error(t, err)
	assert.Equal(t, "Not enough valid historical data for 'Rice' extended forecast (need at least 30 days)", err.Error())
	assert.ErrorIs(t, err, prices.ErrInsufficientData)
}

func TestExtendedForecast_OutlierRemoved(t *testing.T) {
	records := linearRecords("Rice", 60, 100, 1)
	records[30].Amount = 5000
	engine := newTestEngine(t, newStaticSource(records))

	resp, err := engine.ExtendedForecast(context.Background(), "Rice", 1)
	require.NoError(t, err)
	assert.Equal(t, 59, resp.DataPointsUsed)
}

func TestWeeklyForecast(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))

	resp, err := engine.WeeklyForecast(context.Background(), "Rice", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ForecastPeriodMonths)
	assert.Equal(t, 5, resp.TotalWeeks)
	require.Len(t, resp.WeeklyForecasts, 5)
	assert.Equal(t, 7, resp.WeeklyForecasts[0].DaysInWeek)
	assert.Equal(t, 2, resp.WeeklyForecasts[4].DaysInWeek)
	assert.Equal(t, "Week 5 (Month 2)", resp.WeeklyForecasts[4].WeekLabel)
	require.NotNil(t, resp.OverallStatistics)
	assert.Equal(t, "Increasing", resp.OverallStatistics.OverallTrend)
	assert.Equal(t, forecast.MethodProphet, resp.Method)
}

func TestWeeklyForecast_Validation(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 20, 100, 1)))
	ctx := context.Background()

	_, err := engine.WeeklyForecast(ctx, "Rice", 0)
	require.Error(t, err)
	assert.Equal(t, "Months must be a positive integer", err.Error())

	_, err = engine.WeeklyForecast(ctx, "Rice", 13)
	require.Error(t, err)
	assert.Equal(t, "Maximum weekly forecast period is 12 months", err.Error())
}

func TestForecastSummary(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))

	resp, err := engine.ForecastSummary(context.Background(), "Rice")
	require.NoError(t, err)

	assert.Equal(t, "Up", resp.Summary.ShortTerm)
	assert.Equal(t, "Up", resp.Summary.MediumTerm)
	assert.Equal(t, "Up", resp.Summary.LongTerm)

	short, ok := resp.ShortTerm.(*models.ForecastResponse)
	require.True(t, ok)
	assert.Len(t, short.Forecast, 30)
	long, ok := resp.LongTerm.(*models.ExtendedForecastResponse)
	require.True(t, ok)
	assert.Len(t, long.Forecast, 180)
}

func TestForecastSummary_ErrorsInPlace(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 60, 100, 1)))

	resp, err := engine.ForecastSummary(context.Background(), "gold")
	require.NoError(t, err)

	assert.Equal(t, "Down", resp.Summary.ShortTerm)
	assert.Equal(t, "Down", resp.Summary.LongTerm)

	short, ok := resp.ShortTerm.(models.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "No data found for 'gold'", short.Error)
}

func TestTrend(t *testing.T) {
	day := testStart
	up := []forecast.ForecastPoint{{Date: day, Yhat: 1}, {Date: day.AddDate(0, 0, 1), Yhat: 2}}
	flat := []forecast.ForecastPoint{{Date: day, Yhat: 2}, {Date: day.AddDate(0, 0, 1), Yhat: 2}}

	assert.Equal(t, "Up", Trend(up))
	assert.Equal(t, "Down", Trend(flat))
	assert.Equal(t, "Down", Trend(up[:1]))
	assert.Equal(t, "Down", Trend(nil))
}

func TestForecast_PublishesModelEvent(t *testing.T) {
	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"})
	require.NoError(t, err)
	defer q.Close()

	events := make(chan queue.ModelTrainedEvent, 1)
	require.NoError(t, q.Subscribe(queue.SubjectModelTrained, func(data []byte) error {
		evt, err := queue.DecodeModelTrained(data)
		if err == nil {
			events <- evt
		}
		return err
	}))

	engine := NewForecastEngine(
		newStaticSource(linearRecords("Rice", 30, 100, 1)),
		modelstore.NewModelCache(modelstore.NewMemoryStore(), nil),
		EngineOptions{Noise: forecast.NewNoise(1), Events: q},
	)
	_, err = engine.Forecast(context.Background(), "Rice", 3)
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, "rice", evt.Key)
		assert.Equal(t, "Rice", evt.Commodity)
		assert.Equal(t, 30, evt.RowsUsed)
		assert.Equal(t, queue.TriggerOnDemand, evt.Trigger)
		assert.NotEmpty(t, evt.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no model event received")
	}
}

func TestHandleModelEvent_EvictsMemo(t *testing.T) {
	engine := newTestEngine(t, newStaticSource(linearRecords("Rice", 30, 100, 1)))
	_, err := engine.Forecast(context.Background(), "Rice", 3)
	require.NoError(t, err)
	require.True(t, engine.cache.Memoized("rice"))

	assert.NoError(t, engine.HandleModelEvent([]byte(`{"id":"1","key":"rice","trigger":"train"}`)))
	assert.False(t, engine.cache.Memoized("rice"))

	// malformed events are dropped, not redelivered
	assert.NoError(t, engine.HandleModelEvent([]byte(`not json`)))
}

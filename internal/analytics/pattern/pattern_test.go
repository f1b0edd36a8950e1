package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/internal/analytics"
)

func dailySeries(start time.Time, step int, values ...float64) analytics.TimeSeriesData {
	out := make(analytics.TimeSeriesData, len(values))
	for i, v := range values {
		out[i] = analytics.TimeSeriesPoint{Time: start.AddDate(0, 0, i*step), Value: v}
	}
	return out
}

func TestAnalyze_TooShort(t *testing.T) {
	s := dailySeries(time.Now(), 1, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	assert.Nil(t, Analyze(s))
}

func TestAnalyze_IncreasingSeries(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	s := Analyze(dailySeries(start, 1, values...))
	require.NotNil(t, s)

	assert.Equal(t, 20, s.DataPoints)
	assert.InDelta(t, 109.5, s.AvgPrice, 1e-9)
	assert.Equal(t, 100.0, s.MinPrice)
	assert.Equal(t, 119.0, s.MaxPrice)
	assert.InDelta(t, 19.0, s.TrendPercent, 1e-9)
	assert.Equal(t, TrendIncreasing, s.TrendDirection)
	// constant day-over-day change
	assert.InDelta(t, 0.0, s.Volatility, 1e-9)
	assert.Equal(t, []float64{110, 111, 112, 113, 114, 115, 116, 117, 118, 119}, s.RecentPrices)
}

func TestAnalyze_RecentWindowByDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// 12 monthly points: only the last 180 days (7 points) are recent
	values := []float64{50, 50, 50, 50, 50, 100, 100, 100, 100, 100, 100, 100}
	s := Analyze(dailySeries(start, 30, values...))
	require.NotNil(t, s)

	assert.Equal(t, 7, s.DataPoints)
	assert.Equal(t, 100.0, s.MinPrice)
	assert.Equal(t, TrendStable, s.TrendDirection)
}

func TestAnalyze_SparseRecentFallsBackToRows(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	// yearly points: the 180-day window holds only the last one
	values := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	s := Analyze(dailySeries(start, 365, values...))
	require.NotNil(t, s)

	assert.Equal(t, 12, s.DataPoints)
	assert.Equal(t, 10.0, s.MinPrice)
}

func TestAnalyze_TrendComparesFirstAndLast(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// falls for most of the window but ends above where it started
	s := Analyze(dailySeries(start, 1, 100, 200, 180, 160, 140, 120, 100, 90, 80, 105))
	require.NotNil(t, s)

	assert.InDelta(t, 5.0, s.TrendPercent, 1e-9)
	assert.Equal(t, TrendIncreasing, s.TrendDirection)
}

func TestAnalyze_DecreasingWithNonPositiveStart(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Analyze(dailySeries(start, 1, 0, 5, 4, 3, 2, 1, 1, 1, 1, 1))
	require.NotNil(t, s)

	assert.Equal(t, 0.0, s.TrendPercent)
	assert.Equal(t, TrendStable, s.TrendDirection)
	assert.Greater(t, s.Volatility, 0.0)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, TrendIncreasing, Direction(1.5))
	assert.Equal(t, TrendDecreasing, Direction(-1.5))
	assert.Equal(t, TrendStable, Direction(1))
	assert.Equal(t, TrendStable, Direction(-1))
}

package forecast

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pricecast/pricecast/internal/analytics"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func seededNoise() Noise {
	return rand.New(rand.NewPCG(1, 2))
}

func linearSeries(n int, base, step float64) analytics.TimeSeriesData {
	out := make(analytics.TimeSeriesData, n)
	for i := range out {
		out[i] = DataPoint{Time: testStart.AddDate(0, 0, i), Value: base + step*float64(i)}
	}
	return out
}

func seriesOf(values ...float64) analytics.TimeSeriesData {
	out := make(analytics.TimeSeriesData, len(values))
	for i, v := range values {
		out[i] = DataPoint{Time: testStart.AddDate(0, 0, i), Value: v}
	}
	return out
}

// assertWellFormed checks length, consecutive dates and ordered bounds
func assertWellFormed(t *testing.T, history analytics.TimeSeriesData, points []ForecastPoint, days int) {
	t.Helper()
	if !assert.Len(t, points, days) {
		return
	}
	last := history.Last().Time
	for i, p := range points {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date, "point %d", i)
		assert.LessOrEqual(t, p.YhatLower, p.Yhat, "point %d", i)
		assert.LessOrEqual(t, p.Yhat, p.YhatUpper, "point %d", i)
	}
}

package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/internal/analytics"
)

func makeSeries(values []float64) analytics.TimeSeriesData {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(analytics.TimeSeriesData, len(values))
	for i, v := range values {
		out[i] = analytics.TimeSeriesPoint{Time: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func TestOutlierFilter_RemovesSpike(t *testing.T) {
	values := make([]float64, 0, 101)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			values = append(values, 99)
		} else {
			values = append(values, 101)
		}
	}
	values = append(values[:50], append([]float64{1000}, values[50:]...)...)

	kept, removed := NewOutlierFilter(3).Filter(makeSeries(values))

	assert.Equal(t, 1, removed)
	require.Len(t, kept, 100)
	for _, p := range kept {
		assert.NotEqual(t, 1000.0, p.Value)
	}
	// order is preserved
	for i := 1; i < len(kept); i++ {
		assert.True(t, kept[i].Time.After(kept[i-1].Time))
	}
}

func TestOutlierFilter_SinglePass(t *testing.T) {
	// after the 1000 spike goes, 300 would be an outlier of the remainder,
	// but the gate is not recomputed
	values := []float64{100, 101, 99, 100, 102, 98, 100, 101, 99, 300, 100, 1000}
	kept, removed := NewOutlierFilter(3).Filter(makeSeries(values))

	assert.Equal(t, 1, removed)
	assert.Contains(t, kept.Values(), 300.0)
}

func TestOutlierFilter_FlatSeriesKeepsEverything(t *testing.T) {
	series := makeSeries([]float64{5, 5, 5, 5})
	kept, removed := NewOutlierFilter(3).Filter(series)

	assert.Equal(t, 0, removed)
	assert.Len(t, kept, 4)
}

func TestOutlierFilter_ShortSeries(t *testing.T) {
	kept, removed := NewOutlierFilter(3).Filter(makeSeries([]float64{42}))
	assert.Equal(t, 0, removed)
	assert.Len(t, kept, 1)
}

func TestZScoreDetector_Types(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 100, -80}
	results, expected := (&ZScoreDetector{}).Detect(makeSeries(values), DetectorConfig{Threshold: 2, MinDataPoints: 2})

	require.Len(t, results, 2)
	assert.Equal(t, AnomalyTypeSpike, results[0].Type)
	assert.Equal(t, AnomalyTypeDrop, results[1].Type)
	assert.True(t, expected.Contains(10))
	assert.False(t, expected.Contains(100))
}

func TestCalculateMeanStdDev(t *testing.T) {
	mean, std := CalculateMeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.138, std, 1e-3)

	mean, std = CalculateMeanStdDev(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
	assert.Equal(t, 0.0, CalculateZScore(3, 1, 0))
}

package anomaly

import (
	"math"

	"github.com/pricecast/pricecast/internal/analytics"
)

// ZScoreDetector flags points farther than Threshold sample standard
// deviations from the mean. Mean and deviation are computed once over the
// whole input.
type ZScoreDetector struct{}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds anomalies using Z-Score method. A flat or too short
// series yields no anomalies and an unbounded range.
func (z *ZScoreDetector) Detect(data []DataPoint, config DetectorConfig) ([]AnomalyResult, Range) {
	unbounded := Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if len(data) < config.MinDataPoints || len(data) < 2 {
		return nil, unbounded
	}

	mean, stdDev := CalculateMeanStdDev(analytics.TimeSeriesData(data).Values())
	if stdDev == 0 || math.IsNaN(stdDev) {
		return nil, unbounded
	}

	expected := Range{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	var results []AnomalyResult
	for i, dp := range data {
		if expected.Contains(dp.Value) {
			continue
		}
		zScore := CalculateZScore(dp.Value, mean, stdDev)
		anomalyType := AnomalyTypeDrop
		if zScore > 0 {
			anomalyType = AnomalyTypeSpike
		}
		results = append(results, AnomalyResult{
			Index: i,
			Score: math.Abs(zScore),
			Type:  anomalyType,
		})
	}

	return results, expected
}

// CalculateZScore calculates Z-Score for a single value given mean and stdDev
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// CalculateMeanStdDev returns the mean and sample standard deviation
func CalculateMeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	ts := make(analytics.TimeSeriesData, len(values))
	for i, v := range values {
		ts[i].Value = v
	}
	return ts.Mean(), analytics.SampleStdDev(values)
}

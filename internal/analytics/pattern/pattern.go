// Package pattern summarizes the recent behaviour of a daily price series
// for the heuristic forecasters.
package pattern

import (
	"github.com/pricecast/pricecast/internal/analytics"
	"github.com/pricecast/pricecast/internal/utils"
)

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Summary describes the recent sub-window of a series. It is derived per
// request and never persisted.
type Summary struct {
	AvgPrice       float64   `json:"avg_price"`
	PriceStd       float64   `json:"price_std"`
	MinPrice       float64   `json:"min_price"`
	MaxPrice       float64   `json:"max_price"`
	TrendPercent   float64   `json:"trend_percent"`
	TrendDirection string    `json:"trend_direction"`
	Volatility     float64   `json:"volatility"`
	DataPoints     int       `json:"data_points"`
	RecentPrices   []float64 `json:"recent_prices"`
}

// Analyze returns nil when the series is too short to describe.
//
// The sub-window is the last 180 days by date, or the last 30 rows when
// that leaves fewer than 5 points.
func Analyze(series analytics.TimeSeriesData) *Summary {
	if series.Len() < utils.PatternMinPoints {
		return nil
	}

	cutoff := series.Last().Time.AddDate(0, 0, -utils.PatternRecentDays)
	recent := series.Since(cutoff)
	if recent.Len() < utils.PatternMinRecentPoints {
		recent = series.Tail(utils.PatternFallbackRows)
	}

	values := recent.Values()
	minPrice, maxPrice := recent.MinMax()
	s := &Summary{
		AvgPrice:       recent.Mean(),
		PriceStd:       recent.StdDev(),
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		TrendDirection: TrendStable,
		DataPoints:     recent.Len(),
		RecentPrices:   append([]float64(nil), recent.Tail(utils.PatternRecentPrices).Values()...),
	}

	// endpoint change, not a fitted slope
	if len(values) >= 2 {
		first, last := values[0], values[len(values)-1]
		if first > 0 {
			s.TrendPercent = (last - first) / first * 100
		}
		s.TrendDirection = Direction(s.TrendPercent)
	}

	changes := analytics.Diff(values)
	if len(changes) >= 2 {
		s.Volatility = analytics.SampleStdDev(changes)
	} else {
		s.Volatility = s.PriceStd * 0.1
	}

	return s
}

// Direction classifies a percent change with a ±1% dead band
func Direction(trendPercent float64) string {
	switch {
	case trendPercent > 1:
		return TrendIncreasing
	case trendPercent < -1:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

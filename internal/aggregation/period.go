package aggregation

import (
	"errors"
	"fmt"

	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/utils"
)

// ErrEmptyInput is returned when there are no forecast points to bucket
var ErrEmptyInput = errors.New("no forecast points to aggregate")

// Trend labels of the weekly statistics
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
)

// Bucket is a contiguous slice of daily forecasts
type Bucket struct {
	Points []forecast.ForecastPoint
	// Average of yhat, minimum yhat_lower and maximum yhat_upper
	Stats *AggregatedField
}

// StartDate is the first date in the bucket, formatted
func (b Bucket) StartDate() string {
	return b.Points[0].Date.Format(utils.DateLayout)
}

// EndDate is the last date in the bucket, formatted
func (b Bucket) EndDate() string {
	return b.Points[len(b.Points)-1].Date.Format(utils.DateLayout)
}

// DateRange renders "start to end"
func (b Bucket) DateRange() string {
	return b.StartDate() + " to " + b.EndDate()
}

// Partition splits points into contiguous buckets of size; the last bucket
// may be short
func Partition(points []forecast.ForecastPoint, size int) ([]Bucket, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if size <= 0 {
		return nil, fmt.Errorf("bucket size must be positive, got %d", size)
	}

	buckets := make([]Bucket, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		stats := NewAggregatedField()
		for _, p := range points[start:end] {
			stats.AddValue(p.Yhat)
			stats.AddRange(p.YhatLower, p.YhatUpper)
		}
		buckets = append(buckets, Bucket{Points: points[start:end], Stats: stats})
	}
	return buckets, nil
}

// WeeklyForecast summarizes one 7-day bucket
type WeeklyForecast struct {
	WeekNumber      int                      `json:"week_number"`
	Month           int                      `json:"month"`
	WeekLabel       string                   `json:"week_label"`
	DateRange       string                   `json:"date_range"`
	StartDate       string                   `json:"start_date"`
	EndDate         string                   `json:"end_date"`
	AverageForecast float64                  `json:"average_forecast"`
	MinForecast     float64                  `json:"min_forecast"`
	MaxForecast     float64                  `json:"max_forecast"`
	DaysInWeek      int                      `json:"days_in_week"`
	DailyForecasts  []forecast.ForecastPoint `json:"daily_forecasts"`
}

// WeeklyStatistics compares the first and last weekly averages
type WeeklyStatistics struct {
	StartingPrice      float64 `json:"starting_price"`
	EndingPrice        float64 `json:"ending_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	OverallTrend       string  `json:"overall_trend"`
	AveragePrice       float64 `json:"average_price"`
	MinWeeklyAvg       float64 `json:"min_weekly_avg"`
	MaxWeeklyAvg       float64 `json:"max_weekly_avg"`
}

// MonthlySummary summarizes one 30-day bucket
type MonthlySummary struct {
	Month           string  `json:"month"`
	AverageForecast float64 `json:"average_forecast"`
	MinForecast     float64 `json:"min_forecast"`
	MaxForecast     float64 `json:"max_forecast"`
	ForecastCount   int     `json:"forecast_count"`
}

// Weekly buckets points by 7 days and computes the overall statistics
func Weekly(points []forecast.ForecastPoint) ([]WeeklyForecast, *WeeklyStatistics, error) {
	buckets, err := Partition(points, utils.WeekBucketSize)
	if err != nil {
		return nil, nil, err
	}

	weeks := make([]WeeklyForecast, len(buckets))
	averages := NewAggregatedField()
	for i, b := range buckets {
		number := i + 1
		month := i/utils.WeeksPerMonth + 1
		avg := utils.Round2(b.Stats.Avg())

		weeks[i] = WeeklyForecast{
			WeekNumber:      number,
			Month:           month,
			WeekLabel:       fmt.Sprintf("Week %d (Month %d)", number, month),
			DateRange:       b.DateRange(),
			StartDate:       b.StartDate(),
			EndDate:         b.EndDate(),
			AverageForecast: avg,
			MinForecast:     utils.Round2(b.Stats.Min),
			MaxForecast:     utils.Round2(b.Stats.Max),
			DaysInWeek:      len(b.Points),
			DailyForecasts:  b.Points,
		}
		averages.AddValue(avg)
		averages.AddRange(avg, avg)
	}

	first, last := weeks[0].AverageForecast, weeks[len(weeks)-1].AverageForecast
	change := last - first
	percent := 0.0
	if first > 0 {
		percent = change / first * 100
	}
	trend := TrendDecreasing
	if last > first {
		trend = TrendIncreasing
	}

	stats := &WeeklyStatistics{
		StartingPrice:      utils.Round2(first),
		EndingPrice:        utils.Round2(last),
		PriceChange:        utils.Round2(change),
		PriceChangePercent: utils.Round2(percent),
		OverallTrend:       trend,
		AveragePrice:       utils.Round2(averages.Avg()),
		MinWeeklyAvg:       utils.Round2(averages.Min),
		MaxWeeklyAvg:       utils.Round2(averages.Max),
	}
	return weeks, stats, nil
}

// Monthly buckets points by 30 days
func Monthly(points []forecast.ForecastPoint) ([]MonthlySummary, error) {
	buckets, err := Partition(points, utils.MonthBucketSize)
	if err != nil {
		return nil, err
	}

	months := make([]MonthlySummary, len(buckets))
	for i, b := range buckets {
		months[i] = MonthlySummary{
			Month:           b.DateRange(),
			AverageForecast: utils.Round2(b.Stats.Avg()),
			MinForecast:     utils.Round2(b.Stats.Min),
			MaxForecast:     utils.Round2(b.Stats.Max),
			ForecastCount:   len(b.Points),
		}
	}
	return months, nil
}

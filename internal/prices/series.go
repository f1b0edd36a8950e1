package prices

import (
	"sort"
	"strings"
	"time"

	"github.com/pricecast/pricecast/internal/analytics"
)

// MatchCommodity keeps records whose commodity contains filter,
// case-insensitively
func MatchCommodity(records []PriceRecord, filter string) []PriceRecord {
	needle := strings.ToLower(filter)
	var out []PriceRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Commodity), needle) {
			out = append(out, r)
		}
	}
	return out
}

// DailyMean averages same-date amounts and returns the dates in ascending order
func DailyMean(records []PriceRecord) analytics.TimeSeriesData {
	type acc struct {
		sum   float64
		count int
	}
	byDate := make(map[time.Time]*acc)
	for _, r := range records {
		a, ok := byDate[r.Date]
		if !ok {
			a = &acc{}
			byDate[r.Date] = a
		}
		a.sum += r.Amount
		a.count++
	}

	series := make(analytics.TimeSeriesData, 0, len(byDate))
	for date, a := range byDate {
		series = append(series, analytics.TimeSeriesPoint{Time: date, Value: a.sum / float64(a.count)})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})
	return series
}

// SeriesAggregator builds the daily series for a commodity filter
type SeriesAggregator struct{}

// NewSeriesAggregator creates a SeriesAggregator
func NewSeriesAggregator() *SeriesAggregator {
	return &SeriesAggregator{}
}

// Aggregate filters, averages per date and keeps the last window points.
// A window <= 0 keeps everything.
func (a *SeriesAggregator) Aggregate(records []PriceRecord, commodity string, window int) (analytics.TimeSeriesData, error) {
	matched := MatchCommodity(records, commodity)
	if len(matched) == 0 {
		return nil, NewDataError(ErrNotFound, "No data found for '%s'", commodity)
	}

	series := DailyMean(matched)
	if series.Len() < 2 {
		return nil, NewDataError(ErrInsufficientData,
			"Not enough data for '%s' to make forecasts (need at least 2 data points)", commodity)
	}

	if window > 0 {
		series = series.Tail(window)
	}
	return series, nil
}

package forecast

import (
	"fmt"
	"math"

	"github.com/pricecast/pricecast/internal/analytics"
	"github.com/pricecast/pricecast/internal/analytics/pattern"
	"github.com/pricecast/pricecast/internal/utils"
)

// PatternForecaster projects the recent average along the recent trend
// with noise scaled by day-over-day volatility, clamped to the historical
// range widened by 20%.
type PatternForecaster struct {
	noise Noise
}

// NewPatternForecaster creates a pattern-based forecaster
func NewPatternForecaster(noise Noise) *PatternForecaster {
	return &PatternForecaster{noise: noise}
}

// Name returns the method name
func (f *PatternForecaster) Name() string {
	return MethodPattern
}

// Forecast returns ErrNoForecast when the history has no pattern summary
func (f *PatternForecaster) Forecast(history analytics.TimeSeriesData, days int) ([]ForecastPoint, error) {
	if history.Len() < 2 {
		return nil, ErrNoForecast
	}
	summary := pattern.Analyze(history)
	if summary == nil {
		return nil, fmt.Errorf("%w: pattern analysis needs at least %d points", ErrNoForecast, utils.PatternMinPoints)
	}
	return f.project(history.Last(), summary, days), nil
}

func (f *PatternForecaster) project(last DataPoint, s *pattern.Summary, days int) []ForecastPoint {
	trendAdjustment := s.TrendPercent / 100 * s.AvgPrice
	minBound := math.Max(s.MinPrice*0.8, 1.0)
	// sub-unit prices would otherwise invert the bounds
	maxBound := math.Max(s.MaxPrice*1.2, minBound)

	points := make([]ForecastPoint, days)
	for i := 1; i <= days; i++ {
		horizon := float64(i) / 30
		predicted := s.AvgPrice + trendAdjustment*horizon + normal(f.noise, s.Volatility*0.5)
		predicted = utils.ClampFloat(predicted, minBound, maxBound)

		// uncertainty grows over time
		confidence := s.Volatility * (1 + horizon)

		points[i-1] = ForecastPoint{
			Date:      futureDate(last.Time, i),
			Yhat:      utils.Round2(predicted),
			YhatLower: utils.Round2(math.Max(minBound, predicted-1.5*confidence)),
			YhatUpper: utils.Round2(math.Min(maxBound, predicted+1.5*confidence)),
		}
	}
	return points
}

// NaiveForecaster stays near the last known price with a fixed-width band
type NaiveForecaster struct {
	noise Noise
}

// NewNaiveForecaster creates the persistence forecaster
func NewNaiveForecaster(noise Noise) *NaiveForecaster {
	return &NaiveForecaster{noise: noise}
}

// Name returns the method name
func (f *NaiveForecaster) Name() string {
	return MethodNaive
}

// Forecast needs at least two points
func (f *NaiveForecaster) Forecast(history analytics.TimeSeriesData, days int) ([]ForecastPoint, error) {
	if history.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, have %d", ErrNoForecast, history.Len())
	}

	last := history.Last()
	recent := history.Tail(utils.NaiveVolatilityRows)
	volatility := last.Value * 0.05
	if recent.Len() > 1 {
		volatility = recent.StdDev()
	}

	points := make([]ForecastPoint, days)
	for i := 1; i <= days; i++ {
		predicted := last.Value + normal(f.noise, volatility*0.1)
		points[i-1] = ForecastPoint{
			Date:      futureDate(last.Time, i),
			Yhat:      utils.Round2(math.Max(0, predicted)),
			YhatLower: utils.Round2(math.Max(0, predicted-volatility)),
			YhatUpper: utils.Round2(math.Max(0, predicted+volatility)),
		}
	}
	return points, nil
}

// ExtendedLinearForecaster extends a least-squares trend from the last
// price, adds a weak annual sinusoid for horizons beyond 30 days and
// widens its 95% band with the horizon (at most doubled).
type ExtendedLinearForecaster struct{}

// NewExtendedLinearForecaster creates the long-horizon fallback
func NewExtendedLinearForecaster() *ExtendedLinearForecaster {
	return &ExtendedLinearForecaster{}
}

// Name returns the method name
func (f *ExtendedLinearForecaster) Name() string {
	return MethodExtendedLinear
}

// Forecast needs at least two points
func (f *ExtendedLinearForecaster) Forecast(history analytics.TimeSeriesData, days int) ([]ForecastPoint, error) {
	if history.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, have %d", ErrNoForecast, history.Len())
	}

	values := history.Values()
	_, slope := analytics.LinearTrend(values)
	lastValue := values[len(values)-1]
	stdDev := analytics.PopStdDev(history.Tail(30).Values())
	multiplier := math.Min(1.0+float64(days)/365.0*0.5, 2.0)
	z := zScore(0.95)

	points := make([]ForecastPoint, days)
	for i := 1; i <= days; i++ {
		predicted := lastValue + slope*float64(i)
		if days > 30 {
			predicted += 0.02 * math.Sin(2*math.Pi*float64(i)/365) * lastValue
		}

		adjusted := stdDev * multiplier * (1 + float64(i)/365.0)
		points[i-1] = ForecastPoint{
			Date:      futureDate(history.Last().Time, i),
			Yhat:      utils.Round2(math.Max(0, predicted)),
			YhatLower: utils.Round2(math.Max(0, predicted-z*adjusted)),
			YhatUpper: utils.Round2(math.Max(0, predicted+z*adjusted)),
		}
	}
	return points, nil
}

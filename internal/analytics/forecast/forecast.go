package forecast

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pricecast/pricecast/internal/analytics"
	"github.com/pricecast/pricecast/internal/utils"
)

// Method names reported to clients
const (
	MethodProphet        = "prophet"
	MethodPattern        = "realistic_pattern_based"
	MethodNaive          = "simple_linear"
	MethodExtendedLinear = "extended_linear_with_seasonality"
)

// ErrNoForecast is returned by a heuristic that cannot produce points for
// the given history
var ErrNoForecast = errors.New("no forecast produced")

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type
type DataPoint = analytics.TimeSeriesPoint

// ForecastPoint is one forecast day
type ForecastPoint struct {
	Date      time.Time
	Yhat      float64
	YhatLower float64
	YhatUpper float64
}

type forecastPointJSON struct {
	Date      string  `json:"ds"`
	Yhat      float64 `json:"yhat"`
	YhatLower float64 `json:"yhat_lower"`
	YhatUpper float64 `json:"yhat_upper"`
}

// MarshalJSON renders the date as YYYY-MM-DD
func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(forecastPointJSON{
		Date:      p.Date.Format(utils.DateLayout),
		Yhat:      p.Yhat,
		YhatLower: p.YhatLower,
		YhatUpper: p.YhatUpper,
	})
}

// UnmarshalJSON parses the YYYY-MM-DD form written by MarshalJSON
func (p *ForecastPoint) UnmarshalJSON(data []byte) error {
	var raw forecastPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(utils.DateLayout, raw.Date)
	if err != nil {
		return err
	}
	*p = ForecastPoint{Date: date, Yhat: raw.Yhat, YhatLower: raw.YhatLower, YhatUpper: raw.YhatUpper}
	return nil
}

// Forecaster produces one point per future day after the history's last date
type Forecaster interface {
	// Name returns the method name reported to clients
	Name() string

	// Forecast returns exactly days points, or an error
	Forecast(history analytics.TimeSeriesData, days int) ([]ForecastPoint, error)
}

// Noise supplies normally distributed draws to the heuristics
type Noise interface {
	NormFloat64() float64
}

// lockedNoise serializes access to a *rand.Rand shared across requests
type lockedNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNoise returns a goroutine-safe source. Seed 0 seeds from the clock.
func NewNoise(seed int64) Noise {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return &lockedNoise{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

func (n *lockedNoise) NormFloat64() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.NormFloat64()
}

// normal draws from N(0, std). A non-positive std yields 0.
func normal(noise Noise, std float64) float64 {
	if std <= 0 || math.IsNaN(std) {
		return 0
	}
	return noise.NormFloat64() * std
}

// futureDate is the i-th day (1-based) after last
func futureDate(last time.Time, i int) time.Time {
	return last.AddDate(0, 0, i)
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// zScore maps a two-sided confidence level to its normal quantile
func zScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	case confidence >= 0.80:
		return 1.2816
	default:
		return 1.96
	}
}

// calculatePredictionInterval calculates prediction interval bounds
func calculatePredictionInterval(value, stdError, confidence float64) (lower, upper float64) {
	margin := zScore(confidence) * stdError
	return value - margin, value + margin
}

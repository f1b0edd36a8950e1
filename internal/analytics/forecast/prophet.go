package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pricecast/pricecast/internal/analytics"
)

// Seasonality settings
const (
	SeasonalityAuto = "auto" // enable each term when the history supports it
	SeasonalityNone = "none" // trend only
)

const (
	yearlyPeriod = 365.25
	weeklyPeriod = 7.0

	// a term needs two full cycles of history
	minYearlySpan = 2 * 365 * 24 * time.Hour
	minWeeklySpan = 14 * 24 * time.Hour
)

// ProphetForecaster implements a Prophet-style additive decomposition:
// - piecewise linear trend with automatic changepoint detection
// - weekly and yearly Fourier seasonality
type ProphetForecaster struct {
	// Trend parameters
	ChangePointRange float64 // Proportion of history for potential changepoints (0-1)
	NumChangePoints  int     // Number of potential changepoints
	ChangePointScale float64 // Flexibility of trend changes

	// Seasonality parameters. With AutoSeasonality a term is also enabled
	// when the history covers two of its periods (weekly additionally
	// needs sub-weekly spacing).
	AutoSeasonality    bool
	YearlySeasonality  bool
	WeeklySeasonality  bool
	FourierOrderYearly int
	FourierOrderWeekly int

	// IntervalWidth is the coverage of yhat_lower..yhat_upper
	IntervalWidth float64
}

// ProphetModel is a fitted model. It is self-contained so it can be
// serialized, cached and used to predict later.
type ProphetModel struct {
	// Trend
	K            float64   `json:"k"`
	M            float64   `json:"m"`
	ChangePoints []float64 `json:"changepoints,omitempty"` // normalized time
	Deltas       []float64 `json:"deltas,omitempty"`

	// Seasonality coefficients, sin/cos interleaved
	YearlyCoeffs []float64 `json:"yearly_coeffs,omitempty"`
	WeeklyCoeffs []float64 `json:"weekly_coeffs,omitempty"`

	// Scale factors
	YScale float64 `json:"y_scale"`
	YMin   float64 `json:"y_min"`
	TScale float64 `json:"t_scale"`
	TMin   float64 `json:"t_min"`

	// Residual std for prediction intervals
	Sigma float64 `json:"sigma"`

	IntervalWidth float64   `json:"interval_width"`
	LastDate      time.Time `json:"last_date"`
	TrainedAt     time.Time `json:"trained_at"`
	RowsUsed      int       `json:"rows_used"`

	// In-sample accuracy
	MAPE float64 `json:"mape"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// NewProphetForecaster returns a forecaster with automatic seasonality
// and 80% intervals
func NewProphetForecaster() *ProphetForecaster {
	return &ProphetForecaster{
		ChangePointRange:   0.8,
		NumChangePoints:    25,
		ChangePointScale:   0.05,
		AutoSeasonality:    true,
		FourierOrderYearly: 10,
		FourierOrderWeekly: 3,
		IntervalWidth:      0.80,
	}
}

// SetSeasonality applies a SeasonalityAuto / SeasonalityNone setting
func (f *ProphetForecaster) SetSeasonality(setting string) error {
	switch setting {
	case "", SeasonalityAuto:
		f.AutoSeasonality = true
	case SeasonalityNone:
		f.AutoSeasonality = false
		f.YearlySeasonality = false
		f.WeeklySeasonality = false
	default:
		return fmt.Errorf("unknown seasonality setting %q", setting)
	}
	return nil
}

// seasonalTerms decides which Fourier terms to fit for sorted data
func (f *ProphetForecaster) seasonalTerms(data []DataPoint) (yearly, weekly bool) {
	yearly, weekly = f.YearlySeasonality, f.WeeklySeasonality
	if !f.AutoSeasonality || len(data) < 2 {
		return yearly, weekly
	}

	span := data[len(data)-1].Time.Sub(data[0].Time)
	spacing := span
	for i := 1; i < len(data); i++ {
		if d := data[i].Time.Sub(data[i-1].Time); d > 0 && d < spacing {
			spacing = d
		}
	}

	yearly = yearly || span >= minYearlySpan
	weekly = weekly || (span >= minWeeklySpan && spacing < 7*24*time.Hour)
	return yearly, weekly
}

// Fit estimates model parameters from a daily history
func (f *ProphetForecaster) Fit(history analytics.TimeSeriesData) (*ProphetModel, error) {
	data := make([]DataPoint, 0, len(history))
	for _, p := range history {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			data = append(data, p)
		}
	}
	n := len(data)
	if n < 2 {
		return nil, errors.New("not enough data after cleaning")
	}
	sort.Slice(data, func(i, j int) bool {
		return data[i].Time.Before(data[j].Time)
	})

	model := &ProphetModel{
		IntervalWidth: f.IntervalWidth,
		LastDate:      data[n-1].Time,
		TrainedAt:     time.Now().UTC(),
		RowsUsed:      n,
	}

	t := make([]float64, n)
	y := make([]float64, n)

	tMin := float64(data[0].Time.Unix())
	tMax := float64(data[n-1].Time.Unix())
	model.TMin = tMin
	model.TScale = tMax - tMin
	if model.TScale == 0 {
		model.TScale = 1
	}

	for i, dp := range data {
		t[i] = (float64(dp.Time.Unix()) - tMin) / model.TScale
		y[i] = dp.Value
	}

	model.YMin, model.YScale = y[0], 1.0
	yMax := y[0]
	for _, v := range y {
		model.YMin = math.Min(model.YMin, v)
		yMax = math.Max(yMax, v)
	}
	model.YScale = yMax - model.YMin
	if model.YScale == 0 {
		model.YScale = 1
	}

	yNorm := make([]float64, n)
	for i := range y {
		yNorm[i] = (y[i] - model.YMin) / model.YScale
	}

	f.fitTrend(model, t, yNorm)

	detrended := make([]float64, n)
	for i := range t {
		detrended[i] = yNorm[i] - model.trend(t[i])
	}

	// yearly is fitted first and removed before the weekly pass
	yearly, weekly := f.seasonalTerms(data)
	if yearly {
		model.YearlyCoeffs = fitFourierSeasonality(data, detrended, yearlyPeriod, f.FourierOrderYearly)
		for i, dp := range data {
			detrended[i] -= seasonality(model.YearlyCoeffs, dp.Time, yearlyPeriod)
		}
	}
	if weekly {
		model.WeeklyCoeffs = fitFourierSeasonality(data, detrended, weeklyPeriod, f.FourierOrderWeekly)
	}

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	for i, dp := range data {
		fitted[i] = model.value(dp.Time)
		residuals[i] = dp.Value - fitted[i]
	}
	model.Sigma = analytics.PopStdDev(residuals)
	if model.Sigma == 0 {
		model.Sigma = 1.0
	}

	model.MAPE = CalculateMAPE(y, fitted)
	model.MAE = CalculateMAE(y, fitted)
	model.RMSE = CalculateRMSE(y, fitted)

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("fit produced an unusable model: %w", err)
	}
	return model, nil
}

// fitTrend fits the piecewise linear trend
func (f *ProphetForecaster) fitTrend(model *ProphetModel, t, y []float64) {
	n := len(t)

	model.M, model.K = leastSquares(t, y)

	if f.NumChangePoints > 0 && n > f.NumChangePoints {
		changePointIdx := f.detectChangePoints(t, y, model.K, model.M)
		model.ChangePoints = make([]float64, len(changePointIdx))
		model.Deltas = make([]float64, len(changePointIdx))

		for i, idx := range changePointIdx {
			model.ChangePoints[i] = t[idx]
			if idx > 0 && idx < n-1 && t[idx+1] != t[idx-1] {
				localSlope := (y[idx+1] - y[idx-1]) / (t[idx+1] - t[idx-1])
				model.Deltas[i] = (localSlope - model.K) * f.ChangePointScale
			}
		}
	}
}

// leastSquares is ordinary least squares of y on t
func leastSquares(t, y []float64) (intercept, slope float64) {
	sumT, sumY, sumTY, sumT2 := 0.0, 0.0, 0.0, 0.0
	for i := range t {
		sumT += t[i]
		sumY += y[i]
		sumTY += t[i] * y[i]
		sumT2 += t[i] * t[i]
	}

	nf := float64(len(t))
	denom := nf*sumT2 - sumT*sumT
	if denom == 0 {
		return sumY / nf, 0
	}
	slope = (nf*sumTY - sumT*sumY) / denom
	return (sumY - slope*sumT) / nf, slope
}

// detectChangePoints ranks positions by the jump in mean residual
// between the windows before and after them
func (f *ProphetForecaster) detectChangePoints(t, y []float64, k, m float64) []int {
	n := len(t)
	rangeEnd := int(float64(n) * f.ChangePointRange)
	if rangeEnd < 2 {
		return nil
	}

	residuals := make([]float64, n)
	for i := range t {
		residuals[i] = y[i] - (k*t[i] + m)
	}

	type changePoint struct {
		idx   int
		score float64
	}
	candidates := make([]changePoint, 0, rangeEnd)

	windowSize := max(3, n/20)
	for i := windowSize; i < rangeEnd-windowSize; i++ {
		beforeMean, afterMean := 0.0, 0.0
		for j := i - windowSize; j < i; j++ {
			beforeMean += residuals[j]
		}
		for j := i; j < i+windowSize; j++ {
			afterMean += residuals[j]
		}
		beforeMean /= float64(windowSize)
		afterMean /= float64(windowSize)

		candidates = append(candidates, changePoint{idx: i, score: math.Abs(afterMean - beforeMean)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	numCP := min(f.NumChangePoints, len(candidates))
	result := make([]int, numCP)
	for i := 0; i < numCP; i++ {
		result[i] = candidates[i].idx
	}

	sort.Ints(result)
	return result
}

// fitFourierSeasonality fits Fourier series for seasonality
func fitFourierSeasonality(data []DataPoint, detrended []float64, period float64, order int) []float64 {
	coeffs := make([]float64, 2*order)
	periodSec := period * 24 * 3600

	for k := 1; k <= order; k++ {
		sinSum, cosSum := 0.0, 0.0
		sinSqSum, cosSqSum := 0.0, 0.0

		for i, dp := range data {
			phase := 2.0 * math.Pi * float64(k) * float64(dp.Time.Unix()) / periodSec

			sinVal := math.Sin(phase)
			cosVal := math.Cos(phase)

			sinSum += detrended[i] * sinVal
			cosSum += detrended[i] * cosVal
			sinSqSum += sinVal * sinVal
			cosSqSum += cosVal * cosVal
		}

		if sinSqSum > 0 {
			coeffs[2*(k-1)] = sinSum / sinSqSum
		}
		if cosSqSum > 0 {
			coeffs[2*(k-1)+1] = cosSum / cosSqSum
		}
	}

	return coeffs
}

// Validate rejects models that cannot produce finite predictions, such as
// a truncated or hand-edited cache entry
func (m *ProphetModel) Validate() error {
	scalars := map[string]float64{
		"k": m.K, "m": m.M, "y_scale": m.YScale, "y_min": m.YMin,
		"t_scale": m.TScale, "t_min": m.TMin, "sigma": m.Sigma,
	}
	for name, v := range scalars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite", name)
		}
	}
	if m.TScale <= 0 || m.YScale <= 0 {
		return errors.New("scale factors must be positive")
	}
	if len(m.ChangePoints) != len(m.Deltas) {
		return fmt.Errorf("%d changepoints but %d deltas", len(m.ChangePoints), len(m.Deltas))
	}
	for _, c := range [][]float64{m.YearlyCoeffs, m.WeeklyCoeffs} {
		if len(c)%2 != 0 {
			return errors.New("seasonality coefficients must come in sin/cos pairs")
		}
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New("seasonality coefficients must be finite")
			}
		}
	}
	if m.LastDate.IsZero() {
		return errors.New("last_date is missing")
	}
	return nil
}

// Predict extends the model days past its last training date
func (m *ProphetModel) Predict(days int) ([]ForecastPoint, error) {
	if days <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", days)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	points := make([]ForecastPoint, days)
	for h := 1; h <= days; h++ {
		date := futureDate(m.LastDate, h)
		value := m.value(date)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("prediction for %s is not finite", date.Format(time.DateOnly))
		}

		// interval widens with horizon
		lower, upper := calculatePredictionInterval(value, m.Sigma*math.Sqrt(float64(h)), m.IntervalWidth)
		points[h-1] = ForecastPoint{
			Date:      date,
			Yhat:      value,
			YhatLower: lower,
			YhatUpper: upper,
		}
	}
	return points, nil
}

func (m *ProphetModel) trend(t float64) float64 {
	trend := m.K*t + m.M
	for i, cp := range m.ChangePoints {
		if t > cp {
			trend += m.Deltas[i] * (t - cp)
		}
	}
	return trend
}

func seasonality(coeffs []float64, t time.Time, period float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	periodSec := period * 24 * 3600
	tSec := float64(t.Unix())

	result := 0.0
	for k := 1; k <= len(coeffs)/2; k++ {
		phase := 2.0 * math.Pi * float64(k) * tSec / periodSec
		result += coeffs[2*(k-1)]*math.Sin(phase) + coeffs[2*(k-1)+1]*math.Cos(phase)
	}
	return result
}

// value is the denormalized point prediction at t
func (m *ProphetModel) value(t time.Time) float64 {
	tNorm := (float64(t.Unix()) - m.TMin) / m.TScale
	trend := m.trend(tNorm)

	s := seasonality(m.YearlyCoeffs, t, yearlyPeriod) +
		seasonality(m.WeeklyCoeffs, t, weeklyPeriod)

	return (trend+s)*m.YScale + m.YMin
}

// Package analytics provides the series types and statistics shared by
// the outlier filter, the pattern analyzer and the forecasters.
package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimeSeriesPoint is one daily observation
type TimeSeriesPoint struct {
	Time  time.Time
	Value float64
}

// TimeSeriesData is an ordered daily series. After aggregation dates are
// strictly increasing with no duplicates.
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Len returns the number of data points
func (ts TimeSeriesData) Len() int {
	return len(ts)
}

// Last returns the final point. The series must not be empty.
func (ts TimeSeriesData) Last() TimeSeriesPoint {
	return ts[len(ts)-1]
}

// Tail returns the last n points, or the whole series when shorter
func (ts TimeSeriesData) Tail(n int) TimeSeriesData {
	if n >= len(ts) || n < 0 {
		return ts
	}
	return ts[len(ts)-n:]
}

// Since returns the points at or after t
func (ts TimeSeriesData) Since(t time.Time) TimeSeriesData {
	i := sort.Search(len(ts), func(i int) bool { return !ts[i].Time.Before(t) })
	return ts[i:]
}

// Mean calculates the mean of all values
func (ts TimeSeriesData) Mean() float64 {
	if len(ts) == 0 {
		return 0
	}
	return stat.Mean(ts.Values(), nil)
}

// StdDev is the sample standard deviation (n-1); 0 below two points
func (ts TimeSeriesData) StdDev() float64 {
	return SampleStdDev(ts.Values())
}

// MinMax returns the smallest and largest values
func (ts TimeSeriesData) MinMax() (float64, float64) {
	if len(ts) == 0 {
		return 0, 0
	}
	v := ts.Values()
	return floats.Min(v), floats.Max(v)
}

// SampleStdDev is the n-1 standard deviation; 0 below two values
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// PopStdDev is the population (n) standard deviation; 0 for empty input
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(values, nil))
}

// Diff returns successive differences v[i]-v[i-1]
func Diff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	floats.SubTo(out, values[1:], values[:len(values)-1])
	return out
}

// LinearTrend fits y = intercept + slope*i over the positions i = 0..n-1
func LinearTrend(values []float64) (intercept, slope float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	x := make([]float64, len(values))
	floats.Span(x, 0, float64(len(values)-1))
	return stat.LinearRegression(x, values, nil, false)
}

// Package aggregation rolls daily forecasts up into weekly and monthly
// buckets.
package aggregation

import (
	"math"
)

// AggregatedField accumulates count, sum and extrema of a value stream
type AggregatedField struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// NewAggregatedField creates an empty accumulator
func NewAggregatedField() *AggregatedField {
	return &AggregatedField{Min: math.Inf(1), Max: math.Inf(-1)}
}

// AddValue adds a value to the sum and count only
func (af *AggregatedField) AddValue(value float64) {
	af.Count++
	af.Sum += value
}

// AddRange widens the extrema to include [lo, hi]
func (af *AggregatedField) AddRange(lo, hi float64) {
	af.Min = math.Min(af.Min, lo)
	af.Max = math.Max(af.Max, hi)
}

// Merge combines another accumulator into this one
func (af *AggregatedField) Merge(other *AggregatedField) {
	af.Count += other.Count
	af.Sum += other.Sum
	af.Min = math.Min(af.Min, other.Min)
	af.Max = math.Max(af.Max, other.Max)
}

// Avg is the mean of the added values; 0 when empty
func (af *AggregatedField) Avg() float64 {
	if af.Count == 0 {
		return 0
	}
	return af.Sum / float64(af.Count)
}

package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places. Non-finite
// values are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ClampFloat limits v to [lo, hi]
func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

package anomaly

import (
	"github.com/pricecast/pricecast/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike AnomalyType = "spike" // above the expected range
	AnomalyTypeDrop  AnomalyType = "drop"  // below the expected range
)

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the closed range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type
type DataPoint = analytics.TimeSeriesPoint

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold is the number of standard deviations tolerated
	Threshold float64

	// MinDataPoints below which nothing is flagged
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     3.0,
		MinDataPoints: 2,
	}
}

// AnomalyDetector flags points of a series
type AnomalyDetector interface {
	Name() string

	// Detect returns the flagged points and the range they fell outside of
	Detect(data []DataPoint, config DetectorConfig) ([]AnomalyResult, Range)
}

// AnomalyResult contains detection result for a single point
type AnomalyResult struct {
	Index int         // Index in original data
	Score float64     // |z|
	Type  AnomalyType // spike or drop
}

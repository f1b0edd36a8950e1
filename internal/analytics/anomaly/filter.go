package anomaly

import (
	"github.com/pricecast/pricecast/internal/analytics"
)

// OutlierFilter drops points a detector flags. It is a single pass: the
// statistics are not recomputed after removal.
type OutlierFilter struct {
	detector AnomalyDetector
	config   DetectorConfig
}

// NewOutlierFilter returns a z-score filter at sigma standard deviations
func NewOutlierFilter(sigma float64) *OutlierFilter {
	cfg := DefaultConfig()
	cfg.Threshold = sigma
	return &OutlierFilter{detector: &ZScoreDetector{}, config: cfg}
}

// Filter returns the retained points in their original order together
// with the number removed. The input is not modified.
func (f *OutlierFilter) Filter(series analytics.TimeSeriesData) (analytics.TimeSeriesData, int) {
	flagged, _ := f.detector.Detect(series, f.config)
	if len(flagged) == 0 {
		return series, 0
	}

	drop := make(map[int]struct{}, len(flagged))
	for _, r := range flagged {
		drop[r.Index] = struct{}{}
	}

	kept := make(analytics.TimeSeriesData, 0, len(series)-len(flagged))
	for i, p := range series {
		if _, ok := drop[i]; !ok {
			kept = append(kept, p)
		}
	}
	return kept, len(flagged)
}

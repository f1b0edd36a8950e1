// Package prices loads the raw commodity price table and turns it into
// daily series.
package prices

import (
	"time"
)

// PriceRecord is one row of the price table
type PriceRecord struct {
	Commodity string
	Date      time.Time // calendar date, UTC midnight
	Amount    float64
	Type      string // optional
}

// Dataset is an immutable snapshot of the price table
type Dataset struct {
	Records []PriceRecord
	// Version is the modification time of the source; cached models older
	// than it are stale.
	Version time.Time
}

// Commodities returns the distinct commodity names in first-seen order
func (d *Dataset) Commodities() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, r := range d.Records {
		if _, ok := seen[r.Commodity]; ok {
			continue
		}
		seen[r.Commodity] = struct{}{}
		names = append(names, r.Commodity)
	}
	return names
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

package prices

import (
	"sort"
	"strings"
	"time"
)

// MatchType keeps records whose type contains filter, case-insensitively
func MatchType(records []PriceRecord, filter string) []PriceRecord {
	needle := strings.ToLower(filter)
	var out []PriceRecord
	for _, r := range records {
		if r.Type != "" && strings.Contains(strings.ToLower(r.Type), needle) {
			out = append(out, r)
		}
	}
	return out
}

// InDateRange keeps records with start <= date <= end
func InDateRange(records []PriceRecord, start, end time.Time) []PriceRecord {
	var out []PriceRecord
	for _, r := range records {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// SortedByDate returns a copy ordered by date, keeping source order for ties
func SortedByDate(records []PriceRecord) []PriceRecord {
	out := append([]PriceRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// LastN returns the final n records in source order
func LastN(records []PriceRecord, n int) []PriceRecord {
	if n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}

// DateSpan returns the earliest and latest dates. The slice must not be empty.
func DateSpan(records []PriceRecord) (earliest, latest time.Time) {
	earliest, latest = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(earliest) {
			earliest = r.Date
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return earliest, latest
}

// Amounts extracts the amounts in record order
func Amounts(records []PriceRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Amount
	}
	return out
}

// Count is a value with its number of occurrences
type Count struct {
	Value string
	Count int
}

// CountBy counts records per key, most frequent first. Ties keep first-seen
// order; empty keys are skipped.
func CountBy(records []PriceRecord, key func(PriceRecord) string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, Count{Value: k})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

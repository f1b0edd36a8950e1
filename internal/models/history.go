package models

import (
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/utils"
)

// RecordResponse is one price row
type RecordResponse struct {
	Commodity string  `json:"commodity"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Type      *string `json:"type"` // null when the source has no type
}

// NewRecordResponses converts records in order
func NewRecordResponses(records []prices.PriceRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = RecordResponse{
			Commodity: r.Commodity,
			Date:      r.Date.Format(utils.DateLayout),
			Amount:    r.Amount,
		}
		if r.Type != "" {
			t := r.Type
			out[i].Type = &t
		}
	}
	return out
}

// DateRange is an inclusive span of calendar dates
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// PriceStats summarizes matched amounts
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// CommodityDetailsResponse describes every record matching a commodity filter
type CommodityDetailsResponse struct {
	Commodity    string     `json:"commodity"`
	TotalRecords int        `json:"total_records"`
	DateRange    DateRange  `json:"date_range"`
	PriceStats   PriceStats `json:"price_stats"`
	Types        []string   `json:"types"`
}

// PriceRange is the spread of one type's amounts
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// CommodityCount is one entry of the top commodities
type CommodityCount struct {
	Commodity   string    `json:"commodity"`
	RecordCount int       `json:"record_count"`
	DateRange   DateRange `json:"date_range"`
}

// TypeCount is one entry of the top types
type TypeCount struct {
	Type        string     `json:"type"`
	RecordCount int        `json:"record_count"`
	PriceRange  PriceRange `json:"price_range"`
}

// DataStatsResponse summarizes the whole table
type DataStatsResponse struct {
	TotalRecords       int              `json:"total_records"`
	TotalCommodities   int              `json:"total_commodities"`
	TotalTypes         int              `json:"total_types"`
	DateRange          DateRange        `json:"date_range"`
	CommoditiesSummary []CommodityCount `json:"commodities_summary"`
	TypesSummary       []TypeCount      `json:"types_summary"`
}

// Trend labels of the forecast summary
const (
	TrendUp   = "Up"
	TrendDown = "Down"
)

// TrendSummary labels each horizon of a forecast summary
type TrendSummary struct {
	ShortTerm  string `json:"short_term_trend"`
	MediumTerm string `json:"medium_term_trend"`
	LongTerm   string `json:"long_term_trend"`
}

// ForecastSummaryResponse bundles three horizons. Each horizon holds either
// its forecast response or an ErrorResponse.
type ForecastSummaryResponse struct {
	Commodity  string       `json:"commodity"`
	ShortTerm  interface{}  `json:"short_term_30_days"`
	MediumTerm interface{}  `json:"medium_term_90_days"`
	LongTerm   interface{}  `json:"long_term_6_months"`
	Summary    TrendSummary `json:"summary"`
}

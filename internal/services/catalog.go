package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/prices"
	"github.com/pricecast/pricecast/internal/utils"
)

// APIVersion is reported by the root route of the forecasting profile
const APIVersion = "2.0"

// Root messages per profile
const (
	forecastingMessage = "Price Forecast API - Forecasting Only"
	fullMessage        = "Price Forecast API running!"
)

// CatalogService answers read-only questions about the price table
type CatalogService struct {
	source prices.Source
}

// NewCatalogService creates a CatalogService
func NewCatalogService(source prices.Source) *CatalogService {
	return &CatalogService{source: source}
}

// Info is the root payload. The forecasting profile reports the data
// version as data_updated; the full profile only says it is running.
func (s *CatalogService) Info(ctx context.Context, full bool) *models.InfoResponse {
	if full {
		return &models.InfoResponse{Message: fullMessage}
	}
	info := &models.InfoResponse{Message: forecastingMessage, Version: APIVersion}
	if v, err := s.source.Version(ctx); err == nil && !v.IsZero() {
		info.DataUpdated = v.UTC().Format(utils.DateLayout)
	}
	return info
}

// Commodities lists distinct commodity names in first-seen order
func (s *CatalogService) Commodities(ctx context.Context) (*models.CommoditiesResponse, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CommoditiesResponse{Commodities: ds.Commodities()}, nil
}

// History returns every record in source order
func (s *CatalogService) History(ctx context.Context) ([]models.RecordResponse, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewRecordResponses(ds.Records), nil
}

// RecentHistory returns the last 1000 records in source order
func (s *CatalogService) RecentHistory(ctx context.Context) ([]models.RecordResponse, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewRecordResponses(prices.LastN(ds.Records, utils.RecentHistoryLimit)), nil
}

// CommodityDetails summarizes the records matching a commodity filter
func (s *CatalogService) CommodityDetails(ctx context.Context, commodity string) (*models.CommodityDetailsResponse, error) {
	matched, err := s.matchCommodity(ctx, commodity)
	if err != nil {
		return nil, err
	}

	amounts := prices.Amounts(matched)
	earliest, latest := prices.DateSpan(matched)

	types := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range matched {
		if r.Type == "" {
			continue
		}
		if _, ok := seen[r.Type]; !ok {
			seen[r.Type] = struct{}{}
			types = append(types, r.Type)
		}
	}

	return &models.CommodityDetailsResponse{
		Commodity:    commodity,
		TotalRecords: len(matched),
		DateRange:    dateRange(earliest, latest),
		PriceStats: models.PriceStats{
			Min:    floats.Min(amounts),
			Max:    floats.Max(amounts),
			Avg:    stat.Mean(amounts, nil),
			Median: median(amounts),
		},
		Types: types,
	}, nil
}

// CommodityData returns the matching records ordered by date
func (s *CatalogService) CommodityData(ctx context.Context, commodity string) ([]models.RecordResponse, error) {
	matched, err := s.matchCommodity(ctx, commodity)
	if err != nil {
		return nil, err
	}
	return models.NewRecordResponses(prices.SortedByDate(matched)), nil
}

// TypeData returns the records whose type contains typeName, ordered by date
func (s *CatalogService) TypeData(ctx context.Context, typeName string) ([]models.RecordResponse, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := prices.MatchType(ds.Records, typeName)
	if len(matched) == 0 {
		return nil, NewServiceError(CodeNotFound, fmt.Sprintf("No data found for type '%s'", typeName))
	}
	return models.NewRecordResponses(prices.SortedByDate(matched)), nil
}

// DateRange returns the records dated start..end inclusive, ordered by date
func (s *CatalogService) DateRange(ctx context.Context, start, end string) ([]models.RecordResponse, error) {
	from, ok := prices.ParseDate(start)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", start)
	}
	to, ok := prices.ParseDate(end)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", end)
	}

	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := prices.InDateRange(ds.Records, from, to)
	if len(matched) == 0 {
		return nil, NewServiceError(CodeNotFound, fmt.Sprintf("No data found between %s and %s", start, end))
	}
	return models.NewRecordResponses(prices.SortedByDate(matched)), nil
}

// DataStats summarizes the whole table with the ten most frequent
// commodities and types
func (s *CatalogService) DataStats(ctx context.Context) (*models.DataStatsResponse, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, NewServiceError(CodeNotFound, "No data found")
	}

	byCommodity := make(map[string][]prices.PriceRecord)
	byType := make(map[string][]prices.PriceRecord)
	for _, r := range ds.Records {
		byCommodity[r.Commodity] = append(byCommodity[r.Commodity], r)
		if r.Type != "" {
			byType[r.Type] = append(byType[r.Type], r)
		}
	}

	commodityCounts := prices.CountBy(ds.Records, func(r prices.PriceRecord) string { return r.Commodity })
	typeCounts := prices.CountBy(ds.Records, func(r prices.PriceRecord) string { return r.Type })

	earliest, latest := prices.DateSpan(ds.Records)
	resp := &models.DataStatsResponse{
		TotalRecords:       ds.Len(),
		TotalCommodities:   len(commodityCounts),
		TotalTypes:         len(typeCounts),
		DateRange:          dateRange(earliest, latest),
		CommoditiesSummary: make([]models.CommodityCount, 0, utils.TopSummaryCount),
		TypesSummary:       make([]models.TypeCount, 0, utils.TopSummaryCount),
	}

	for _, c := range top(commodityCounts) {
		first, last := prices.DateSpan(byCommodity[c.Value])
		resp.CommoditiesSummary = append(resp.CommoditiesSummary, models.CommodityCount{
			Commodity:   c.Value,
			RecordCount: c.Count,
			DateRange:   dateRange(first, last),
		})
	}
	for _, c := range top(typeCounts) {
		amounts := prices.Amounts(byType[c.Value])
		resp.TypesSummary = append(resp.TypesSummary, models.TypeCount{
			Type:        c.Value,
			RecordCount: c.Count,
			PriceRange: models.PriceRange{
				Min: floats.Min(amounts),
				Max: floats.Max(amounts),
				Avg: stat.Mean(amounts, nil),
			},
		})
	}
	return resp, nil
}

func (s *CatalogService) matchCommodity(ctx context.Context, commodity string) ([]prices.PriceRecord, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := prices.MatchCommodity(ds.Records, commodity)
	if len(matched) == 0 {
		return nil, NewServiceError(CodeNotFound, fmt.Sprintf("No data found for '%s'", commodity))
	}
	return matched, nil
}

func top(counts []prices.Count) []prices.Count {
	if len(counts) > utils.TopSummaryCount {
		return counts[:utils.TopSummaryCount]
	}
	return counts
}

func dateRange(earliest, latest time.Time) models.DateRange {
	return models.DateRange{
		Earliest: earliest.Format(utils.DateLayout),
		Latest:   latest.Format(utils.DateLayout),
	}
}

// median averages the two middle values of an even-length input
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

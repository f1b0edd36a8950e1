package models

import (
	"github.com/pricecast/pricecast/internal/aggregation"
	"github.com/pricecast/pricecast/internal/analytics/forecast"
)

// ExtendedForecastNote is attached to every extended forecast
const ExtendedForecastNote = "Extended forecasts use enhanced linear modeling with seasonal adjustments and increased uncertainty bounds for longer periods"

// ErrorResponse is returned for every failure, with status 200
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
	DataSource  string `json:"data_source"`
	DataVersion string `json:"data_version,omitempty"`
}

// InfoResponse is the root payload
type InfoResponse struct {
	Message     string `json:"message"`
	Version     string `json:"version,omitempty"`
	DataUpdated string `json:"data_updated,omitempty"`
}

// CommoditiesResponse lists distinct commodities in first-seen order
type CommoditiesResponse struct {
	Commodities []string `json:"commodities"`
}

// ForecastResponse represents a daily forecast
type ForecastResponse struct {
	Commodity    string                   `json:"commodity"`
	Forecast     []forecast.ForecastPoint `json:"forecast"`
	Method       string                   `json:"method"`
	ProphetError string                   `json:"prophet_error,omitempty"`
}

// ExtendedForecastResponse represents a long-horizon forecast with 30-day buckets
type ExtendedForecastResponse struct {
	Commodity            string                       `json:"commodity"`
	ForecastPeriodMonths int                          `json:"forecast_period_months"`
	ForecastPeriodDays   int                          `json:"forecast_period_days"`
	Forecast             []forecast.ForecastPoint     `json:"forecast"`
	Method               string                       `json:"method"`
	MonthlySummary       []aggregation.MonthlySummary `json:"monthly_summary"`
	DataPointsUsed       int                          `json:"data_points_used"`
	Note                 string                       `json:"note"`
	ProphetError         string                       `json:"prophet_error,omitempty"`
}

// WeeklyForecastResponse represents a forecast grouped into 7-day buckets
type WeeklyForecastResponse struct {
	Commodity            string                        `json:"commodity"`
	ForecastPeriodMonths int                           `json:"forecast_period_months"`
	TotalWeeks           int                           `json:"total_weeks"`
	WeeklyForecasts      []aggregation.WeeklyForecast  `json:"weekly_forecasts"`
	OverallStatistics    *aggregation.WeeklyStatistics `json:"overall_statistics"`
	Method               string                        `json:"method"`
	DataPointsUsed       int                           `json:"data_points_used"`
	ProphetError         string                        `json:"prophet_error,omitempty"`
}

// TrainResponse reports a single training run
type TrainResponse struct {
	Status    string `json:"status"`
	Commodity string `json:"commodity"`
	ModelPath string `json:"model_path"`
	RowsUsed  int    `json:"rows_used"`
}

// Training statuses
const (
	TrainStatusTrained = "trained"
	TrainStatusSkipped = "skipped"
	TrainStatusFailed  = "failed"

	TrainReasonNotEnoughData = "not_enough_data"
)

// TrainSummary is one commodity of a train-all run
type TrainSummary struct {
	Commodity string `json:"commodity"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
	RowsUsed  int    `json:"rows_used,omitempty"`
}

// TrainAllResponse reports every commodity in sorted order
type TrainAllResponse struct {
	Summary  []TrainSummary `json:"summary"`
	ModelDir string         `json:"model_dir"`
}

package services

import (
	"context"
	"fmt"

	"github.com/pricecast/pricecast/internal/aggregation"
	"github.com/pricecast/pricecast/internal/analytics/forecast"
	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/utils"
)

// Forecast returns a daily forecast of 1..365 days
func (e *ForecastEngine) Forecast(ctx context.Context, commodity string, days int) (*models.ForecastResponse, error) {
	if days <= 0 {
		return nil, validationError("Days must be a positive integer")
	}
	if days > utils.MaxForecastDays {
		return nil, validationError("Maximum forecast period is %d days. Use /extended-forecast for longer periods.", utils.MaxForecastDays)
	}

	res, err := e.run(ctx, e.daily, commodity, days)
	if err != nil {
		return nil, err
	}
	return &models.ForecastResponse{
		Commodity:    commodity,
		Forecast:     res.Points,
		Method:       res.Method,
		ProphetError: res.PrimaryError,
	}, nil
}

// ExtendedForecast returns a forecast of months*30 days over up to two
// years of history, summarized in 30-day buckets
func (e *ForecastEngine) ExtendedForecast(ctx context.Context, commodity string, months int) (*models.ExtendedForecastResponse, error) {
	if months <= 0 {
		return nil, validationError("Months must be a positive integer")
	}
	if months > utils.MaxExtendedMonths {
		return nil, validationError("Maximum extended forecast period is %d months (2 years)", utils.MaxExtendedMonths)
	}

	days := months * utils.DaysPerMonth
	res, err := e.run(ctx, e.extended, commodity, days)
	if err != nil {
		return nil, err
	}

	summary, err := aggregation.Monthly(res.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize months: %w", err)
	}

	return &models.ExtendedForecastResponse{
		Commodity:            commodity,
		ForecastPeriodMonths: months,
		ForecastPeriodDays:   days,
		Forecast:             res.Points,
		Method:               res.Method,
		MonthlySummary:       summary,
		DataPointsUsed:       res.DataPointsUsed,
		Note:                 models.ExtendedForecastNote,
		ProphetError:         res.PrimaryError,
	}, nil
}

// WeeklyForecast returns a forecast of months*30 days grouped into weeks
func (e *ForecastEngine) WeeklyForecast(ctx context.Context, commodity string, months int) (*models.WeeklyForecastResponse, error) {
	if months <= 0 {
		return nil, validationError("Months must be a positive integer")
	}
	if months > utils.MaxWeeklyMonths {
		return nil, validationError("Maximum weekly forecast period is %d months", utils.MaxWeeklyMonths)
	}

	res, err := e.run(ctx, e.weekly, commodity, months*utils.DaysPerMonth)
	if err != nil {
		return nil, err
	}

	weeks, stats, err := aggregation.Weekly(res.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize weeks: %w", err)
	}

	return &models.WeeklyForecastResponse{
		Commodity:            commodity,
		ForecastPeriodMonths: months,
		TotalWeeks:           len(weeks),
		WeeklyForecasts:      weeks,
		OverallStatistics:    stats,
		Method:               res.Method,
		DataPointsUsed:       res.DataPointsUsed,
		ProphetError:         res.PrimaryError,
	}, nil
}

// Horizons of the forecast summary
const (
	summaryShortDays   = 30
	summaryMediumDays  = 90
	summaryLongMonths  = 6
	summaryForecastErr = "Failed to generate forecast"
	summaryExtendedErr = "Failed to generate extended forecast"
)

// ForecastSummary runs a 30-day, a 90-day and a 6-month forecast. A failed
// horizon is reported in place as an error payload and trends Down.
func (e *ForecastEngine) ForecastSummary(ctx context.Context, commodity string) (*models.ForecastSummaryResponse, error) {
	resp := &models.ForecastSummaryResponse{Commodity: commodity}

	short, err := e.Forecast(ctx, commodity, summaryShortDays)
	resp.ShortTerm, resp.Summary.ShortTerm = horizon(short, err, summaryForecastErr)

	medium, err := e.Forecast(ctx, commodity, summaryMediumDays)
	resp.MediumTerm, resp.Summary.MediumTerm = horizon(medium, err, summaryForecastErr)

	long, err := e.ExtendedForecast(ctx, commodity, summaryLongMonths)
	if err != nil {
		resp.LongTerm, resp.Summary.LongTerm = models.ErrorResponse{Error: UserMessage(err, summaryExtendedErr)}, models.TrendDown
	} else {
		resp.LongTerm, resp.Summary.LongTerm = long, Trend(long.Forecast)
	}

	return resp, nil
}

func horizon(resp *models.ForecastResponse, err error, operation string) (interface{}, string) {
	if err != nil {
		return models.ErrorResponse{Error: UserMessage(err, operation)}, models.TrendDown
	}
	return resp, Trend(resp.Forecast)
}

// Trend is Up when the last yhat exceeds the first, Down otherwise
// (including forecasts of fewer than two points)
func Trend(points []forecast.ForecastPoint) string {
	if len(points) > 1 && points[len(points)-1].Yhat > points[0].Yhat {
		return models.TrendUp
	}
	return models.TrendDown
}

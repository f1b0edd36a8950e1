package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/pricecast/pricecast/internal/models"
)

func TestHandler_Health(t *testing.T) {
	app := newTestApp(t, fixtureSource(), false)

	var resp models.HealthResponse
	status := do(t, app, "GET", "/health", &resp)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "2.0", resp.Version)
	assert.Equal(t, "static", resp.DataSource)
	assert.Equal(t, "2024-06-01T12:00:00Z", resp.DataVersion)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHandler_HealthDegraded(t *testing.T) {
	app := newTestApp(t, failingSource(), false)

	var resp models.HealthResponse
	status := do(t, app, "GET", "/health", &resp)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "degraded", resp.Status)
	assert.Empty(t, resp.DataVersion)
}

func TestHandler_Root(t *testing.T) {
	var info models.InfoResponse
	do(t, newTestApp(t, fixtureSource(), false), "GET", "/", &info)
	assert.Equal(t, "Price Forecast API - Forecasting Only", info.Message)
	assert.Equal(t, "2.0", info.Version)
	assert.Equal(t, "2024-06-01", info.DataUpdated)

	var raw map[string]interface{}
	do(t, newTestApp(t, fixtureSource(), true), "GET", "/", &raw)
	assert.Equal(t, map[string]interface{}{"message": "Price Forecast API running!"}, raw)
}

func TestHandler_NotFound(t *testing.T) {
	app := newTestApp(t, fixtureSource(), false)

	var resp models.ErrorResponse
	status := do(t, app, "GET", "/nonexistent", &resp)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Route not found: /nonexistent", resp.Error)
}

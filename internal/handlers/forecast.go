package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Forecast handles GET /forecast/:commodity/:days
func (h *Handler) Forecast(c *fiber.Ctx) error {
	resp, err := h.engine.Forecast(c.UserContext(), param(c, "commodity"), intParam(c, "days"))
	if err != nil {
		return h.fail(c, err, "Failed to generate forecast")
	}
	return c.JSON(resp)
}

// ExtendedForecast handles GET /extended-forecast/:commodity/:months
func (h *Handler) ExtendedForecast(c *fiber.Ctx) error {
	resp, err := h.engine.ExtendedForecast(c.UserContext(), param(c, "commodity"), intParam(c, "months"))
	if err != nil {
		return h.fail(c, err, "Failed to generate extended forecast")
	}
	return c.JSON(resp)
}

// WeeklyForecast handles GET /forecast-weekly/:commodity/:months
func (h *Handler) WeeklyForecast(c *fiber.Ctx) error {
	resp, err := h.engine.WeeklyForecast(c.UserContext(), param(c, "commodity"), intParam(c, "months"))
	if err != nil {
		return h.fail(c, err, "Failed to generate weekly forecast")
	}
	return c.JSON(resp)
}

// ForecastSummary handles GET /forecast-summary/:commodity
func (h *Handler) ForecastSummary(c *fiber.Ctx) error {
	resp, err := h.engine.ForecastSummary(c.UserContext(), param(c, "commodity"))
	if err != nil {
		return h.fail(c, err, "Failed to generate forecast summary")
	}
	return c.JSON(resp)
}

// Train handles POST /train/:commodity
func (h *Handler) Train(c *fiber.Ctx) error {
	resp, err := h.training.Train(c.UserContext(), param(c, "commodity"))
	if err != nil {
		return h.fail(c, err, "Failed to train model")
	}
	return c.JSON(resp)
}

// TrainAll handles POST /train-all
func (h *Handler) TrainAll(c *fiber.Ctx) error {
	resp, err := h.training.TrainAll(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to train all models")
	}
	return c.JSON(resp)
}

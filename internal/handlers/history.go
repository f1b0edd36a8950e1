package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Commodities handles GET /commodities
func (h *Handler) Commodities(c *fiber.Ctx) error {
	resp, err := h.catalog.Commodities(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load commodities")
	}
	return c.JSON(resp)
}

// History handles GET /history
func (h *Handler) History(c *fiber.Ctx) error {
	records, err := h.catalog.History(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load data")
	}
	return c.JSON(records)
}

// RecentHistory handles GET /history/recent
func (h *Handler) RecentHistory(c *fiber.Ctx) error {
	records, err := h.catalog.RecentHistory(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load data")
	}
	return c.JSON(records)
}

// CommodityDetails handles GET /commodity/:commodity
func (h *Handler) CommodityDetails(c *fiber.Ctx) error {
	resp, err := h.catalog.CommodityDetails(c.UserContext(), param(c, "commodity"))
	if err != nil {
		return h.fail(c, err, "Failed to get commodity details")
	}
	return c.JSON(resp)
}

// CommodityData handles GET /commodity/:commodity/all-data
func (h *Handler) CommodityData(c *fiber.Ctx) error {
	records, err := h.catalog.CommodityData(c.UserContext(), param(c, "commodity"))
	if err != nil {
		return h.fail(c, err, "Failed to get commodity data")
	}
	return c.JSON(records)
}

// TypeData handles GET /type/:type/all-data
func (h *Handler) TypeData(c *fiber.Ctx) error {
	records, err := h.catalog.TypeData(c.UserContext(), param(c, "type"))
	if err != nil {
		return h.fail(c, err, "Failed to get type data")
	}
	return c.JSON(records)
}

// DateRange handles GET /data/date-range/:start/:end
func (h *Handler) DateRange(c *fiber.Ctx) error {
	records, err := h.catalog.DateRange(c.UserContext(), param(c, "start"), param(c, "end"))
	if err != nil {
		return h.fail(c, err, "Failed to get data by date range")
	}
	return c.JSON(records)
}

// DataStats handles GET /data-stats
func (h *Handler) DataStats(c *fiber.Ctx) error {
	resp, err := h.catalog.DataStats(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to get data statistics")
	}
	return c.JSON(resp)
}

package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger   *logging.Logger
	engine   *services.ForecastEngine
	training *services.TrainingService
	catalog  *services.CatalogService
	full     bool // full profile: history browsing routes and root message
}

// New creates a new handler instance
func New(logger *logging.Logger, engine *services.ForecastEngine, training *services.TrainingService,
	catalog *services.CatalogService, full bool,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		logger:   logger,
		engine:   engine,
		training: training,
		catalog:  catalog,
		full:     full,
	}
}

// fail reports err as {"error": ...} with status 200. Service errors are
// shown verbatim; anything else is prefixed with operation.
func (h *Handler) fail(c *fiber.Ctx, err error, operation string) error {
	log := h.logger.WithContext(c.UserContext())

	var se *services.ServiceError
	if errors.As(err, &se) {
		log.Debug("Request rejected", "path", c.Path(), "code", se.Code, "error", se.Message)
	} else {
		log.Error(operation, "path", c.Path(), "error", err)
	}
	return c.JSON(models.ErrorResponse{Error: services.UserMessage(err, operation)})
}

// param returns a decoded path parameter
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// intParam parses a path parameter. Non-numeric input becomes 0 so the
// service rejects it with its positive-integer message.
func intParam(c *fiber.Ctx, name string) int {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0
	}
	return n
}

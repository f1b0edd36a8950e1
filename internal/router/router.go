package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pricecast/pricecast/internal/config"
	"github.com/pricecast/pricecast/internal/handlers"
	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/metrics"
	"github.com/pricecast/pricecast/internal/middleware"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, h *handlers.Handler, m *metrics.Metrics, cfg config.ServerConfig) {
	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	app.Get("/", h.Root)
	app.Get("/health", h.Health)
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Forecasting
	app.Get("/commodities", h.Commodities)
	app.Get("/forecast/:commodity/:days", h.Forecast)
	app.Get("/extended-forecast/:commodity/:months", h.ExtendedForecast)
	app.Get("/forecast-weekly/:commodity/:months", h.WeeklyForecast)

	// Training
	app.Post("/train/:commodity", h.Train)
	app.Post("/train-all", h.TrainAll)

	if cfg.HistoryRoutesEnabled() {
		app.Get("/history", h.History)
		app.Get("/history/recent", h.RecentHistory)
		app.Get("/commodity/:commodity", h.CommodityDetails)
		app.Get("/commodity/:commodity/all-data", h.CommodityData)
		app.Get("/type/:type/all-data", h.TypeData)
		app.Get("/data/date-range/:start/:end", h.DateRange)
		app.Get("/data-stats", h.DataStats)
		app.Get("/forecast-summary/:commodity", h.ForecastSummary)
	}

	// 404 handler
	app.Use(h.NotFound)
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, h *handlers.Handler, m *metrics.Metrics, cfg config.ServerConfig) *fiber.App {
	fc := fiber.Config{
		AppName:               "Price Forecast API",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
	}
	if cfg.BodyLimit > 0 {
		fc.BodyLimit = cfg.BodyLimit
	}
	app := fiber.New(fc)

	Setup(app, logger, h, m, cfg)

	return app
}

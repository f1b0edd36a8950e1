package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pricecast/pricecast/internal/handlers"
	"github.com/pricecast/pricecast/internal/keepalive"
	"github.com/pricecast/pricecast/internal/queue"
	"github.com/pricecast/pricecast/internal/router"
	"github.com/pricecast/pricecast/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Price forecast service starting...",
			"version", Version, "commit", GitCommit, "build time", BuildTime, "profile", cfg.Server.Profile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c, err := build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.events.Subscribe(queue.SubjectModelTrained, c.engine.HandleModelEvent); err != nil {
			logger.Warn("Model event subscription failed, replicas will not see retrains", "error", err)
		}

		h := handlers.New(logger, c.engine, c.training, c.catalog, cfg.Server.HistoryRoutesEnabled())
		app := router.New(logger, h, c.metrics, cfg.Server)

		if cfg.KeepAlive.Enabled {
			pinger := keepalive.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, keepalive.Options{Logger: logger})
			go pinger.Run(ctx)
		}

		// Start server in goroutine
		go func() {
			addr := cfg.GetServerAddress()
			logger.Info("Server listening", "address", addr)
			if err := app.Listen(addr); err != nil {
				logger.Fatal("Failed to start server", "error", err)
			}
		}()

		// Wait for interrupt signal to gracefully shutdown the server
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.DefaultShutdownTimeout)
		defer shutdownCancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}

		logger.Info("Server exited")
		return nil
	},
}

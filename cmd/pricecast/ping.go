package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricecast/pricecast/internal/keepalive"
)

var (
	pingURL      string
	pingInterval time.Duration
	pingOnce     bool
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Keep a deployed instance awake by requesting its root on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := pingURL
		if url == "" {
			url = cfg.KeepAlive.URL
		}
		if url == "" {
			return errors.New("--url is required when keepalive.url is not configured")
		}
		interval := pingInterval
		if interval <= 0 {
			interval = cfg.KeepAlive.Interval
		}

		pinger := keepalive.New(url, interval, keepalive.Options{Logger: logger})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if pingOnce {
			return pinger.Ping(ctx)
		}
		_ = pinger.Ping(ctx)
		pinger.Run(ctx)
		return nil
	},
}

func init() {
	pingCmd.Flags().StringVar(&pingURL, "url", "", "Base URL to ping (default: keepalive.url)")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 0, "Ping interval (default: keepalive.interval)")
	pingCmd.Flags().BoolVar(&pingOnce, "once", false, "Ping a single time and exit")
}

// Package keepalive periodically requests the service root so hosted
// deployments that sleep on inactivity stay warm.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/utils"
)

// StatusError is returned when the pinged URL answers with a non-2xx status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("keep-alive ping returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Options tunes a Pinger
type Options struct {
	Client          *http.Client
	MaxElapsed      time.Duration // retry budget for one ping
	InitialInterval time.Duration // first retry delay
	Logger          *logging.Logger
}

// Pinger issues GET <url>/ on a fixed interval
type Pinger struct {
	target   string
	interval time.Duration
	opts     Options
	logger   *logging.Logger
}

// New creates a pinger for baseURL
func New(baseURL string, interval time.Duration, opts Options) *Pinger {
	if interval <= 0 {
		interval = utils.KeepAliveInterval
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: utils.KeepAliveRequestTimeout}
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = utils.KeepAliveMaxElapsed
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Pinger{
		target:   strings.TrimRight(baseURL, "/") + "/",
		interval: interval,
		opts:     opts,
		logger:   opts.Logger.With("component", "keepalive", "url", baseURL),
	}
}

// Target returns the URL being pinged
func (p *Pinger) Target() string {
	return p.target
}

// Ping performs one request, retrying with exponential backoff
func (p *Pinger) Ping(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.opts.MaxElapsed
	if p.opts.InitialInterval > 0 {
		b.InitialInterval = p.opts.InitialInterval
	}

	attempts := 0
	operation := func() error {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := p.opts.Client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	start := time.Now()
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		p.logger.Warn("Keep-alive ping failed", "attempts", attempts, "error", err)
		return err
	}
	p.logger.Info("Keep-alive ping succeeded", "attempts", attempts, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Run pings on every tick until ctx is cancelled. Failed pings are logged
// and do not stop the loop.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Keep-alive started", "interval", p.interval.String())
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Keep-alive stopped")
			return
		case <-ticker.C:
			_ = p.Ping(ctx)
		}
	}
}

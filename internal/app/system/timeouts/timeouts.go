// Package timeouts holds the per-operation deadlines applied to store and
// notification calls.
//
// No store or transport call may block indefinitely. Callers wrap each call in
// context.WithTimeout using one of these values; an expired deadline fails
// that single operation only.
//
//   - Ping: health checks
//   - Short: single-document reads and writes, one notification delivery
//   - Medium: listing users or scanning the questions collection
//   - Sweep: one complete reconciliation sweep
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 15 * time.Second
	DefaultSweep  = 2 * time.Minute
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	sweep  = DefaultSweep
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for a single-document operation or one push delivery.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for collection scans and directory listings.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Sweep returns the upper bound for one reconciliation sweep.
func Sweep() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return sweep
}

// Config holds timeout overrides. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Sweep  time.Duration
}

// Configure applies non-zero overrides. Call it once during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Sweep > 0 {
		sweep = cfg.Sweep
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	sweep = DefaultSweep
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Sweep: sweep}
}

// WithTimeout derives a context with the given timeout. The returned cancel
// func logs a warning when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), log, "update assignment")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}

// Package tuning adapts the teacher's runtime-tuning helpers: GOMAXPROCS
// reporting at startup, and a rate limiter guarding the one diagnostics
// endpoint expensive enough to need one (the /stats listing walk). The
// teacher's bespoke windowed RateMonitor was purpose-built for ingest
// backpressure this collector doesn't have; DiagnosticsLimiter replaces it
// with a straightforward golang.org/x/time/rate.Limiter gate, the same
// dependency the teacher already carried (as an indirect dep) for exactly
// this kind of throttling.
package tuning

import (
	"log/slog"
	"runtime"

	"golang.org/x/time/rate"
)

// RuntimeConfig controls process-wide tuning knobs applied at startup.
type RuntimeConfig struct {
	MaxProcs             int
	DiagnosticsRateLimit int
}

// DefaultRuntimeConfig mirrors the teacher's conservative two-CPU default,
// appropriate for a sidecar process that should not compete with its host
// application for cores.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MaxProcs:             2,
		DiagnosticsRateLimit: 20,
	}
}

// ApplyGOMAXPROCS sets GOMAXPROCS and logs the before/after values, kept
// verbatim from the teacher's cmd/api startup sequence.
func ApplyGOMAXPROCS(cfg *RuntimeConfig, logger *slog.Logger) int {
	prev := runtime.GOMAXPROCS(cfg.MaxProcs)
	logger.Info("GOMAXPROCS configured",
		"previous", prev,
		"current", cfg.MaxProcs,
		"num_cpu", runtime.NumCPU(),
	)
	return prev
}

// DiagnosticsLimiter rate-limits the diagnostics server's /stats listing
// endpoint, the one handler that walks every Window in the Registry.
// Individual /stats/{name} reads are unthrottled.
type DiagnosticsLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDiagnosticsLimiter builds a limiter allowing cfg.DiagnosticsRateLimit
// requests/sec, with a burst of the same size.
func NewDiagnosticsLimiter(cfg *RuntimeConfig, logger *slog.Logger) *DiagnosticsLimiter {
	return &DiagnosticsLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.DiagnosticsRateLimit), cfg.DiagnosticsRateLimit),
		logger:  logger,
	}
}

// Allow reports whether the current request may proceed, logging at Warn
// each time a request is throttled.
func (d *DiagnosticsLimiter) Allow() bool {
	ok := d.limiter.Allow()
	if !ok {
		d.logger.Warn("diagnostics listing rate limit exceeded")
	}
	return ok
}

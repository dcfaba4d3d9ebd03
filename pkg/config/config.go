// Package config holds the process configuration for a statblock
// attachment: the well-known names every cooperating process must agree
// on, segment sizing, the default window interval, and the optional
// diagnostics server's listen address and rate limit. Grounded on the
// teacher's pkg/config.Config: a plain struct plus a Load() constructor
// that applies defaults and lets environment variables override them.
package config

import (
	"os"
	"strconv"
)

// Config holds all statblock process configuration.
type Config struct {
	// SegmentName, MutexName and RefCounterKey must match exactly across
	// every process that cooperates on the same backing Region.
	SegmentName   string
	MutexName     string
	RefCounterKey string

	// SegmentSize is the fixed total size, in bytes, of the backing
	// segment — sized for ~1000 Windows at ~600 bytes each.
	SegmentSize int64
	// MaxWindows bounds the Registry's fixed entry table.
	MaxWindows int

	// DefaultIntervalSeconds is the window span used by AddStat calls
	// that occur before any SetInterval call.
	DefaultIntervalSeconds uint64

	// DiagnosticsAddr is the listen address for the optional read-only
	// HTTP diagnostics server. Empty disables the server.
	DiagnosticsAddr string
	// DiagnosticsRateLimit bounds requests/sec to the /stats listing
	// endpoint, the one handler that walks every Window.
	DiagnosticsRateLimit int
}

// Load returns the default Config with any STATBLOCK_* environment
// variables applied over it, the same override-the-defaults shape as the
// teacher's config.Load().
func Load() *Config {
	cfg := &Config{
		SegmentName:   "STATBLOCK_STORAGE",
		MutexName:     "STATBLOCK_STORAGE_MUTEX",
		RefCounterKey: "STATBLOCK_STORAGE_REF_COUNTER",

		SegmentSize: 2_091_008,
		MaxWindows:  1000,

		DefaultIntervalSeconds: 600,

		DiagnosticsAddr:      ":7777",
		DiagnosticsRateLimit: 20,
	}

	if v := os.Getenv("STATBLOCK_SEGMENT_NAME"); v != "" {
		cfg.SegmentName = v
	}
	if v := os.Getenv("STATBLOCK_MUTEX_NAME"); v != "" {
		cfg.MutexName = v
	}
	if v := os.Getenv("STATBLOCK_REF_COUNTER_KEY"); v != "" {
		cfg.RefCounterKey = v
	}
	if v := os.Getenv("STATBLOCK_SEGMENT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.SegmentSize = n
		}
	}
	if v := os.Getenv("STATBLOCK_MAX_WINDOWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxWindows = n
		}
	}
	if v := os.Getenv("STATBLOCK_DEFAULT_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.DefaultIntervalSeconds = n
		}
	}
	if v := os.Getenv("STATBLOCK_DIAGNOSTICS_ADDR"); v != "" {
		cfg.DiagnosticsAddr = v
	}
	if v := os.Getenv("STATBLOCK_DIAGNOSTICS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DiagnosticsRateLimit = n
		}
	}

	return cfg
}

// Command statblockd runs the optional diagnostics server: a read-only
// HTTP view over one Region's Registry. It is a separate binary from any
// application recording stats, so the core pkg/statblock library carries
// no HTTP dependency; grounded on the teacher's cmd/api/main.go startup
// sequence (config load, logger setup, GOMAXPROCS tuning, graceful
// shutdown on SIGINT/SIGTERM).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/obsidian-metrics/statblock/pkg/config"
	"github.com/obsidian-metrics/statblock/pkg/diagnostics"
	"github.com/obsidian-metrics/statblock/pkg/shmem"
	"github.com/obsidian-metrics/statblock/pkg/statblock"
	"github.com/obsidian-metrics/statblock/pkg/tuning"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if cfg.DiagnosticsAddr == "" {
		logger.Info("diagnostics server disabled (empty DiagnosticsAddr)")
		return
	}

	runtimeCfg := tuning.DefaultRuntimeConfig()
	runtimeCfg.DiagnosticsRateLimit = cfg.DiagnosticsRateLimit
	tuning.ApplyGOMAXPROCS(runtimeCfg, logger)

	facade := statblock.New(shmem.Config{
		SegmentName: cfg.SegmentName,
		MutexName:   cfg.MutexName,
		Size:        cfg.SegmentSize,
	}, statblock.WithMaxNames(cfg.MaxWindows), statblock.WithLogger(logger))
	defer facade.Close()
	facade.SetInterval(cfg.DefaultIntervalSeconds)

	limiter := tuning.NewDiagnosticsLimiter(runtimeCfg, logger)
	handler := diagnostics.New(facade, limiter, logger)

	e := echo.New()
	diagnostics.Setup(e, handler)

	go func() {
		logger.Info("diagnostics server starting", "address", cfg.DiagnosticsAddr)
		if err := e.Start(cfg.DiagnosticsAddr); err != nil {
			logger.Error("diagnostics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down diagnostics server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("diagnostics server forced to shutdown", "error", err)
	}

	logger.Info("diagnostics server exited")
}

// Package diagnostics is an optional, read-only HTTP surface over a
// statblock.Facade, for operators inspecting a live Region from outside
// its attached processes. It is never imported by pkg/statblock itself —
// the core library has zero HTTP dependency — and is wired only from
// cmd/statblockd. Grounded on the teacher's pkg/handlers.Handler /
// pkg/routes.Setup split, generalized from per-tenant CDN metrics to
// per-name aggregate snapshots.
package diagnostics

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/obsidian-metrics/statblock/pkg/statblock"
	"github.com/obsidian-metrics/statblock/pkg/tuning"
)

// Handler serves the diagnostics endpoints over a single Facade.
type Handler struct {
	facade  *statblock.Facade
	limiter *tuning.DiagnosticsLimiter
	logger  *slog.Logger
}

// New returns a Handler reading through facade. limiter gates the /stats
// listing endpoint only; per-name reads are unthrottled.
func New(facade *statblock.Facade, limiter *tuning.DiagnosticsLimiter, logger *slog.Logger) *Handler {
	return &Handler{facade: facade, limiter: limiter, logger: logger}
}

// Health reports liveness of the diagnostics process itself.
func (h *Handler) Health(c *echo.Context) error {
	return (*c).JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// statSnapshot is the JSON shape returned for one named Window.
type statSnapshot struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
	Avg   uint64 `json:"avg"`
	Min   uint64 `json:"min"`
	Max   uint64 `json:"max"`
}

// GetStat reads the aggregate for one name. A name not yet registered in
// the Region is answered with 404 before AddStat is reached, so the
// diagnostics server never creates a Window.
func (h *Handler) GetStat(c *echo.Context) error {
	name := (*c).Param("name")
	if name == "" {
		return (*c).JSON(http.StatusBadRequest, map[string]string{
			"error": "missing name path parameter",
		})
	}

	found := false
	for _, n := range h.facade.Names() {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return (*c).JSON(http.StatusNotFound, map[string]string{
			"error": "unknown name",
		})
	}

	handle := h.facade.AddStat(name)
	return (*c).JSON(http.StatusOK, statSnapshot{
		Name:  name,
		Count: h.facade.GetCallCount(handle),
		Avg:   h.facade.GetAvgDuration(handle),
		Min:   h.facade.GetMinDuration(handle),
		Max:   h.facade.GetMaxDuration(handle),
	})
}

// ListStats lists every name currently known to the attached Region. It
// walks the whole Registry and is the only handler gated by the
// DiagnosticsLimiter.
func (h *Handler) ListStats(c *echo.Context) error {
	if !h.limiter.Allow() {
		return (*c).JSON(http.StatusTooManyRequests, map[string]string{
			"error": "rate_limited",
		})
	}
	return (*c).JSON(http.StatusOK, map[string]interface{}{
		"names": h.facade.Names(),
	})
}

// Setup registers the diagnostics routes on e, the same grouping shape the
// teacher's pkg/routes.Setup used.
func Setup(e *echo.Echo, h *Handler) {
	e.GET("/health", func(c *echo.Context) error { return h.Health(c) })
	e.GET("/stats", func(c *echo.Context) error { return h.ListStats(c) })
	e.GET("/stats/:name", func(c *echo.Context) error { return h.GetStat(c) })
}

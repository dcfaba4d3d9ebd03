package diagnostics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/obsidian-metrics/statblock/pkg/shmem"
	"github.com/obsidian-metrics/statblock/pkg/statblock"
	"github.com/obsidian-metrics/statblock/pkg/tuning"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := shmem.Config{
		SegmentName: fmt.Sprintf("diag-test-%s", t.Name()),
		MutexName:   fmt.Sprintf("diag-test-%s", t.Name()),
		Size:        1 << 20,
	}
	f := statblock.New(cfg, statblock.WithMaxNames(8), statblock.WithLogger(nopLogger()))
	t.Cleanup(func() { f.Close() })

	limiter := tuning.NewDiagnosticsLimiter(&tuning.RuntimeConfig{DiagnosticsRateLimit: 20}, nopLogger())
	return New(f, limiter, nopLogger())
}

func TestHealthReportsOK(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetStatUnknownNameReturnsNotFound(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/stats/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("missing")

	if err := h.GetStat(c); err != nil {
		t.Fatalf("GetStat: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unregistered name, got %d", rec.Code)
	}
}

func TestGetStatKnownNameReturnsSnapshot(t *testing.T) {
	h := newTestHandler(t)
	h.facade.SetInterval(60)
	handle := h.facade.AddStat("known")
	h.facade.AddCallInfo(handle, 42)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/stats/known", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("known")

	if err := h.GetStat(c); err != nil {
		t.Fatalf("GetStat: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap statSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if snap.Count != 1 || snap.Max != 42 {
		t.Fatalf("expected count=1 max=42, got %+v", snap)
	}
}

func TestListStatsIsRateLimited(t *testing.T) {
	h := newTestHandler(t)
	h.limiter = tuning.NewDiagnosticsLimiter(&tuning.RuntimeConfig{DiagnosticsRateLimit: 1}, nopLogger())

	e := echo.New()

	allow := 0
	throttled := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h.ListStats(c); err != nil {
			t.Fatalf("ListStats: %v", err)
		}
		if rec.Code == http.StatusOK {
			allow++
		} else if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	if throttled == 0 {
		t.Fatalf("expected at least one throttled response across 10 rapid requests")
	}
}

// Package statblock is the thin user-facing Facade: SetInterval, AddStat,
// AddCallInfo, and the four Get* readers. Apart from a mutex guarding its
// own fields, every call delegates to the LifecycleManager-attached Region's
// Registry, or straight through a cached Handle to a Window. Grounded on
// the teacher's pkg/service.Service functional-options constructor shape,
// generalized from one HTTP service's dependency wiring to the Facade's
// acquire-on-construct / release-on-Close lifecycle.
package statblock

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/obsidian-metrics/statblock/pkg/lifecycle"
	"github.com/obsidian-metrics/statblock/pkg/registry"
	"github.com/obsidian-metrics/statblock/pkg/shmem"
	"github.com/obsidian-metrics/statblock/pkg/window"
)

// DefaultIntervalSeconds matches the spec's default window span.
const DefaultIntervalSeconds = 600

// Handle is an opaque reference to one Window inside one Region. The zero
// Handle is the spec's null handle: every Facade method treats it as an
// identity no-op rather than an error.
type Handle struct {
	state *window.State
}

// valid reports whether h resolves to a real Window.
func (h Handle) valid() bool { return h.state != nil }

// Option configures a Facade at construction time, the same pattern the
// teacher's pkg/service.Option uses for its Service constructor.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	maxNames int
}

// WithLogger overrides the Facade's slog.Logger, otherwise slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxNames overrides the Registry's fixed entry-table capacity,
// otherwise 1000 per the spec's sizing note.
func WithMaxNames(n int) Option {
	return func(o *options) { o.maxNames = n }
}

// Facade is one live attachment to a named Region. Multiple Facade
// instances may exist in one process and across processes sharing the same
// Config names. Each Facade constructs its own lifecycle.Manager, so
// Facades in the same process do not share a user count U: every attached
// Facade counts once in the Region's G, not once per process.
type Facade struct {
	mgr      *lifecycle.Manager
	logger   *slog.Logger
	instance uuid.UUID

	mu       sync.Mutex
	region   *shmem.Region
	registry *registry.Registry
	interval uint64
	closed   bool
}

// New acquires the Region named by cfg (creating it if this is the first
// attacher anywhere) and returns a Facade bound to it. A failed attach is
// not returned as an error: per spec §7, the Facade tolerates this by
// degrading every subsequent call to a no-op, the same "absorb at the
// boundary" policy the whole error taxonomy follows.
func New(cfg shmem.Config, opts ...Option) *Facade {
	o := options{logger: slog.Default(), maxNames: 1000}
	for _, opt := range opts {
		opt(&o)
	}

	cfg.Reserved = registry.ReservedBytes(o.maxNames)
	mgr := lifecycle.New(cfg, o.maxNames)

	f := &Facade{
		mgr:      mgr,
		logger:   o.logger,
		instance: uuid.New(),
		interval: DefaultIntervalSeconds,
	}

	region, reg, err := mgr.Acquire()
	if err != nil {
		f.logger.Warn("statblock: region attach failed, degrading to no-op", "err", err, "instance", f.instance)
		return f
	}
	f.region = region
	f.registry = reg
	f.logger.Info("statblock: attached", "instance", f.instance, "segment", cfg.SegmentName)
	return f
}

// SetInterval sets the interval, in seconds, used by future AddStat calls
// in this Facade. It does not affect Windows that already exist — per the
// spec's first-writer-wins Registry semantics, an existing Window keeps
// the interval it was created with.
func (f *Facade) SetInterval(seconds uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = seconds
}

// AddStat returns the Handle for name, creating its Window with the
// Facade's current interval if this is the first call for that name in the
// Region's lifetime. A failed create (region never attached, or full)
// yields the zero Handle; every subsequent op on it is a no-op.
func (f *Facade) AddStat(name string) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.registry == nil {
		return Handle{}
	}

	f.region.Lock()
	st, err := f.registry.FindOrCreate(name, f.interval)
	f.region.Unlock()
	if err != nil {
		f.logger.Warn("statblock: AddStat failed", "name", name, "err", err, "instance", f.instance)
		return Handle{}
	}
	return Handle{state: st}
}

// AddCallInfo folds one sample of durationMicros into h's Window. A null
// handle is a no-op, per spec §7's ENullHandle identity treatment.
func (f *Facade) AddCallInfo(h Handle, durationMicros uint64) {
	if !h.valid() {
		return
	}
	window.New(h.state).Record(durationMicros)
}

// GetCallCount returns h's current sample count, or 0 for a null handle.
func (f *Facade) GetCallCount(h Handle) uint64 {
	if !h.valid() {
		return 0
	}
	return window.New(h.state).Snapshot().Count
}

// GetAvgDuration returns h's current mean duration (integer division), or
// 0 for a null handle or an empty window.
func (f *Facade) GetAvgDuration(h Handle) uint64 {
	if !h.valid() {
		return 0
	}
	return window.New(h.state).Snapshot().Mean
}

// GetMaxDuration returns h's current maximum duration, or 0 for a null
// handle or an empty window.
func (f *Facade) GetMaxDuration(h Handle) uint64 {
	if !h.valid() {
		return 0
	}
	return window.New(h.state).Snapshot().Max
}

// GetMinDuration returns h's current minimum duration, or 0 for a null
// handle or an empty window.
func (f *Facade) GetMinDuration(h Handle) uint64 {
	if !h.valid() {
		return 0
	}
	return window.New(h.state).Snapshot().Min
}

// Names lists every name currently registered in the attached Region, for
// diagnostics. Returns nil if the Facade was never attached.
func (f *Facade) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registry == nil {
		return nil
	}
	f.region.Lock()
	defer f.region.Unlock()
	return f.registry.Names()
}

// Close releases this Facade's hold on the Region through its own Manager
// (U drops to zero and G is decremented; the Region is destroyed when G
// reaches zero). Safe to call more than once.
func (f *Facade) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.region == nil {
		f.closed = true
		return nil
	}
	f.closed = true
	f.logger.Info("statblock: detaching", "instance", f.instance)
	return f.mgr.Release()
}

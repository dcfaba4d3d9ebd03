// Package lifecycle implements the two-level reference-counting protocol
// that binds Facade instances in this process to a shared Region: a
// process-local user count U, and a per-Region attacher count G stored
// inside the shared segment itself. Grounded on the teacher's
// pkg/service.Service constructor/shutdown pairing (functional-options
// construction, explicit Close), generalized from one HTTP server's
// lifecycle to a count of attachers that must agree on when to tear the
// Region down.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/obsidian-metrics/statblock/pkg/registry"
	"github.com/obsidian-metrics/statblock/pkg/shmem"
)

// ErrRegionAttach is returned by Acquire when the backing Region cannot be
// opened or created. Facade callers treat this the same as a nil handle:
// every subsequent operation silently no-ops.
var ErrRegionAttach = fmt.Errorf("lifecycle: region attach failed")

// Manager tracks U (the number of Acquire calls not yet released on this
// Manager) and the single shared Region it attaches to. There is no
// package-level Manager: callers construct one explicitly. statblock.New
// constructs a separate Manager for every Facade, so Facades do not share
// one, and each attached Manager counts once in G.
type Manager struct {
	mu       sync.Mutex
	cfg      shmem.Config
	users    int
	region   *shmem.Region
	registry *registry.Registry
	maxNames int
}

// New returns an unattached Manager bound to cfg. maxNames sizes the
// Registry's fixed entry table; cfg.Reserved must be at least
// registry.ReservedBytes(maxNames).
func New(cfg shmem.Config, maxNames int) *Manager {
	return &Manager{cfg: cfg, maxNames: maxNames}
}

// Acquire increments U. On the first acquisition in this process it also
// attaches (creating if absent) the shared Region and increments G. It
// returns the live Region and Registry, or ErrRegionAttach if the Region
// could not be opened — in which case U is left unchanged and the Facade
// must treat every subsequent call as a no-op.
func (m *Manager) Acquire() (*shmem.Region, *registry.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users > 0 {
		m.users++
		return m.region, m.registry, nil
	}

	r, err := shmem.Attach(m.cfg)
	if err != nil {
		return nil, nil, ErrRegionAttach
	}

	r.Lock()
	r.SetRefCount(r.RefCount() + 1)
	r.Unlock()

	m.region = r
	m.registry = registry.Open(r, m.maxNames)
	m.users = 1
	return m.region, m.registry, nil
}

// Release decrements U. If this was the last user in the process, it
// decrements G; if G reaches zero, it destroys the Region (unlinking the
// backing segment and closing its named mutex) rather than merely detaching.
//
// The named mutex serializes both halves of this decision across every
// attached process, so there is no window in which two processes both
// observe G==1 and both attempt to destroy, nor one in which a process
// decrements G to 0 while another is mid-acquire — acquire and release
// both hold the same Region.Lock while touching G.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users == 0 {
		return nil
	}

	m.users--
	if m.users > 0 {
		return nil
	}

	r := m.region
	m.region = nil
	m.registry = nil

	r.Lock()
	remaining := r.RefCount() - 1
	r.SetRefCount(remaining)
	r.Unlock()

	if remaining > 0 {
		return r.Close()
	}
	return r.Destroy()
}

// Attached reports whether this process currently holds at least one user.
func (m *Manager) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users > 0
}

// Users returns U, the current process-local user count. Exposed for
// tests and diagnostics only.
func (m *Manager) Users() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users
}

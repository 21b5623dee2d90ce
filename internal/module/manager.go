// Package module implements the hot-swap module registry (spec §5):
// publish replaces a module's bytecode without stopping in-flight
// handler calls against the version being replaced, and reclamation
// of a superseded version is deferred until it goes quiescent.
//
// Grounded on the teacher repo's internal/module ModuleLoader
// mutex-guarded cache idiom, generalized with the pending-reclaim
// list original_source/src/module_manager.cc keeps for versions that
// are superseded but still have ActiveCalls > 0.
package module

import (
	"sync"

	"github.com/google/uuid"

	"mondot/internal/bytecode"
)

// Manager owns the live module registry: one published bytecode.Module
// per name, plus a list of superseded versions still draining.
type Manager struct {
	mu      sync.Mutex
	modules map[string]*bytecode.Module

	pendingMu sync.Mutex
	pending   []*bytecode.Module

	// onPublish, when set, is notified after every successful publish —
	// the module manager's only hook for the live-reload broadcaster
	// (spec §9). Nil-safe: a manager with no listener behaves exactly
	// as one with an empty handler.
	onPublish func(name, version string, republish bool)
}

func New() *Manager {
	return &Manager{modules: make(map[string]*bytecode.Module)}
}

// OnPublish registers the sole publish listener. Passing nil clears it.
func (m *Manager) OnPublish(fn func(name, version string, republish bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPublish = fn
}

// Publish installs mod as the current version for its name. If a
// module of that name already exists, it is superseded: callers
// already inside one of its frames keep running against it (they hold
// the *bytecode.Module pointer returned by an earlier Get), and it
// moves to the pending-reclaim list instead of being dropped
// immediately. Publish stamps a fresh version and reports whether this
// is an initial publish or a republish, which the lifecycle driver
// uses to choose between Init and Reload (spec §5).
func (m *Manager) Publish(mod *bytecode.Module) (version string, republish bool) {
	mod.Version = uuid.NewString()

	m.mu.Lock()
	prev, existed := m.modules[mod.Name]
	m.modules[mod.Name] = mod
	listener := m.onPublish
	m.mu.Unlock()

	if existed && prev != mod {
		m.pendingMu.Lock()
		m.pending = append(m.pending, prev)
		m.pendingMu.Unlock()
	}

	if listener != nil {
		listener(mod.Name, mod.Version, existed)
	}
	return mod.Version, existed
}

// Get returns the currently published module for name, or nil if none
// has ever been published. The returned pointer remains valid and
// independently usable even across a later Publish: superseded
// modules are retired by TickReclaim, never mutated or freed out from
// under an in-flight caller.
func (m *Manager) Get(name string) *bytecode.Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modules[name]
}

// Names returns the currently published module names.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.modules))
	for n := range m.modules {
		names = append(names, n)
	}
	return names
}

// TickReclaim sweeps the pending-reclaim list once, dropping every
// module that has gone quiescent (ActiveCalls == 0) and keeping the
// rest for a later tick. It never blocks waiting for a module to
// drain — that is the "cooperative, non-blocking" contract of spec §5.
// It returns the number of modules reclaimed this tick.
func (m *Manager) TickReclaim() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	kept := m.pending[:0]
	reclaimed := 0
	for _, mod := range m.pending {
		if mod.Quiescent() {
			reclaimed++
			continue
		}
		kept = append(kept, mod)
	}
	m.pending = kept
	return reclaimed
}

// PendingCount reports how many superseded modules are still awaiting
// reclamation. Exposed for tests and diagnostics.
func (m *Manager) PendingCount() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return len(m.pending)
}

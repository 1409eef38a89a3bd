// Package appbar tracks the shell's AppBar auto-hide setting so it can be
// forced on while the taskbar is hidden and put back afterwards.
package appbar

import "sync"

// AutoHide is ABS_AUTOHIDE.
const AutoHide uint32 = 0x1

// Store reads and writes the system-wide AppBar state.
type Store interface {
	Get() uint32
	Set(state uint32)
}

// Manager remembers the AppBar state found at startup and switches between
// it and the same state with auto-hide forced on.
type Manager struct {
	store    Store
	original uint32
	enforced uint32

	mu    sync.Mutex
	dirty bool
}

// New captures the current state and, when auto-hide is off, turns it on.
// Callers must defer Close so the original state survives every exit path.
func New(store Store) *Manager {
	original := store.Get()
	m := &Manager{
		store:    store,
		original: original,
		enforced: original | AutoHide,
		dirty:    true,
	}
	if m.enforced != original {
		store.Set(m.enforced)
	}
	return m
}

// Original is the state captured by New.
func (m *Manager) Original() uint32 { return m.original }

// Enforced is the original state with auto-hide set.
func (m *Manager) Enforced() uint32 { return m.enforced }

// Enforce writes the auto-hide state.
func (m *Manager) Enforce() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Set(m.enforced)
	m.dirty = true
}

// Restore writes the original state.
func (m *Manager) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked()
}

func (m *Manager) restoreLocked() {
	m.store.Set(m.original)
	m.dirty = false
}

// Close restores the original state unless the last write already did.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty {
		m.restoreLocked()
	}
	return nil
}

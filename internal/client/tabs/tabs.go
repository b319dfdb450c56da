// Package tabs tracks the client detail views open in a session.
package tabs

import (
	"slices"
	"sync"
)

// Main is the id of the overview, which is always present and cannot be
// closed.
const Main = ""

// Tab is one open client detail view.
type Tab struct {
	ClientID   string
	ClientName string
}

// Manager keeps open tabs in the order they were opened and remembers
// which view is active. The zero value is ready to use.
type Manager struct {
	mu     sync.Mutex
	tabs   []Tab
	active string
}

func New() *Manager {
	return &Manager{}
}

// Open adds a tab for the client unless one exists, and activates it.
func (m *Manager) Open(clientID, clientName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(clientID) < 0 {
		m.tabs = append(m.tabs, Tab{ClientID: clientID, ClientName: clientName})
	}
	m.active = clientID
}

// Close removes the client's tab if present. Closing the active tab makes
// the overview active.
func (m *Manager) Close(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(clientID)
	if i < 0 {
		return
	}
	m.tabs = slices.Delete(m.tabs, i, i+1)
	if m.active == clientID {
		m.active = Main
	}
}

// Rename updates the label of an open tab in place.
func (m *Manager) Rename(clientID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(clientID); i >= 0 {
		m.tabs[i].ClientName = name
	}
}

// List returns the open tabs in display order.
func (m *Manager) List() []Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tabs)
}

func (m *Manager) Has(clientID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(clientID) >= 0
}

// Active returns the id of the active tab, or Main.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Activate switches to an open tab or to Main. It reports false for a
// client that has no open tab.
func (m *Manager) Activate(clientID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if clientID != Main && m.indexOf(clientID) < 0 {
		return false
	}
	m.active = clientID
	return true
}

// Reset closes every tab.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs = nil
	m.active = Main
}

func (m *Manager) indexOf(clientID string) int {
	return slices.IndexFunc(m.tabs, func(t Tab) bool { return t.ClientID == clientID })
}

package calculator

import (
	"slices"
	"sync"

	"github.com/ayusman/ganita/internal/gesture"
)

// Machine holds the calculator state for the life of the process. The frame
// loop dispatches into it; other goroutines may read snapshots.
type Machine struct {
	mu    sync.RWMutex
	state State
}

// NewMachine creates a Machine in the cleared state.
func NewMachine() *Machine {
	return &Machine{}
}

// Dispatch applies an accepted gesture.
func (m *Machine) Dispatch(label gesture.Label) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, out := Apply(m.state, label)
	m.state = next
	return out
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	s.History = slices.Clone(m.state.History)
	return s
}

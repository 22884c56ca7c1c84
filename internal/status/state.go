package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nidaan/mentorchat/internal/bus"
)

// State represents the push-channel connection state. Degraded means the
// channel is down but the client keeps working via fetch-on-select.
type State string

const (
	Booting    State = "BOOTING"
	LoggedOut  State = "LOGGED_OUT"
	Connecting State = "CONNECTING"
	Connected  State = "CONNECTED"
	Degraded   State = "DEGRADED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Booting:    {LoggedOut, Connecting},
	LoggedOut:  {Connecting},
	Connecting: {Connected, Degraded, LoggedOut},
	Connected:  {Degraded, LoggedOut},
	Degraded:   {Connecting, Connected, LoggedOut},
}

// Machine tracks and enforces connection state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.New(bus.KindConnStatus, Change{From: from, To: to}))
	}
	return nil
}

// Change is the payload for status change events.
type Change struct {
	From State
	To   State
}

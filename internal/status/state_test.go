package status

import (
	"testing"

	"github.com/nidaan/mentorchat/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, LoggedOut},
		{Booting, Connecting},
		{LoggedOut, Connecting},
		{Connecting, Connected},
		{Connecting, Degraded},
		{Connected, Degraded},
		{Degraded, Connecting},
		{Connected, LoggedOut},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Connected); err == nil {
		t.Error("Transition(BOOTING -> CONNECTED) should fail")
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.NewBus()
	ch, cancel := b.Subscribe("conn.", 10)
	defer cancel()

	m := NewMachine(b)
	if err := m.Transition(LoggedOut); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindConnStatus {
		t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindConnStatus)
	}
	change, ok := evt.Payload.(Change)
	if !ok {
		t.Fatalf("payload type = %T, want Change", evt.Payload)
	}
	if change.From != Booting || change.To != LoggedOut {
		t.Errorf("change = %v -> %v, want BOOTING -> LOGGED_OUT", change.From, change.To)
	}
}

// TestDegradeIsNotTerminal verifies the poll-only degrade path can recover:
// CONNECTED -> DEGRADED -> CONNECTING -> CONNECTED.
func TestDegradeIsNotTerminal(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connected)

	steps := []State{Degraded, Connecting, Connected}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Connected {
		t.Errorf("final state = %s, want CONNECTED", m.Current())
	}
}

// TestIdentitySwitchLifecycle simulates logout then login:
// CONNECTED -> LOGGED_OUT -> CONNECTING -> CONNECTED.
func TestIdentitySwitchLifecycle(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connected)

	steps := []State{LoggedOut, Connecting, Connected}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:    {},
		LoggedOut:  {LoggedOut},
		Connecting: {Connecting},
		Connected:  {Connecting, Connected},
		Degraded:   {Connecting, Degraded},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}

package lifecycle

import "testing"

func TestMachineOnDemandTransitions(t *testing.T) {
	m := NewMachine(true)

	if m.State() != Paused || m.Consumers() != 0 {
		t.Fatalf("initial state = %v consumers=%d, want paused with 0", m.State(), m.Consumers())
	}

	if changed := m.Apply([]Event{EventOpen}); !changed {
		t.Error("Apply(open) should report a state change")
	}
	if m.State() != Active || m.Consumers() != 1 {
		t.Fatalf("after open: state = %v consumers=%d, want active with 1", m.State(), m.Consumers())
	}

	if changed := m.Apply([]Event{EventCloseNoWrite}); !changed {
		t.Error("Apply(close) should report a state change")
	}
	if m.State() != Paused || m.Consumers() != 0 {
		t.Fatalf("after close: state = %v consumers=%d, want paused with 0", m.State(), m.Consumers())
	}

	// A second close without a matching open must not drive the count
	// below zero.
	m.Apply([]Event{EventCloseWrite})
	if m.Consumers() != 0 {
		t.Errorf("consumers = %d after unmatched close, want clamped 0", m.Consumers())
	}
	if m.State() != Paused {
		t.Errorf("state = %v after unmatched close, want paused", m.State())
	}
}

func TestMachineBatchResolution(t *testing.T) {
	tests := []struct {
		name          string
		events        []Event
		wantState     State
		wantConsumers int
	}{
		{"open then close in one batch", []Event{EventOpen, EventCloseNoWrite}, Paused, 0},
		{"two opens one close", []Event{EventOpen, EventOpen, EventCloseWrite}, Active, 1},
		{"create alone is inert", []Event{EventCreate}, Paused, 0},
		{"closes clamp within batch", []Event{EventCloseWrite, EventCloseNoWrite, EventOpen}, Active, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(true)
			m.Apply(tt.events)
			if m.State() != tt.wantState {
				t.Errorf("state = %v, want %v", m.State(), tt.wantState)
			}
			if m.Consumers() != tt.wantConsumers {
				t.Errorf("consumers = %d, want %d", m.Consumers(), tt.wantConsumers)
			}
		})
	}
}

func TestMachineOnDemandDisabled(t *testing.T) {
	m := NewMachine(false)

	if m.State() != Active {
		t.Fatalf("state = %v with on-demand disabled, want permanently active", m.State())
	}
	if changed := m.Apply([]Event{EventCloseWrite, EventCloseWrite}); changed {
		t.Error("Apply() should be inert with on-demand disabled")
	}
	if m.State() != Active {
		t.Errorf("state = %v after events, want active", m.State())
	}
}

func TestMachineToggle(t *testing.T) {
	m := NewMachine(false)

	if got := m.Toggle(); got != Paused {
		t.Errorf("Toggle() = %v, want paused", got)
	}
	if got := m.Toggle(); got != Active {
		t.Errorf("Toggle() = %v, want active", got)
	}

	// Toggle is unconditional: it pauses even with consumers present.
	m2 := NewMachine(true)
	m2.Apply([]Event{EventOpen})
	if got := m2.Toggle(); got != Paused {
		t.Errorf("Toggle() with consumers = %v, want paused", got)
	}
}

// Package lifecycle tracks readers of the output device and decides when
// the pipeline should capture or idle.
package lifecycle

// State of the pipeline.
type State int

const (
	Active State = iota
	Paused
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "paused"
}

// Event is a device-level observation on the output path.
type Event int

const (
	// EventOpen means a consumer opened the output device.
	EventOpen Event = iota
	// EventCloseNoWrite and EventCloseWrite both mean a consumer went
	// away; the distinction only exists at the inotify level.
	EventCloseNoWrite
	EventCloseWrite
	// EventCreate is reported by the watcher but carries no meaning
	// for consumer counting.
	EventCreate
)

// Machine unifies the two pause sources, consumer-driven (on-demand) and
// manual toggling, over one Active/Paused state. With on-demand disabled
// the machine is permanently Active and events are ignored.
type Machine struct {
	onDemand  bool
	consumers int
	state     State
}

// NewMachine creates the state machine. With on-demand enabled the
// pipeline starts Paused and waits for a first consumer.
func NewMachine(onDemand bool) *Machine {
	m := &Machine{onDemand: onDemand}
	if onDemand {
		m.state = Paused
	}
	return m
}

// Apply folds a drained batch of device events into the consumer count
// and resolves the resulting state. It reports whether the state changed,
// so the caller can reload assets and release or reacquire the camera on
// the transition edge.
func (m *Machine) Apply(events []Event) (changed bool) {
	if !m.onDemand || len(events) == 0 {
		return false
	}
	for _, ev := range events {
		switch ev {
		case EventOpen:
			m.consumers++
		case EventCloseNoWrite, EventCloseWrite:
			if m.consumers > 0 {
				m.consumers--
			}
		}
	}

	prev := m.state
	if m.consumers > 0 {
		m.state = Active
	} else {
		m.consumers = 0
		m.state = Paused
	}
	return m.state != prev
}

// Toggle unconditionally flips Active and Paused, independent of the
// consumer count. Used for interactive pause.
func (m *Machine) Toggle() State {
	if m.state == Active {
		m.state = Paused
	} else {
		m.state = Active
	}
	return m.state
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Consumers returns the current consumer count.
func (m *Machine) Consumers() int { return m.consumers }

// OnDemand reports whether consumer tracking is enabled.
func (m *Machine) OnDemand() bool { return m.onDemand }

package status

import (
	"sync/atomic"
	"time"

	"github.com/enetx/g"

	"github.com/CluelessD3v/Status/signal"
)

// stateCounter names anonymous states. It is process-wide and never reset,
// so generated names stay unique across machines.
var stateCounter atomic.Uint64

// NewState creates a state from info. A missing name is replaced by the next
// value of a process-wide counter. info.Enter and info.Exit are pinned to the
// state's Entered and Exited signals here, once; DisconnectAll on either signal
// leaves them bound.
func NewState[E comparable](info StateInfo[E]) *State[E] {
	s := &State[E]{
		name:     info.Name,
		onEnter:  info.Enter,
		onExit:   info.Exit,
		onUpdate: info.Update,
		entered:  signal.New[Notice[E]](),
		exited:   signal.New[Notice[E]](),
		valid:    true,
	}

	if s.name == "" {
		s.name = g.Int(stateCounter.Add(1)).String().Std()
	}

	if s.onEnter == nil {
		s.onEnter = func(E, *Machine[E]) {}
	}

	if s.onExit == nil {
		s.onExit = func(E, *Machine[E]) {}
	}

	if s.onUpdate == nil {
		s.onUpdate = func(E, *Machine[E], time.Duration) {}
	}

	s.entered.Pin(func(n Notice[E]) { s.onEnter(n.Entity, n.Machine) })
	s.exited.Pin(func(n Notice[E]) { s.onExit(n.Entity, n.Machine) })

	return s
}

// Name returns the state's registry key.
func (s *State[E]) Name() string { return s.name }

// String implements fmt.Stringer.
func (s *State[E]) String() string { return s.name }

// Valid reports whether s was built by NewState. Machines silently ignore
// invalid states.
func (s *State[E]) Valid() bool { return s != nil && s.valid }

// Entered fires after an entity becomes current in this state.
func (s *State[E]) Entered() *signal.Signal[Notice[E]] { return s.entered }

// Exited fires when an entity leaves this state or is stopped in it.
func (s *State[E]) Exited() *signal.Signal[Notice[E]] { return s.exited }

func (s *State[E]) update(entity E, m *Machine[E], dt time.Duration) {
	s.onUpdate(entity, m, dt)
}

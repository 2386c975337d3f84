package status

import (
	"log/slog"
	"sync"
	"time"

	"github.com/enetx/g"

	"github.com/CluelessD3v/Status/signal"
)

type (
	// Callback is a function called when an entity enters or exits a state.
	Callback[E comparable] func(entity E, m *Machine[E])
	// UpdateFunc is a function called once per Update for every active entity in a state.
	UpdateFunc[E comparable] func(entity E, m *Machine[E], dt time.Duration)

	// StateInfo configures NewState. Every field is optional.
	StateInfo[E comparable] struct {
		Name   string
		Enter  Callback[E]
		Exit   Callback[E]
		Update UpdateFunc[E]
	}

	// CreationInfo configures New. Every field is optional.
	CreationInfo[E comparable] struct {
		Entities     []E
		States       []*State[E]
		InitialState *State[E]
	}

	// Notice is the payload of a state's Entered and Exited signals.
	Notice[E comparable] struct {
		Entity  E
		Machine *Machine[E]
		State   *State[E]
	}

	// EntityEvent is the payload of the EntityAdded signal.
	EntityEvent[E comparable] struct {
		Entity E
		State  *State[E]
	}

	// StateChange is the payload of the StateChanged signal.
	StateChange[E comparable] struct {
		Entity E
		New    *State[E]
		Old    *State[E]
	}

	// State is a named behavior mode shared by every entity placed in it.
	// A State is immutable after NewState returns.
	State[E comparable] struct {
		name     string
		onEnter  Callback[E]
		onExit   Callback[E]
		onUpdate UpdateFunc[E]
		entered  *signal.Signal[Notice[E]]
		exited   *signal.Signal[Notice[E]]
		valid    bool
	}

	// Name refers to a registered state by its name. It is one of the two
	// StateRef variants, the other being *State[E].
	Name string

	// StateRef is either a Name or a *State[E].
	StateRef interface {
		stateRef()
	}

	// edge is an observed transition between two named states.
	edge = g.Pair[string, string]

	// Machine tracks which state each registered entity is in and which
	// entities are active. A Machine is not safe for concurrent use; see SyncMachine.
	Machine[E comparable] struct {
		initial     *State[E]
		entityState g.Map[E, *State[E]]
		active      g.Set[E]
		states      g.Map[string, *State[E]]
		transitions g.Map[edge, int]

		logger      *slog.Logger
		strictNames bool

		entityAdded   *signal.Signal[EntityEvent[E]]
		entityRemoved *signal.Signal[E]
		entityStarted *signal.Signal[E]
		entityStopped *signal.Signal[E]
		stateAdded    *signal.Signal[*State[E]]
		stateRemoved  *signal.Signal[*State[E]]
		started       *signal.Signal[*Machine[E]]
		stopped       *signal.Signal[*Machine[E]]
		stateChanged  *signal.Signal[StateChange[E]]
	}

	// SyncMachine is a thread-safe wrapper around a Machine.
	// It protects all state-mutating and state-reading operations with a sync.RWMutex,
	// making it safe for use across multiple goroutines.
	// Callbacks still receive the wrapped *Machine and may call it inline.
	SyncMachine[E comparable] struct {
		m  *Machine[E]
		mu sync.RWMutex
	}
)

func (Name) stateRef()      {}
func (*State[E]) stateRef() {}

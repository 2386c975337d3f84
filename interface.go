package status

import (
	"time"

	"github.com/enetx/g"
)

// StateMachine is the lifecycle, transition and query surface shared by Machine
// and SyncMachine. Registration methods are left out because each type returns
// itself from them for chaining.
type StateMachine[E comparable] interface {
	RemoveState(StateRef) error
	StartEntity(E, ...StateRef) error
	StopEntity(E) error
	Start(...StateRef) error
	Stop() error
	ChangeState(E, StateRef) error
	Update(time.Duration)
	CurrentState(E) g.Option[*State[E]]
	States() g.Map[string, *State[E]]
	IsRegistered(E) bool
	IsActive(E) bool
	ToDOT() g.String
	MarshalJSON() ([]byte, error)
}

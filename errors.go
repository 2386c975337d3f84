package status

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned when an operation needs an entity that was never
// added with AddEntity, or that has since been removed.
type ErrNotRegistered struct {
	Entity any
}

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("status: entity %v is not registered", e.Entity)
}

// ErrAlreadyActive is returned by StartEntity for an entity that is already started.
type ErrAlreadyActive struct {
	Entity any
}

func (e *ErrAlreadyActive) Error() string {
	return fmt.Sprintf("status: entity %v is already active", e.Entity)
}

// ErrAlreadyInactive is returned by StopEntity for a registered entity that is not started.
type ErrAlreadyInactive struct {
	Entity any
}

func (e *ErrAlreadyInactive) Error() string {
	return fmt.Sprintf("status: entity %v is already inactive", e.Entity)
}

// ErrNotActive is returned by ChangeState when the entity is no longer active
// once its current state has been exited, either because it was never started
// or because an exit handler stopped or removed it. The new state is not entered.
type ErrNotActive struct {
	Entity any
	From   string
	To     string
}

func (e *ErrNotActive) Error() string {
	return fmt.Sprintf("status: transition of entity %v from %q to %q interrupted; entity is not active",
		e.Entity, e.From, e.To)
}

// ErrUnknownState is returned when a StateRef does not resolve against the
// machine's registry.
type ErrUnknownState struct {
	Ref StateRef
}

func (e *ErrUnknownState) Error() string {
	switch r := e.Ref.(type) {
	case Name:
		return fmt.Sprintf("status: unknown state %q", string(r))
	case nil:
		return "status: unknown state <nil>"
	default:
		return fmt.Sprintf("status: state %v is not registered", r)
	}
}

// ErrStateInUse is returned by RemoveState for the initial state or for a state
// that is still current for a registered entity.
type ErrStateInUse struct {
	State    string
	Entities int
	Initial  bool
}

func (e *ErrStateInUse) Error() string {
	if e.Initial {
		return fmt.Sprintf("status: state %q is the initial state", e.State)
	}

	return fmt.Sprintf("status: state %q is current for %d entities", e.State, e.Entities)
}

// ErrDuplicateState is reported by AddState when WithStrictStateNames is set and a
// different state with the same name is already registered.
type ErrDuplicateState struct {
	Name string
}

func (e *ErrDuplicateState) Error() string {
	return fmt.Sprintf("status: a different state named %q is already registered", e.Name)
}

// IsNotRegistered reports whether err is or wraps an *ErrNotRegistered.
func IsNotRegistered(err error) bool {
	var target *ErrNotRegistered
	return errors.As(err, &target)
}

// IsUnknownState reports whether err is or wraps an *ErrUnknownState.
func IsUnknownState(err error) bool {
	var target *ErrUnknownState
	return errors.As(err, &target)
}

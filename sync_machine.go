package status

import (
	"time"

	"github.com/enetx/g"
)

// Interface compliance checks.
var (
	_ StateMachine[int] = (*Machine[int])(nil)
	_ StateMachine[int] = (*SyncMachine[int])(nil)
)

// Unwrap returns the wrapped machine. Calls made on it bypass the lock.
func (sm *SyncMachine[E]) Unwrap() *Machine[E] { return sm.m }

// AddEntity is the thread-safe version of Machine.AddEntity.
func (sm *SyncMachine[E]) AddEntity(entity E, initial ...*State[E]) *SyncMachine[E] {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.AddEntity(entity, initial...)
	return sm
}

// RemoveEntity is the thread-safe version of Machine.RemoveEntity.
func (sm *SyncMachine[E]) RemoveEntity(entity E) *SyncMachine[E] {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.RemoveEntity(entity)
	return sm
}

// AddState is the thread-safe version of Machine.AddState.
func (sm *SyncMachine[E]) AddState(s *State[E]) *SyncMachine[E] {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.AddState(s)
	return sm
}

// RemoveState is the thread-safe version of Machine.RemoveState.
func (sm *SyncMachine[E]) RemoveState(ref StateRef) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.RemoveState(ref)
}

// StartEntity is the thread-safe version of Machine.StartEntity.
// Signals fire while the lock is held.
func (sm *SyncMachine[E]) StartEntity(entity E, startIn ...StateRef) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.StartEntity(entity, startIn...)
}

// StopEntity is the thread-safe version of Machine.StopEntity.
func (sm *SyncMachine[E]) StopEntity(entity E) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.StopEntity(entity)
}

// Start is the thread-safe version of Machine.Start.
func (sm *SyncMachine[E]) Start(startIn ...StateRef) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Start(startIn...)
}

// Stop is the thread-safe version of Machine.Stop.
func (sm *SyncMachine[E]) Stop() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Stop()
}

// ChangeState is the thread-safe version of Machine.ChangeState.
func (sm *SyncMachine[E]) ChangeState(entity E, to StateRef) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.ChangeState(entity, to)
}

// Update is the thread-safe version of Machine.Update.
// The lock is held for the whole pass.
func (sm *SyncMachine[E]) Update(dt time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.m.Update(dt)
}

// CurrentState is the thread-safe version of Machine.CurrentState.
func (sm *SyncMachine[E]) CurrentState(entity E) g.Option[*State[E]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.CurrentState(entity)
}

// States is the thread-safe version of Machine.States.
func (sm *SyncMachine[E]) States() g.Map[string, *State[E]] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.States()
}

// IsRegistered is the thread-safe version of Machine.IsRegistered.
func (sm *SyncMachine[E]) IsRegistered(entity E) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.IsRegistered(entity)
}

// IsActive is the thread-safe version of Machine.IsActive.
func (sm *SyncMachine[E]) IsActive(entity E) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.IsActive(entity)
}

// ToDOT is the thread-safe version of Machine.ToDOT.
func (sm *SyncMachine[E]) ToDOT() g.String {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.ToDOT()
}

// MarshalJSON implements the json.Marshaler interface for thread-safe
// snapshots of the machine.
func (sm *SyncMachine[E]) MarshalJSON() ([]byte, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.MarshalJSON()
}

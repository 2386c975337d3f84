// Package status provides a finite state machine that tracks many independent
// entities under one shared set of named, flat states. Entities are opaque
// comparable handles owned by the host. Transitions are announced through each
// state's Entered and Exited signals, to which the state's own callbacks are
// bound, so external listeners and the state itself observe the same sequence.
// It is built with types and utilities from the github.com/enetx/g library.
package status

import (
	"errors"
	"log/slog"
	"time"

	"github.com/enetx/g"

	"github.com/CluelessD3v/Status/signal"
)

// DefaultStateName names the state New creates when no usable state is supplied.
const DefaultStateName = "default"

// New creates a machine from info. Invalid entries in info.States are dropped.
// The initial state is info.InitialState when valid, else the first valid entry
// of info.States, else a no-op state named DefaultStateName. Entities in
// info.Entities are registered in the initial state but not started.
// States sharing a name replace one another in order, and an explicit
// info.InitialState replaces any entry of info.States with its name.
func New[E comparable](info CreationInfo[E], opts ...Option) *Machine[E] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Machine[E]{
		entityState:   g.NewMap[E, *State[E]](),
		active:        g.NewSet[E](),
		states:        g.NewMap[string, *State[E]](),
		transitions:   g.NewMap[edge, int](),
		logger:        cfg.logger,
		strictNames:   cfg.strictNames,
		entityAdded:   signal.New[EntityEvent[E]](),
		entityRemoved: signal.New[E](),
		entityStarted: signal.New[E](),
		entityStopped: signal.New[E](),
		stateAdded:    signal.New[*State[E]](),
		stateRemoved:  signal.New[*State[E]](),
		started:       signal.New[*Machine[E]](),
		stopped:       signal.New[*Machine[E]](),
		stateChanged:  signal.New[StateChange[E]](),
	}

	states := g.NewSlice[*State[E]]()
	for _, s := range info.States {
		if s.Valid() {
			states.Push(s)
		}
	}

	for _, s := range states {
		m.states[s.name] = s
	}

	switch {
	case info.InitialState.Valid():
		m.initial = info.InitialState
		if prev, ok := m.states[m.initial.name]; ok && prev != m.initial {
			m.logger.Debug("status: initial state replaces a state of the same name", "state", m.initial.name)
		}
	case len(states) > 0:
		m.initial = m.states[states[0].name]
	default:
		m.initial = NewState(StateInfo[E]{Name: DefaultStateName})
	}

	m.states[m.initial.name] = m.initial

	var zero E
	for _, e := range info.Entities {
		if e != zero {
			m.entityState[e] = m.initial
		}
	}

	return m
}

// Sync wraps the machine for use from several goroutines.
func (m *Machine[E]) Sync() *SyncMachine[E] {
	return &SyncMachine[E]{m: m}
}

// Resolve looks ref up in the registry. A Name resolves to the state registered
// under it; a *State resolves only if it is the state registered under its name.
func (m *Machine[E]) Resolve(ref StateRef) g.Option[*State[E]] {
	switch r := ref.(type) {
	case Name:
		if s, ok := m.states[string(r)]; ok {
			return g.Some(s)
		}
	case *State[E]:
		if r.Valid() {
			if s, ok := m.states[r.name]; ok && s == r {
				return g.Some(s)
			}
		}
	}

	return g.None[*State[E]]()
}

// AddEntity registers entity in initial, or in the machine's initial state when
// initial is omitted, invalid or not registered. Adding an entity again
// overwrites its current state without any enter or exit notification.
// AddEntity never starts the entity. The zero entity is ignored.
func (m *Machine[E]) AddEntity(entity E, initial ...*State[E]) *Machine[E] {
	var zero E
	if entity == zero {
		return m
	}

	state := m.initial
	if len(initial) > 0 {
		if r := m.Resolve(initial[0]); r.IsSome() {
			state = r.Some()
		} else {
			m.logger.Debug("status: falling back to initial state", "entity", entity, "initial", m.initial.name)
		}
	}

	m.entityState[entity] = state
	m.entityAdded.Fire(EntityEvent[E]{Entity: entity, State: state})

	return m
}

// RemoveEntity forgets entity. It is a no-op apart from the EntityRemoved
// signal when the entity is unknown. No exit notification is fired.
func (m *Machine[E]) RemoveEntity(entity E) *Machine[E] {
	delete(m.active, entity)
	delete(m.entityState, entity)

	m.entityRemoved.Fire(entity)

	return m
}

// AddState registers s under its name. Invalid states are ignored. A different
// state already registered under the same name is replaced, or kept and
// reported when the machine was built WithStrictStateNames. Entities in a
// replaced state, and the initial state itself, move to s without any enter
// or exit notification.
func (m *Machine[E]) AddState(s *State[E]) *Machine[E] {
	if !s.Valid() {
		m.logger.Debug("status: ignoring invalid state")
		return m
	}

	if prev, ok := m.states[s.name]; ok && prev != s && m.strictNames {
		m.logger.Warn("status: state not added", "error", &ErrDuplicateState{Name: s.name})
		return m
	}

	if prev, ok := m.states[s.name]; ok && prev != s {
		m.rebind(prev, s)
	}

	m.states[s.name] = s
	m.stateAdded.Fire(s)

	return m
}

// RemoveState unregisters the state ref points to. The initial state and states
// that are current for a registered entity cannot be removed.
func (m *Machine[E]) RemoveState(ref StateRef) error {
	r := m.Resolve(ref)
	if r.IsNone() {
		return m.report("remove state", &ErrUnknownState{Ref: ref})
	}

	s := r.Some()
	if s == m.initial {
		return m.report("remove state", &ErrStateInUse{State: s.name, Initial: true})
	}

	if n := len(m.EntitiesIn(s)); n > 0 {
		return m.report("remove state", &ErrStateInUse{State: s.name, Entities: n})
	}

	delete(m.states, s.name)
	m.stateRemoved.Fire(s)

	return nil
}

// StartEntity activates a registered entity, optionally moving it to startIn
// first, and fires the current state's Entered signal followed by EntityStarted.
// An unknown startIn or an unregistered entity aborts the call without changes.
// Starting an already active entity deliberately does not re-enter its state:
// it is rejected with ErrAlreadyActive, so Entered never fires twice without an
// Exited between.
func (m *Machine[E]) StartEntity(entity E, startIn ...StateRef) error {
	var target *State[E]
	if len(startIn) > 0 && startIn[0] != nil {
		r := m.Resolve(startIn[0])
		if r.IsNone() {
			return m.report("start entity", &ErrUnknownState{Ref: startIn[0]})
		}
		target = r.Some()
	}

	current, ok := m.entityState[entity]
	if !ok {
		return m.report("start entity", &ErrNotRegistered{Entity: entity})
	}

	if m.active.Contains(entity) {
		return m.report("start entity", &ErrAlreadyActive{Entity: entity})
	}

	if target != nil {
		current = target
		m.entityState[entity] = target
	}

	m.active.Insert(entity)

	current.entered.Fire(Notice[E]{Entity: entity, Machine: m, State: current})
	m.entityStarted.Fire(entity)

	return nil
}

// StopEntity deactivates an active entity and fires its current state's Exited
// signal followed by EntityStopped.
func (m *Machine[E]) StopEntity(entity E) error {
	current, ok := m.entityState[entity]
	if !ok {
		return m.report("stop entity", &ErrNotRegistered{Entity: entity})
	}

	if !m.active.Contains(entity) {
		return m.report("stop entity", &ErrAlreadyInactive{Entity: entity})
	}

	delete(m.active, entity)

	current.exited.Fire(Notice[E]{Entity: entity, Machine: m, State: current})
	m.entityStopped.Fire(entity)

	return nil
}

// Start starts every registered entity that is not already active, passing
// startIn to StartEntity, then fires Started. Per-entity failures are joined.
func (m *Machine[E]) Start(startIn ...StateRef) error {
	var errs []error

	for entity := range m.inactive().Iter() {
		if err := m.StartEntity(entity, startIn...); err != nil {
			errs = append(errs, err)
		}
	}

	m.started.Fire(m)

	return errors.Join(errs...)
}

// Stop stops every active entity, then fires Stopped.
func (m *Machine[E]) Stop() error {
	var errs []error

	for entity := range m.ActiveEntities().Iter() {
		if !m.active.Contains(entity) {
			continue
		}

		if err := m.StopEntity(entity); err != nil {
			errs = append(errs, err)
		}
	}

	m.stopped.Fire(m)

	return errors.Join(errs...)
}

// ChangeState moves entity from its current state to the state ref points to.
// The current state's Exited signal fires first. If the entity is not active
// once Exited returns, the transition stops there and ErrNotActive is returned.
// Otherwise the new state becomes current, its Entered signal fires, and then
// StateChanged fires with the new and old states.
func (m *Machine[E]) ChangeState(entity E, to StateRef) error {
	old, ok := m.entityState[entity]
	if !ok {
		return m.report("change state", &ErrNotRegistered{Entity: entity})
	}

	r := m.Resolve(to)
	if r.IsNone() {
		return m.report("change state", &ErrUnknownState{Ref: to})
	}

	next := r.Some()

	old.exited.Fire(Notice[E]{Entity: entity, Machine: m, State: old})

	if !m.active.Contains(entity) {
		err := &ErrNotActive{Entity: entity, From: old.name, To: next.name}
		m.logger.Debug("status: transition interrupted", "error", err)
		return err
	}

	m.entityState[entity] = next
	m.transitions[edge{Key: old.name, Value: next.name}]++

	next.entered.Fire(Notice[E]{Entity: entity, Machine: m, State: next})
	m.stateChanged.Fire(StateChange[E]{Entity: entity, New: next, Old: old})

	return nil
}

// Update calls the current state's update function once for every active
// entity. The active set is captured when Update begins: entities deactivated
// by an earlier callback in the same pass are skipped, entities activated
// during the pass are first updated by the next call.
func (m *Machine[E]) Update(dt time.Duration) {
	for entity := range m.ActiveEntities().Iter() {
		if !m.active.Contains(entity) {
			continue
		}

		if s, ok := m.entityState[entity]; ok {
			s.update(entity, m, dt)
		}
	}
}

// CurrentState returns the state entity is in, or None when it is not registered.
func (m *Machine[E]) CurrentState(entity E) g.Option[*State[E]] {
	if s, ok := m.entityState[entity]; ok {
		return g.Some(s)
	}

	return g.None[*State[E]]()
}

// States returns a copy of the name to state registry.
func (m *Machine[E]) States() g.Map[string, *State[E]] {
	states := g.NewMap[string, *State[E]]()
	for name, s := range m.states {
		states[name] = s
	}

	return states
}

// InitialState returns the state entities are added in by default.
func (m *Machine[E]) InitialState() *State[E] { return m.initial }

// IsRegistered reports whether entity has a current state.
func (m *Machine[E]) IsRegistered(entity E) bool {
	_, ok := m.entityState[entity]
	return ok
}

// IsActive reports whether entity has been started and not stopped since.
func (m *Machine[E]) IsActive(entity E) bool { return m.active.Contains(entity) }

// Entities returns every registered entity in no particular order.
func (m *Machine[E]) Entities() g.Slice[E] {
	entities := make(g.Slice[E], 0, len(m.entityState))
	for e := range m.entityState {
		entities = append(entities, e)
	}

	return entities
}

// ActiveEntities returns every active entity in no particular order.
func (m *Machine[E]) ActiveEntities() g.Slice[E] {
	entities := make(g.Slice[E], 0, len(m.active))
	for e := range m.active {
		entities = append(entities, e)
	}

	return entities
}

// EntitiesIn returns the registered entities whose current state is the state
// ref resolves to.
func (m *Machine[E]) EntitiesIn(ref StateRef) g.Slice[E] {
	var entities g.Slice[E]

	r := m.Resolve(ref)
	if r.IsNone() {
		return entities
	}

	for e, s := range m.entityState {
		if s == r.Some() {
			entities = append(entities, e)
		}
	}

	return entities
}

// EntityAdded fires after AddEntity with the entity and the state it was placed in.
func (m *Machine[E]) EntityAdded() *signal.Signal[EntityEvent[E]] { return m.entityAdded }

// EntityRemoved fires after RemoveEntity.
func (m *Machine[E]) EntityRemoved() *signal.Signal[E] { return m.entityRemoved }

// EntityStarted fires after StartEntity has fired the state's Entered signal.
func (m *Machine[E]) EntityStarted() *signal.Signal[E] { return m.entityStarted }

// EntityStopped fires after StopEntity has fired the state's Exited signal.
func (m *Machine[E]) EntityStopped() *signal.Signal[E] { return m.entityStopped }

// StateAdded fires after AddState registers a state.
func (m *Machine[E]) StateAdded() *signal.Signal[*State[E]] { return m.stateAdded }

// StateRemoved fires after RemoveState unregisters a state.
func (m *Machine[E]) StateRemoved() *signal.Signal[*State[E]] { return m.stateRemoved }

// Started fires at the end of Start.
func (m *Machine[E]) Started() *signal.Signal[*Machine[E]] { return m.started }

// Stopped fires at the end of Stop.
func (m *Machine[E]) Stopped() *signal.Signal[*Machine[E]] { return m.stopped }

// StateChanged fires at the end of a completed ChangeState.
func (m *Machine[E]) StateChanged() *signal.Signal[StateChange[E]] { return m.stateChanged }

// inactive returns registered entities that are not active.
func (m *Machine[E]) inactive() g.Slice[E] {
	var entities g.Slice[E]
	for e := range m.entityState {
		if !m.active.Contains(e) {
			entities = append(entities, e)
		}
	}

	return entities
}

// rebind points everything that references prev at next.
func (m *Machine[E]) rebind(prev, next *State[E]) {
	for e, s := range m.entityState {
		if s == prev {
			m.entityState[e] = next
		}
	}

	if m.initial == prev {
		m.initial = next
	}
}

func (m *Machine[E]) report(op string, err error) error {
	m.logger.Warn("status: "+op+" aborted", "error", err)
	return err
}

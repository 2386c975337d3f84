package statefile

import (
	"fmt"
	"log/slog"
	"time"

	status "github.com/CluelessD3v/Status"
)

type (
	// Behaviors maps state names to Go callbacks. The Name field of each entry
	// is ignored; the state file decides names.
	Behaviors[E comparable] map[string]status.StateInfo[E]

	// Set is the result of building a state file.
	Set[E comparable] struct {
		States  []*status.State[E]
		Initial *status.State[E]
	}

	// Option configures Build.
	Option func(*buildConfig)

	buildConfig struct {
		logger *slog.Logger
	}
)

// WithLogger sets the logger receiving script failures and fsm.log output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Build creates one state per entry of f. Go callbacks come from behaviors by
// name; a state with a script runs its Go callback first and then the matching
// script hook.
func Build[E comparable](f *File, behaviors Behaviors[E], opts ...Option) (*Set[E], error) {
	if f == nil {
		return nil, fmt.Errorf("statefile: nil file")
	}

	cfg := buildConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	set := &Set[E]{States: make([]*status.State[E], 0, len(f.States))}

	for _, spec := range f.States {
		info := behaviors[spec.Name]
		info.Name = spec.Name

		src, err := f.source(spec)
		if err != nil {
			return nil, err
		}

		if src != "" {
			sc, err := compileScript(spec.Name, src, cfg.logger)
			if err != nil {
				return nil, err
			}

			info = scripted(info, sc)
		}

		s := status.NewState(info)
		set.States = append(set.States, s)

		if spec.Name == f.Initial {
			set.Initial = s
		}
	}

	return set, nil
}

func scripted[E comparable](info status.StateInfo[E], sc *script) status.StateInfo[E] {
	enter, exit, update := info.Enter, info.Exit, info.Update

	info.Enter = func(entity E, m *status.Machine[E]) {
		if enter != nil {
			enter(entity, m)
		}

		run(sc, PhaseEnter, entity, m, 0)
	}

	info.Exit = func(entity E, m *status.Machine[E]) {
		if exit != nil {
			exit(entity, m)
		}

		run(sc, PhaseExit, entity, m, 0)
	}

	info.Update = func(entity E, m *status.Machine[E], dt time.Duration) {
		if update != nil {
			update(entity, m, dt)
		}

		run(sc, PhaseUpdate, entity, m, dt)
	}

	return info
}

// CreationInfo returns the options for status.New with entities registered in
// the set's initial state.
func (s *Set[E]) CreationInfo(entities ...E) status.CreationInfo[E] {
	return status.CreationInfo[E]{
		Entities:     entities,
		States:       s.States,
		InitialState: s.Initial,
	}
}

// Apply registers every state of set on m, replacing states of the same name.
// Entities in a replaced state move to the new one without enter or exit, so
// they run its behavior from their next update. Machines built
// WithStrictStateNames keep their existing states.
func Apply[E comparable](m *status.Machine[E], set *Set[E]) {
	for _, s := range set.States {
		m.AddState(s)
	}
}

// Reload loads the state file at path, builds it and applies it to m.
func Reload[E comparable](m *status.Machine[E], path string, behaviors Behaviors[E], opts ...Option) error {
	f, err := Load(path)
	if err != nil {
		return err
	}

	set, err := Build(f, behaviors, opts...)
	if err != nil {
		return err
	}

	Apply(m, set)

	return nil
}

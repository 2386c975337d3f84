package statefile

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	status "github.com/CluelessD3v/Status"
)

// Script phases, also the names of the hook functions a script may define.
const (
	PhaseEnter  = "enter"
	PhaseExit   = "exit"
	PhaseUpdate = "update"
)

// ErrScript wraps a failure raised while running a state's script.
type ErrScript struct {
	State string
	Phase string
	Err   error
}

func (e *ErrScript) Error() string {
	return fmt.Sprintf("statefile: script %s hook of state %q: %v", e.Phase, e.State, e.Err)
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *ErrScript) Unwrap() error { return e.Err }

// script runs the hooks of one state. The user source is compiled together
// with a dispatch snippet that calls the hook named by __phase; only hooks the
// source actually defines are dispatched.
type script struct {
	state    string
	compiled *tengo.Compiled
	hooks    map[string]bool
	logger   *slog.Logger
}

// request collects what a hook asked the machine to do. It is applied after
// the hook returns so a script never re-enters its own VM.
type request struct {
	target string
	stop   bool
}

func compileScript(state, src string, logger *slog.Logger) (*script, error) {
	hooks, err := probeHooks(src)
	if err != nil {
		return nil, &ErrScript{State: state, Phase: "compile", Err: err}
	}

	var dispatch strings.Builder
	dispatch.WriteString(src)
	dispatch.WriteString("\n")

	if hooks[PhaseEnter] {
		dispatch.WriteString("if __phase == \"enter\" { enter(__entity) }\n")
	}

	if hooks[PhaseExit] {
		dispatch.WriteString("if __phase == \"exit\" { exit(__entity) }\n")
	}

	if hooks[PhaseUpdate] {
		dispatch.WriteString("if __phase == \"update\" { update(__entity, __dt) }\n")
	}

	s := newScript(dispatch.String())
	_ = s.Add("__phase", "")
	_ = s.Add("__entity", nil)
	_ = s.Add("__dt", 0.0)

	compiled, err := s.Compile()
	if err != nil {
		return nil, &ErrScript{State: state, Phase: "compile", Err: err}
	}

	return &script{state: state, compiled: compiled, hooks: hooks, logger: logger}, nil
}

// probeHooks runs the top level of src once and reports which hooks it defines.
func probeHooks(src string) (map[string]bool, error) {
	compiled, err := newScript(src).Compile()
	if err != nil {
		return nil, err
	}

	if err := compiled.Run(); err != nil {
		return nil, err
	}

	hooks := make(map[string]bool, 3)
	for _, name := range []string{PhaseEnter, PhaseExit, PhaseUpdate} {
		hooks[name] = compiled.IsDefined(name)
	}

	return hooks, nil
}

func newScript(src string) *tengo.Script {
	s := tengo.NewScript([]byte(src))
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	_ = s.Add("fsm", map[string]any{})

	return s
}

// run executes one hook for entity and applies any change_state or stop the
// hook requested. Failures are logged; hooks have no error channel back to the
// machine.
func run[E comparable](sc *script, phase string, entity E, m *status.Machine[E], dt time.Duration) {
	if !sc.hooks[phase] {
		return
	}

	var req request

	err := func() error {
		if err := sc.compiled.Set("__phase", phase); err != nil {
			return err
		}

		if err := sc.compiled.Set("__entity", toObject(entity)); err != nil {
			return err
		}

		if err := sc.compiled.Set("__dt", dt.Seconds()); err != nil {
			return err
		}

		if err := sc.compiled.Set("fsm", sc.engine(phase, entity, &req)); err != nil {
			return err
		}

		return sc.compiled.Run()
	}()
	if err != nil {
		sc.logger.Warn("statefile: script failed", "error", &ErrScript{State: sc.state, Phase: phase, Err: err})
		return
	}

	switch {
	case req.stop:
		_ = m.StopEntity(entity)
	case req.target != "":
		_ = m.ChangeState(entity, status.Name(req.target))
	}
}

// engine builds the fsm object visible to a hook.
func (sc *script) engine(phase string, entity any, req *request) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["state"] = &tengo.String{Value: sc.state}

	values["change_state"] = &tengo.UserFunction{Name: "change_state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}

		name, ok := tengo.ToString(args[0])
		if !ok || strings.TrimSpace(name) == "" {
			return tengo.FalseValue, nil
		}

		req.target = strings.TrimSpace(name)
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(...tengo.Object) (tengo.Object, error) {
		req.stop = true
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			if s, ok := tengo.ToString(a); ok {
				parts = append(parts, s)
			}
		}

		sc.logger.Info(strings.Join(parts, " "), "state", sc.state, "phase", phase, "entity", entity)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// toObject converts an entity for use inside a script. Values tengo cannot
// represent, such as pointers, are passed as their fmt representation.
func toObject(v any) tengo.Object {
	if o, err := tengo.FromInterface(v); err == nil {
		return o
	}

	return &tengo.String{Value: fmt.Sprint(v)}
}

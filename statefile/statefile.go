// Package statefile declares state sets in YAML so hosts can tune behavior
// without recompiling. Each state may carry a tengo script implementing its
// enter, exit and update hooks, and files can be watched and re-applied to a
// running machine.
//
// A state file looks like:
//
//	initial: idle
//	states:
//	  - name: idle
//	  - name: chase
//	    script_file: chase.tengo
//	  - name: flee
//	    script: |
//	      update := func(entity, dt) {
//	        fsm.change_state("idle")
//	      }
package statefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// File is a parsed state file.
	File struct {
		Initial string      `yaml:"initial"`
		States  []StateSpec `yaml:"states"`

		// dir resolves relative script files.
		dir string
	}

	// StateSpec declares one state. Script and ScriptFile are mutually exclusive.
	StateSpec struct {
		Name       string `yaml:"name"`
		Script     string `yaml:"script,omitempty"`
		ScriptFile string `yaml:"script_file,omitempty"`
	}
)

// Parse decodes and validates a state file. Relative script files are
// resolved against the working directory.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("statefile: unmarshal: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Load reads and parses the state file at path. Relative script files are
// resolved against the directory containing path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statefile: load %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("statefile: %s: %w", path, err)
	}

	f.dir = filepath.Dir(path)

	return f, nil
}

// Validate checks that every state is named once, that no state sets both
// script and script_file, and that initial, when set, names a declared state.
func (f *File) Validate() error {
	if len(f.States) == 0 {
		return fmt.Errorf("statefile: no states declared")
	}

	seen := make(map[string]bool, len(f.States))
	for i, s := range f.States {
		name := s.Name
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("statefile: state #%d has no name", i)
		}

		if seen[name] {
			return fmt.Errorf("statefile: state %q declared twice", name)
		}

		seen[name] = true

		if s.Script != "" && s.ScriptFile != "" {
			return fmt.Errorf("statefile: state %q sets both script and script_file", name)
		}
	}

	if f.Initial != "" && !seen[f.Initial] {
		return fmt.Errorf("statefile: initial state %q not declared", f.Initial)
	}

	return nil
}

// source returns the tengo source of s, reading script_file when needed.
func (f *File) source(s StateSpec) (string, error) {
	if s.ScriptFile == "" {
		return s.Script, nil
	}

	path := s.ScriptFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("statefile: load script for %q: %w", s.Name, err)
	}

	return string(data), nil
}

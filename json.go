package status

import (
	"encoding/json"
	"fmt"

	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

type (
	// Snapshot is a serializable, read-only view of a machine. It is meant for
	// debugging and tooling; machines cannot be restored from it.
	Snapshot struct {
		Initial     string                  `json:"initial"`
		States      g.Slice[string]         `json:"states"`
		Entities    g.Slice[EntitySnapshot] `json:"entities"`
		Transitions g.Map[string, int]      `json:"transitions"`
	}

	// EntitySnapshot is one registered entity in a Snapshot.
	EntitySnapshot struct {
		Entity any    `json:"entity"`
		State  string `json:"state"`
		Active bool   `json:"active"`
	}
)

// Snapshot captures the registry, every entity's state and activity, and the
// transition counts keyed "from->to". States are sorted by name; entities are
// sorted by state name, then by their fmt representation.
func (m *Machine[E]) Snapshot() Snapshot {
	snap := Snapshot{
		Initial:     m.initial.name,
		States:      make(g.Slice[string], 0, len(m.states)),
		Entities:    make(g.Slice[EntitySnapshot], 0, len(m.entityState)),
		Transitions: g.NewMap[string, int](),
	}

	for name := range m.states {
		snap.States = append(snap.States, name)
	}

	snap.States.SortBy(cmp.Cmp)

	for e, s := range m.entityState {
		snap.Entities = append(snap.Entities, EntitySnapshot{
			Entity: e,
			State:  s.name,
			Active: m.active.Contains(e),
		})
	}

	snap.Entities.SortBy(func(a, b EntitySnapshot) cmp.Ordering {
		if o := cmp.Cmp(a.State, b.State); o != 0 {
			return o
		}

		return cmp.Cmp(fmt.Sprint(a.Entity), fmt.Sprint(b.Entity))
	})

	for e, n := range m.transitions {
		snap.Transitions[g.Format("{}->{}", e.Key, e.Value).Std()] = n
	}

	return snap
}

// MarshalJSON implements the json.Marshaler interface.
func (m *Machine[E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

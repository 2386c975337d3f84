package status_test

import (
	"fmt"
	"time"

	status "github.com/CluelessD3v/Status"
)

type guard struct {
	name    string
	stamina float64
}

// Example: guards patrol until they get tired, then rest.
func Example_patrol() {
	var (
		patrol *status.State[*guard]
		rest   *status.State[*guard]
	)

	patrol = status.NewState(status.StateInfo[*guard]{
		Name:  "patrol",
		Enter: func(g *guard, _ *status.Machine[*guard]) { fmt.Println(g.name, "starts patrolling") },
		Update: func(g *guard, m *status.Machine[*guard], dt time.Duration) {
			g.stamina -= dt.Seconds()
			if g.stamina <= 0 {
				_ = m.ChangeState(g, rest)
			}
		},
	})

	rest = status.NewState(status.StateInfo[*guard]{
		Name:  "rest",
		Enter: func(g *guard, _ *status.Machine[*guard]) { fmt.Println(g.name, "sits down") },
		Exit:  func(g *guard, _ *status.Machine[*guard]) { fmt.Println(g.name, "gets up") },
	})

	bob := &guard{name: "Bob", stamina: 2}

	m := status.New(status.CreationInfo[*guard]{
		Entities: []*guard{bob},
		States:   []*status.State[*guard]{patrol, rest},
	})

	m.StateChanged().Connect(func(c status.StateChange[*guard]) {
		fmt.Printf("%s: %s -> %s\n", c.Entity.name, c.Old, c.New)
	})

	_ = m.Start()

	for range 3 {
		m.Update(time.Second)
	}

	_ = m.Stop()

	// Output:
	// Bob starts patrolling
	// Bob sits down
	// Bob: patrol -> rest
	// Bob gets up
}

package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/CluelessD3v/Status"
)

func TestMachine_ToDOT(t *testing.T) {
	idle, walking := idleWalking()
	a, b := &npc{}, &npc{}

	m := New(CreationInfo[*npc]{Entities: []*npc{a, b}, States: []*State[*npc]{idle, walking}})
	require.NoError(t, m.StartEntity(a))
	require.NoError(t, m.ChangeState(a, Name("Walking")))
	require.NoError(t, m.ChangeState(a, Name("Idle")))
	require.NoError(t, m.ChangeState(a, Name("Walking")))

	dot := m.ToDOT().Std()

	assert.Contains(t, dot, "digraph Status {")
	assert.Contains(t, dot, `__start -> "Idle"`)
	assert.Contains(t, dot, `"Idle" [label="Idle\n0/1", fillcolor="#d3d3d3", shape=doublecircle];`)
	assert.Contains(t, dot, `"Walking" [label="Walking\n1/1", fillcolor="#90ee90"];`)
	assert.Contains(t, dot, `"Idle" -> "Walking" [label=" x2 "];`)
	assert.Contains(t, dot, `"Walking" -> "Idle" [label=" x1 "];`)
}

func TestMachine_ToDOTEmpty(t *testing.T) {
	m := New(CreationInfo[int]{})

	dot := m.ToDOT().Std()
	assert.Contains(t, dot, `__start -> "default"`)
	assert.Contains(t, dot, `"default" [label="default\n0/0", shape=doublecircle];`)
	assert.NotContains(t, dot, "->  \"")
}

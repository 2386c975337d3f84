package status

import (
	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

// ToDOT generates a DOT language string representation of the machine for
// visualization. Nodes are the registered states annotated with how many
// entities are in them; edges are the transitions completed so far, labelled
// with how often each was taken.
func (m *Machine[E]) ToDOT() g.String {
	b := g.NewBuilder()

	b.WriteString("digraph Status {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(
		"  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	b.WriteString("  __start [shape=point, style=invis];\n")
	b.WriteString(g.Format("  __start -> \"{}\" [label=\" initial\"];\n\n", m.initial.name))

	registered := g.NewMap[string, int]()
	active := g.NewMap[string, int]()

	for e, s := range m.entityState {
		registered[s.name]++
		if m.active.Contains(e) {
			active[s.name]++
		}
	}

	names := make(g.Slice[g.String], 0, len(m.states))
	for name := range m.states {
		names = append(names, g.String(name))
	}

	names.SortBy(cmp.Cmp)

	for name := range names.Iter() {
		total, running := registered[name.Std()], active[name.Std()]

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\\n{}/{}\"", name, running, total))

		switch {
		case running > 0:
			attrs.Push("fillcolor=\"#90ee90\"")
		case total > 0:
			attrs.Push("fillcolor=\"#d3d3d3\"")
		}

		if name.Std() == m.initial.name {
			attrs.Push("shape=doublecircle")
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", name, attrs.Join(", ")))
	}

	b.WriteByte('\n')

	edges := make(g.Slice[edge], 0, len(m.transitions))
	for e := range m.transitions {
		edges = append(edges, e)
	}

	edges.SortBy(func(a, b edge) cmp.Ordering {
		return cmp.Cmp(a.Key+"\x00"+a.Value, b.Key+"\x00"+b.Value)
	})

	for e := range edges.Iter() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\" x{} \"", m.transitions[e]))

		if e.Key == e.Value {
			attrs.Push("style=dashed")
		}

		b.WriteString(g.Format("  \"{}\" -> \"{}\" [{}];\n", e.Key, e.Value, attrs.Join(", ")))
	}

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(`    key [label=<
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">●</td><td>Empty state (active/registered)</td></tr>
        <tr><td align="right"><font color="green">●</font></td><td>Has active entities</td></tr>
        <tr><td align="right"><font color="gray">●</font></td><td>Has only inactive entities</td></tr>
        <tr><td align="right">◎</td><td>Initial state</td></tr>
        <tr><td align="right">→</td><td>Observed transition (count)</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("  }\n")
	b.WriteString("}\n")

	return b.String()
}

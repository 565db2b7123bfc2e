package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraphBasic(t *testing.T) {
	g := New(0)
	g.addNode("Page")
	g.addNode("Mode")
	g.AddEdge("Page", "Mode")

	require.True(t, g.hasNode("Page"))
	require.True(t, g.hasNode("Mode"))
	require.False(t, g.hasNode("Volts"))
	require.Equal(t, []string{"Mode"}, g.dependencies("Page"))
}

func TestAddEdgeCreatesNodes(t *testing.T) {
	g := New(0)
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	require.True(t, g.hasNode("a"))
	require.True(t, g.hasNode("b"))
	require.Equal(t, []string{"b"}, g.dependencies("a"), "duplicate edges are ignored")
}

func TestResolutionOrder(t *testing.T) {
	tests := []struct {
		name   string
		edges  [][2]string
		nodes  []string
		order  []string
		cycles [][]string
	}{
		{
			name: "empty",
		},
		{
			name:  "isolated",
			nodes: []string{"a", "b"},
			order: []string{"a", "b"},
		},
		{
			name:  "chain",
			edges: [][2]string{{"Volts", "Page"}, {"Page", "Mode"}},
			order: []string{"Mode", "Page", "Volts"},
		},
		{
			name:  "diamond",
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
			order: []string{"d", "b", "c", "a"},
		},
		{
			name:   "two-cycle",
			edges:  [][2]string{{"a", "b"}, {"b", "a"}},
			cycles: [][]string{{"a", "b"}},
		},
		{
			name:   "triangle",
			edges:  [][2]string{{"c", "a"}, {"a", "b"}, {"b", "c"}},
			cycles: [][]string{{"c", "a", "b"}},
		},
		{
			name:   "dependent of a cycle",
			edges:  [][2]string{{"a", "b"}, {"b", "a"}, {"c", "a"}},
			order:  []string{"c"},
			cycles: [][]string{{"a", "b"}},
		},
		{
			name:   "self loop",
			edges:  [][2]string{{"b", "a"}, {"a", "a"}},
			order:  []string{"b"},
			cycles: [][]string{{"a"}},
		},
		{
			name:   "separate cycles",
			edges:  [][2]string{{"x", "y"}, {"y", "x"}, {"a", "a"}, {"m", "x"}},
			order:  []string{"m"},
			cycles: [][]string{{"x", "y"}, {"a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(len(tt.nodes))
			for _, n := range tt.nodes {
				g.addNode(n)
			}
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			order, cycles := g.resolutionOrder()
			require.Equal(t, tt.order, order)
			require.Equal(t, tt.cycles, cycles)
			require.Equal(t, tt.cycles, g.FindCycles())
		})
	}
}

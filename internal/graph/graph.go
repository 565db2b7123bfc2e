// Package graph orders the nodes of a small dependency graph and reports
// its cycles. The validator uses it for multiplexor chains, where every
// extended-multiplexed signal depends on the switch that selects it.
package graph

import (
	"cmp"
	"slices"
)

// Graph is a dependency graph of named nodes with forward edges. Nodes
// keep the order in which they were first added, and every result is
// reported in that order.
type Graph struct {
	names []string
	index map[string]int
	edges map[string][]string
}

// New returns a graph with no nodes or edges. sizeHint preallocates room
// for that many nodes.
func New(sizeHint int) *Graph {
	return &Graph{
		names: make([]string, 0, sizeHint),
		index: make(map[string]int, sizeHint),
		edges: make(map[string][]string, sizeHint),
	}
}

// addNode registers a node. Duplicate calls are no-ops.
func (g *Graph) addNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.names)
	g.names = append(g.names, name)
}

// AddEdge records that "from" depends on "to", meaning "to" must be
// resolved before "from". Missing nodes are created implicitly.
// Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// dependencies returns the nodes that name depends on.
func (g *Graph) dependencies(name string) []string {
	return g.edges[name]
}

// hasNode reports whether the node exists in the graph.
func (g *Graph) hasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// resolutionOrder returns nodes ordered so that dependencies come before
// dependents, using Tarjan's algorithm. Strongly connected components with
// more than one node (or a single node with a self-loop) are reported as
// cycles and excluded from the order. Members of a cycle, and the cycles
// themselves, follow insertion order.
func (g *Graph) resolutionOrder() (order []string, cycles [][]string) {
	var (
		next     int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
	)

	var strongConnect func(name string)
	strongConnect = func(name string) {
		indices[name] = next
		lowlinks[name] = next
		next++
		stack = append(stack, name)
		onStack[name] = true

		for _, dep := range g.edges[name] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[name] = min(lowlinks[name], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[name] = min(lowlinks[name], indices[dep])
			}
		}

		if lowlinks[name] != indices[name] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == name {
				break
			}
		}
		switch {
		case len(scc) > 1 || slices.Contains(g.edges[scc[0]], scc[0]):
			slices.SortFunc(scc, g.byInsertion)
			cycles = append(cycles, scc)
		default:
			order = append(order, scc[0])
		}
	}

	for _, name := range g.names {
		if _, visited := indices[name]; !visited {
			strongConnect(name)
		}
	}

	slices.SortFunc(cycles, func(a, b []string) int { return g.byInsertion(a[0], b[0]) })
	return order, cycles
}

// FindCycles returns the strongly connected components that form cycles:
// more than one node, or a single node with a self-loop. Members of a
// cycle, and the cycles themselves, follow insertion order.
func (g *Graph) FindCycles() [][]string {
	_, cycles := g.resolutionOrder()
	return cycles
}

func (g *Graph) byInsertion(a, b string) int {
	return cmp.Compare(g.index[a], g.index[b])
}

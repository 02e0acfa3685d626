package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bomgraph/internal/model"
)

// Cycle is a loop found in stored data.
type Cycle struct {
	// Nodes are the members of the strongly connected component, sorted.
	Nodes []string `json:"nodes"`

	// Path is one traversal of the loop: [a, b, ..., a].
	Path []string `json:"path"`
}

// String renders the loop as "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// adjacency maps product -> sorted, distinct components.
type adjacency map[string][]string

// Adjacency accumulates edges page by page for FindCycles.
type Adjacency struct {
	g adjacency
}

// NewAdjacency creates an empty Adjacency.
func NewAdjacency() *Adjacency {
	return &Adjacency{g: make(adjacency)}
}

// Add records the edges of one page.
func (a *Adjacency) Add(edges ...model.ComponentEdge) {
	for _, e := range edges {
		p, c := e.ParentProductID, e.ComponentProductID
		if _, ok := a.g[c]; !ok {
			a.g[c] = nil
		}
		a.g[p] = append(a.g[p], c)
	}
}

// Nodes returns the number of distinct products seen.
func (a *Adjacency) Nodes() int {
	return len(a.g)
}

// FindCycles reports every strongly connected component of size > 1, and
// every self-loop, in the accumulated graph. Output is deterministic: cycles
// are ordered by their smallest node.
func (a *Adjacency) FindCycles() []Cycle {
	for p, cs := range a.g {
		slices.Sort(cs)
		a.g[p] = slices.Compact(cs)
	}

	cycles := []Cycle{}
	for _, scc := range tarjanSCC(a.g) {
		if len(scc) > 1 || hasSelfLoop(scc[0], a.g) {
			slices.Sort(scc)
			cycles = append(cycles, Cycle{Nodes: scc, Path: reconstructCyclePath(scc, a.g)})
		}
	}
	slices.SortFunc(cycles, func(x, y Cycle) int {
		return strings.Compare(x.Nodes[0], y.Nodes[0])
	})
	return cycles
}

// FindCycles is a convenience for a fully materialized edge list.
func FindCycles(edges []model.ComponentEdge) []Cycle {
	a := NewAdjacency()
	a.Add(edges...)
	return a.FindCycles()
}

func hasSelfLoop(node string, g adjacency) bool {
	_, found := slices.BinarySearch(g[node], node)
	return found
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results do not depend on map order.
func tarjanSCC(g adjacency) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// reconstructCyclePath returns the shortest loop through the SCC's smallest
// member, staying inside the SCC.
func reconstructCyclePath(scc []string, g adjacency) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	member := make(map[string]bool, len(scc))
	for _, n := range scc {
		member[n] = true
	}

	pred := make(map[string]string)
	seen := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g[v] {
			if !member[w] {
				continue
			}
			if w == start {
				path := []string{start}
				for n := v; n != start; n = pred[n] {
					path = append(path, n)
				}
				path = append(path, start)
				slices.Reverse(path)
				return path
			}
			if !seen[w] {
				seen[w] = true
				pred[w] = v
				queue = append(queue, w)
			}
		}
	}
	panic(fmt.Sprintf("graph: component %v has no cycle through %s", scc, start))
}

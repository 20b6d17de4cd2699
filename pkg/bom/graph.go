// Package bom builds the directed bill-of-materials graph from resolved
// part-number edges and derives everything downstream consumers need:
// deduplicated direct edges, their mechanical reverse, the full
// descendant→ancestor transitive closure, and structural diagnostics
// (duplicate rows, self-loops, cycles).
//
// The graph is built once per run by [Build] and never mutated afterwards.
// Internally each part number is assigned a dense integer index so
// traversals never re-hash strings on hot paths.
package bom

import (
	"fmt"
	"slices"
	"strings"
)

// CycleError reports a directed cycle in the assembly hierarchy. A correct
// BOM is acyclic by domain convention, so cycle presence is fatal for
// closure computation. The direct and reverse edge sets remain available
// on the returned graph for inspection.
type CycleError struct {
	// Cycle is the offending path with the entry node repeated at the
	// end, e.g. [A B C A].
	Cycle []string `json:"cycle"`
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("assembly hierarchy contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Edge is a directed parent→child edge over part numbers.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Pair is one transitive-closure entry: Descendant is reachable from
// Ancestor through one or more direct edges.
type Pair struct {
	Descendant string `json:"descendant"`
	Ancestor   string `json:"ancestor"`
}

// Diagnostics reports the structural issues found while building.
type Diagnostics struct {
	DuplicateEdges int         `json:"duplicate_edges"` // extra occurrences collapsed by dedup
	SelfLoops      int         `json:"self_loops"`      // parent == child edges rejected
	SelfLoopParts  []string    `json:"self_loop_parts,omitempty"`
	Cycle          *CycleError `json:"cycle,omitempty"`
}

// Graph is the immutable BOM graph for one run. Construct with [Build];
// query methods are safe for concurrent use and never expose mutable
// internal state.
type Graph struct {
	ids   []string       // dense index -> part number
	index map[string]int // part number -> dense index

	out [][]int // adjacency: parent -> children, sorted, deduplicated
	in  [][]int // adjacency: child -> parents, sorted, deduplicated

	occurrences map[[2]int]int // direct edge -> input occurrence count
	closure     [][]int        // dense index -> sorted descendant indices (nil until computed)
	diag        Diagnostics
}

// NodeCount returns the number of distinct part numbers in the graph.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of deduplicated direct edges.
func (g *Graph) EdgeCount() int { return len(g.occurrences) }

// Nodes returns every part number appearing in any edge, sorted.
func (g *Graph) Nodes() []string {
	nodes := slices.Clone(g.ids)
	slices.Sort(nodes)
	return nodes
}

// Has reports whether the part number appears in the graph.
func (g *Graph) Has(number string) bool {
	_, ok := g.index[number]
	return ok
}

// Children returns the direct children of a part, sorted. Returns nil for
// unknown parts or leaves.
func (g *Graph) Children(number string) []string {
	i, ok := g.index[number]
	if !ok {
		return nil
	}
	return g.numbers(g.out[i])
}

// Parents returns the direct parents of a part, sorted. Returns nil for
// unknown parts or roots.
func (g *Graph) Parents(number string) []string {
	i, ok := g.index[number]
	if !ok {
		return nil
	}
	return g.numbers(g.in[i])
}

// DirectEdges returns the deduplicated parent→child edges in sorted order.
func (g *Graph) DirectEdges() []Edge {
	edges := make([]Edge, 0, len(g.occurrences))
	for i, children := range g.out {
		for _, c := range children {
			edges = append(edges, Edge{Parent: g.ids[i], Child: g.ids[c]})
		}
	}
	sortEdges(edges)
	return edges
}

// ReverseEdges returns the structural inverse of every direct edge
// (child→parent), in sorted order. Its length always equals the length of
// [Graph.DirectEdges].
func (g *Graph) ReverseEdges() []Edge {
	edges := make([]Edge, 0, len(g.occurrences))
	for i, children := range g.out {
		for _, c := range children {
			edges = append(edges, Edge{Parent: g.ids[c], Child: g.ids[i]})
		}
	}
	sortEdges(edges)
	return edges
}

// Occurrences returns how many input edges collapsed into the direct
// edge parent→child, or 0 if the edge does not exist.
func (g *Graph) Occurrences(parent, child string) int {
	p, ok := g.index[parent]
	if !ok {
		return 0
	}
	c, ok := g.index[child]
	if !ok {
		return 0
	}
	return g.occurrences[[2]int{p, c}]
}

// ClosurePairs returns every descendant→ancestor pair reachable through
// one or more direct edges, sorted. A part used under three distinct
// assemblies yields three pairs. Returns nil when closure computation was
// aborted by a cycle.
func (g *Graph) ClosurePairs() []Pair {
	if g.closure == nil {
		return nil
	}
	var pairs []Pair
	for a, descendants := range g.closure {
		for _, d := range descendants {
			pairs = append(pairs, Pair{Descendant: g.ids[d], Ancestor: g.ids[a]})
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := strings.Compare(a.Descendant, b.Descendant); c != 0 {
			return c
		}
		return strings.Compare(a.Ancestor, b.Ancestor)
	})
	return pairs
}

// Ancestors returns every part the given part is used in, at any depth,
// sorted. Returns nil when the part is unknown or closure was aborted.
func (g *Graph) Ancestors(number string) []string {
	if g.closure == nil {
		return nil
	}
	d, ok := g.index[number]
	if !ok {
		return nil
	}
	var ancestors []string
	for a, descendants := range g.closure {
		if _, found := slices.BinarySearch(descendants, d); found {
			ancestors = append(ancestors, g.ids[a])
		}
	}
	slices.Sort(ancestors)
	return ancestors
}

// Descendants returns every part contained in the given part, at any
// depth, sorted. Returns nil when the part is unknown or closure was
// aborted.
func (g *Graph) Descendants(number string) []string {
	if g.closure == nil {
		return nil
	}
	a, ok := g.index[number]
	if !ok {
		return nil
	}
	return g.numbers(g.closure[a])
}

// Diagnostics returns the structural issues recorded during the build.
func (g *Graph) Diagnostics() Diagnostics {
	d := g.diag
	d.SelfLoopParts = slices.Clone(g.diag.SelfLoopParts)
	return d
}

func (g *Graph) numbers(indices []int) []string {
	if len(indices) == 0 {
		return nil
	}
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = g.ids[idx]
	}
	slices.Sort(out)
	return out
}

func sortEdges(edges []Edge) {
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := strings.Compare(a.Parent, b.Parent); c != 0 {
			return c
		}
		return strings.Compare(a.Child, b.Child)
	})
}

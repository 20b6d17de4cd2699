package bom

import "slices"

// Build constructs the BOM graph from the resolved edge set.
//
// Identical (parent, child) pairs collapse into a single direct edge with
// an occurrence count. Self-loops are rejected and counted. After the
// adjacency is assembled, Build detects cycles with a depth-first
// traversal; if one exists it returns the graph together with a
// [*CycleError]: the direct and reverse edge sets remain usable, but
// closure pairs are unavailable. On acyclic input the transitive closure
// is computed and the error is nil.
//
// Running Build twice on the same edge set yields identical direct,
// reverse, and closure sets.
func Build(edges []Edge) (*Graph, error) {
	g := &Graph{
		index:       make(map[string]int),
		occurrences: make(map[[2]int]int),
	}

	type edgeKey = [2]int
	outSets := make(map[int][]int)
	inSets := make(map[int][]int)

	for _, e := range edges {
		if e.Parent == e.Child {
			g.diag.SelfLoops++
			if !slices.Contains(g.diag.SelfLoopParts, e.Parent) {
				g.diag.SelfLoopParts = append(g.diag.SelfLoopParts, e.Parent)
			}
			continue
		}
		p := g.intern(e.Parent)
		c := g.intern(e.Child)
		key := edgeKey{p, c}
		g.occurrences[key]++
		if g.occurrences[key] > 1 {
			g.diag.DuplicateEdges++
			continue
		}
		outSets[p] = append(outSets[p], c)
		inSets[c] = append(inSets[c], p)
	}
	slices.Sort(g.diag.SelfLoopParts)

	g.out = make([][]int, len(g.ids))
	g.in = make([][]int, len(g.ids))
	for i := range g.ids {
		g.out[i] = outSets[i]
		g.in[i] = inSets[i]
		slices.Sort(g.out[i])
		slices.Sort(g.in[i])
	}

	if cycle := g.findCycle(); cycle != nil {
		g.diag.Cycle = cycle
		return g, cycle
	}
	g.computeClosure()
	return g, nil
}

// intern assigns a dense index to a part number, reusing an existing one.
func (g *Graph) intern(number string) int {
	if i, ok := g.index[number]; ok {
		return i
	}
	i := len(g.ids)
	g.ids = append(g.ids, number)
	g.index[number] = i
	return i
}

// findCycle runs a white/gray/black depth-first search over the adjacency.
// When a gray node is revisited the active recursion path is cut at that
// node to name the full cycle.
func (g *Graph) findCycle() *CycleError {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.ids))
	var path []int
	var cycle []string

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		path = append(path, u)
		for _, v := range g.out[u] {
			switch color[v] {
			case white:
				if dfs(v) {
					return true
				}
			case gray:
				start := slices.Index(path, v)
				for _, w := range path[start:] {
					cycle = append(cycle, g.ids[w])
				}
				cycle = append(cycle, g.ids[v])
				return true
			}
		}
		path = path[:len(path)-1]
		color[u] = black
		return false
	}

	// Roots first so reported cycles are named from a stable entry point;
	// then sweep any nodes only reachable from within a cycle.
	for u := range g.ids {
		if len(g.in[u]) == 0 && color[u] == white && dfs(u) {
			return &CycleError{Cycle: cycle}
		}
	}
	for u := range g.ids {
		if color[u] == white && dfs(u) {
			return &CycleError{Cycle: cycle}
		}
	}
	return nil
}

// computeClosure records, for every node, the set of nodes reachable via
// outgoing edges. Descendant sets are memoized so a subgraph shared by
// many assemblies is walked once, not once per root.
func (g *Graph) computeClosure() {
	g.closure = make([][]int, len(g.ids))
	done := make([]bool, len(g.ids))

	var visit func(u int) []int
	visit = func(u int) []int {
		if done[u] {
			return g.closure[u]
		}
		done[u] = true // safe: the graph is acyclic here
		set := make(map[int]struct{})
		for _, v := range g.out[u] {
			set[v] = struct{}{}
			for _, d := range visit(v) {
				set[d] = struct{}{}
			}
		}
		descendants := make([]int, 0, len(set))
		for d := range set {
			descendants = append(descendants, d)
		}
		slices.Sort(descendants)
		g.closure[u] = descendants
		return descendants
	}

	for u := range g.ids {
		visit(u)
	}
}

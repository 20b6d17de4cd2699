package bom

import (
	"errors"
	"reflect"
	"testing"
)

func mustBuild(t *testing.T, edges []Edge) *Graph {
	t.Helper()
	g, err := Build(edges)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestBuild_DeduplicatesWithCounts(t *testing.T) {
	g := mustBuild(t, []Edge{
		{Parent: "A", Child: "B"},
		{Parent: "A", Child: "B"},
		{Parent: "A", Child: "B"},
		{Parent: "A", Child: "C"},
	})

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if got := g.Occurrences("A", "B"); got != 3 {
		t.Errorf("Occurrences(A, B) = %d, want 3", got)
	}
	if got := g.Occurrences("A", "C"); got != 1 {
		t.Errorf("Occurrences(A, C) = %d, want 1", got)
	}
	if g.Diagnostics().DuplicateEdges != 2 {
		t.Errorf("DuplicateEdges = %d, want 2", g.Diagnostics().DuplicateEdges)
	}
}

func TestBuild_RejectsSelfLoops(t *testing.T) {
	g := mustBuild(t, []Edge{
		{Parent: "A", Child: "A"},
		{Parent: "A", Child: "B"},
	})

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	diag := g.Diagnostics()
	if diag.SelfLoops != 1 {
		t.Errorf("SelfLoops = %d, want 1", diag.SelfLoops)
	}
	if !reflect.DeepEqual(diag.SelfLoopParts, []string{"A"}) {
		t.Errorf("SelfLoopParts = %v, want [A]", diag.SelfLoopParts)
	}
}

func TestBuild_ReverseEdgesMirrorDirect(t *testing.T) {
	g := mustBuild(t, []Edge{
		{Parent: "A", Child: "B"},
		{Parent: "A", Child: "C"},
		{Parent: "B", Child: "C"},
	})

	direct := g.DirectEdges()
	reverse := g.ReverseEdges()
	if len(reverse) != len(direct) {
		t.Fatalf("len(reverse) = %d, want %d", len(reverse), len(direct))
	}

	inverted := make(map[Edge]bool, len(reverse))
	for _, e := range reverse {
		inverted[Edge{Parent: e.Child, Child: e.Parent}] = true
	}
	for _, e := range direct {
		if !inverted[e] {
			t.Errorf("direct edge %v has no reverse counterpart", e)
		}
	}
}

// Diamond: Root -> {Sub1, Sub2}, Sub1 -> Leaf, Sub2 -> Leaf. The closure
// must contain five distinct pairs, with Leaf reported under Root once.
func TestBuild_ClosureDiamond(t *testing.T) {
	g := mustBuild(t, []Edge{
		{Parent: "Root", Child: "Sub1"},
		{Parent: "Root", Child: "Sub2"},
		{Parent: "Sub1", Child: "Leaf"},
		{Parent: "Sub2", Child: "Leaf"},
	})

	pairs := g.ClosurePairs()
	if len(pairs) != 5 {
		t.Fatalf("len(ClosurePairs()) = %d, want 5: %v", len(pairs), pairs)
	}
	want := map[Pair]bool{
		{Descendant: "Sub1", Ancestor: "Root"}: true,
		{Descendant: "Sub2", Ancestor: "Root"}: true,
		{Descendant: "Leaf", Ancestor: "Root"}: true,
		{Descendant: "Leaf", Ancestor: "Sub1"}: true,
		{Descendant: "Leaf", Ancestor: "Sub2"}: true,
	}
	for _, p := range pairs {
		if !want[p] {
			t.Errorf("unexpected closure pair %v", p)
		}
	}

	if got := g.Ancestors("Leaf"); !reflect.DeepEqual(got, []string{"Root", "Sub1", "Sub2"}) {
		t.Errorf("Ancestors(Leaf) = %v, want [Root Sub1 Sub2]", got)
	}
	if got := g.Descendants("Root"); !reflect.DeepEqual(got, []string{"Leaf", "Sub1", "Sub2"}) {
		t.Errorf("Descendants(Root) = %v, want [Leaf Sub1 Sub2]", got)
	}
}

func TestBuild_CycleDetected(t *testing.T) {
	g, err := Build([]Edge{
		{Parent: "A", Child: "B"},
		{Parent: "B", Child: "C"},
		{Parent: "C", Child: "A"},
	})

	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Build() error = %v, want *CycleError", err)
	}
	if len(cycle.Cycle) != 4 || cycle.Cycle[0] != cycle.Cycle[3] {
		t.Errorf("Cycle = %v, want a closed path of 4 entries", cycle.Cycle)
	}

	// The graph stays usable for edge queries; closure is unavailable.
	if g == nil {
		t.Fatal("Build() graph = nil, want usable graph alongside cycle error")
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if len(g.ReverseEdges()) != 3 {
		t.Errorf("len(ReverseEdges()) = %d, want 3", len(g.ReverseEdges()))
	}
	if pairs := g.ClosurePairs(); pairs != nil {
		t.Errorf("ClosurePairs() = %v, want nil after cycle", pairs)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	edges := []Edge{
		{Parent: "Root", Child: "Sub1"},
		{Parent: "Sub1", Child: "Leaf"},
		{Parent: "Root", Child: "Sub1"},
	}

	a := mustBuild(t, edges)
	b := mustBuild(t, edges)

	if !reflect.DeepEqual(a.DirectEdges(), b.DirectEdges()) {
		t.Errorf("direct edges differ between identical builds")
	}
	if !reflect.DeepEqual(a.ReverseEdges(), b.ReverseEdges()) {
		t.Errorf("reverse edges differ between identical builds")
	}
	if !reflect.DeepEqual(a.ClosurePairs(), b.ClosurePairs()) {
		t.Errorf("closure pairs differ between identical builds")
	}
}

func TestGraph_ChildrenParentsSorted(t *testing.T) {
	g := mustBuild(t, []Edge{
		{Parent: "A", Child: "C"},
		{Parent: "A", Child: "B"},
		{Parent: "D", Child: "B"},
		{Parent: "C", Child: "B"},
	})

	if got := g.Children("A"); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Children(A) = %v, want [B C]", got)
	}
	if got := g.Parents("B"); !reflect.DeepEqual(got, []string{"A", "C", "D"}) {
		t.Errorf("Parents(B) = %v, want [A C D]", got)
	}
	if g.Has("Z") {
		t.Error("Has(Z) = true, want false")
	}
}

func TestBuild_SharedSubassemblyClosureOnce(t *testing.T) {
	// Leaf appears under Root through two paths; pairs are a set, so the
	// (Leaf, Root) record appears exactly once.
	g := mustBuild(t, []Edge{
		{Parent: "Root", Child: "Sub1"},
		{Parent: "Root", Child: "Sub2"},
		{Parent: "Sub1", Child: "Leaf"},
		{Parent: "Sub2", Child: "Leaf"},
	})

	count := 0
	for _, p := range g.ClosurePairs() {
		if p == (Pair{Descendant: "Leaf", Ancestor: "Root"}) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("(Leaf, Root) closure pairs = %d, want 1", count)
	}
}

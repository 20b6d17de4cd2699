package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bomgraph/bomgraph/pkg/bom"
	"github.com/bomgraph/bomgraph/pkg/part"
)

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	idx := part.BuildIndex([]part.Record{
		{Number: "P1", Name: "Root", Meta: part.Meta{Revision: "A"}},
		{Number: "P2", Name: "Sub"},
		{Number: "P9", Name: "Spare"}, // indexed but not in the graph
	})
	g, err := bom.Build([]bom.Edge{
		{Parent: "P1", Child: "P2"},
		{Parent: "P1", Child: "P2"},
		{Parent: "P2", Child: "P3"}, // edge-only part, no index record
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewDataset("run-1", idx, g, Report{Index: idx.Stats()})
}

func TestNewDataset_NodeUnion(t *testing.T) {
	ds := testDataset(t)

	if len(ds.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want 4: %v", len(ds.Nodes), ds.Nodes)
	}
	// Sorted by number, names and metadata carried from the index.
	if ds.Nodes[0].Number != "P1" || ds.Nodes[0].Name != "Root" || ds.Nodes[0].Meta.Revision != "A" {
		t.Errorf("Nodes[0] = %+v, want P1/Root rev A", ds.Nodes[0])
	}
	if ds.Nodes[2].Number != "P3" || ds.Nodes[2].Name != "" {
		t.Errorf("Nodes[2] = %+v, want edge-only P3 with empty name", ds.Nodes[2])
	}
	if ds.Nodes[3].Number != "P9" {
		t.Errorf("Nodes[3] = %+v, want index-only P9", ds.Nodes[3])
	}
}

func TestNewDataset_EdgeCounts(t *testing.T) {
	ds := testDataset(t)

	if len(ds.DirectEdges) != 2 {
		t.Fatalf("len(DirectEdges) = %d, want 2", len(ds.DirectEdges))
	}
	if ds.DirectEdges[0].Count != 2 {
		t.Errorf("DirectEdges[0].Count = %d, want 2", ds.DirectEdges[0].Count)
	}
	if len(ds.ReverseEdges) != len(ds.DirectEdges) {
		t.Errorf("len(ReverseEdges) = %d, want %d", len(ds.ReverseEdges), len(ds.DirectEdges))
	}
	if len(ds.Closure) != 3 {
		t.Errorf("len(Closure) = %d, want 3", len(ds.Closure))
	}
	if ds.RunID != "run-1" || ds.Diagnostics.RunID != "run-1" {
		t.Errorf("run IDs = %q, %q, want run-1", ds.RunID, ds.Diagnostics.RunID)
	}
}

func TestWriteJSON_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := WriteJSON(testDataset(t), &a); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := WriteJSON(testDataset(t), &b); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("identical datasets serialized differently")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDataset(t), DOTOptions{})

	if !strings.HasPrefix(dot, "digraph bom {") {
		t.Errorf("ToDOT() missing digraph header: %q", dot[:40])
	}
	if !strings.Contains(dot, `"P1" -> "P2" [label="x2"]`) {
		t.Errorf("ToDOT() missing counted edge, got:\n%s", dot)
	}
	if !strings.Contains(dot, "P1\\nRoot") {
		t.Errorf("ToDOT() missing node label with name, got:\n%s", dot)
	}
}

func TestToDOT_Reverse(t *testing.T) {
	dot := ToDOT(testDataset(t), DOTOptions{Reverse: true})
	if !strings.Contains(dot, `"P2" -> "P1"`) {
		t.Errorf("ToDOT(reverse) missing inverted edge, got:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testDataset(t), DOTOptions{Detailed: true})
	if !strings.Contains(dot, "rev: A") {
		t.Errorf("ToDOT(detailed) missing revision label, got:\n%s", dot)
	}
}

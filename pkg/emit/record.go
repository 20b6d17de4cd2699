// Package emit converts a completed run (cross-reference index, BOM
// graph, and diagnostics) into graph-store records and writes them to a
// target backend.
//
// The [Dataset] is the canonical record format: deterministic (sorted) and
// JSON/BSON-serializable. Backends implement [Emitter]:
//
//   - [JSONEmitter] writes the dataset to a file or writer
//   - [Neo4jEmitter] loads it into Neo4j over bolt with batched UNWINDs
//   - [MongoEmitter] loads it into MongoDB collections
//   - [ToDOT] / [RenderSVG] produce Graphviz output for inspection
//
// The core never calls into this package; the pipeline hands it a
// finished, immutable result.
package emit

import (
	"slices"
	"strings"

	"github.com/bomgraph/bomgraph/pkg/bom"
	"github.com/bomgraph/bomgraph/pkg/part"
	"github.com/bomgraph/bomgraph/pkg/resolve"
)

// Node is one part record in the emitted node set.
type Node struct {
	Number string    `json:"number" bson:"number"`
	Name   string    `json:"name,omitempty" bson:"name,omitempty"`
	Meta   part.Meta `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Edge is one directed relationship in the emitted edge sets. Count is the
// number of input rows that collapsed into it (1 for reverse edges, which
// are derived, not counted).
type Edge struct {
	Parent string `json:"parent" bson:"parent"`
	Child  string `json:"child" bson:"child"`
	Count  int    `json:"count,omitempty" bson:"count,omitempty"`
}

// Pair is one transitive-closure record: Descendant is contained in
// Ancestor at some depth ≥ 1.
type Pair struct {
	Descendant string `json:"descendant" bson:"descendant"`
	Ancestor   string `json:"ancestor" bson:"ancestor"`
}

// Report aggregates every diagnostic produced during a run so each
// dropped or rewritten item stays auditable downstream.
type Report struct {
	RunID string `json:"run_id" bson:"run_id"`

	Index           part.IndexStats     `json:"index" bson:"index"`
	MultiNamed      map[string][]string `json:"multi_named,omitempty" bson:"multi_named,omitempty"`
	Resolution      resolve.Diagnostics `json:"resolution" bson:"resolution"`
	Graph           bom.Diagnostics     `json:"graph" bson:"graph"`
	SkippedEdgeRows int                 `json:"skipped_edge_rows,omitempty" bson:"skipped_edge_rows,omitempty"`
}

// Dataset is the complete output of one run in graph-store record form.
// Construct with [NewDataset]; all slices are sorted so identical runs
// produce byte-identical serializations.
type Dataset struct {
	RunID        string `json:"run_id" bson:"run_id"`
	Nodes        []Node `json:"nodes" bson:"nodes"`
	DirectEdges  []Edge `json:"direct_edges" bson:"direct_edges"`
	ReverseEdges []Edge `json:"reverse_edges" bson:"reverse_edges"`
	Closure      []Pair `json:"closure,omitempty" bson:"closure,omitempty"`
	Diagnostics  Report `json:"diagnostics" bson:"diagnostics"`
}

// NewDataset assembles the emitted records from a finished run. The node
// set is the union of every indexed part and every part appearing in an
// edge; parts known only from edges get an empty name. Closure is empty
// when closure computation was aborted by a cycle.
func NewDataset(runID string, idx *part.Index, g *bom.Graph, report Report) *Dataset {
	report.RunID = runID
	ds := &Dataset{RunID: runID, Diagnostics: report}

	seen := make(map[string]bool)
	for _, number := range idx.Numbers() {
		name, _ := idx.NameFor(number)
		meta, _ := idx.MetaFor(number)
		ds.Nodes = append(ds.Nodes, Node{Number: number, Name: name, Meta: meta})
		seen[number] = true
	}
	for _, number := range g.Nodes() {
		if !seen[number] {
			ds.Nodes = append(ds.Nodes, Node{Number: number})
			seen[number] = true
		}
	}
	sortNodes(ds.Nodes)

	for _, e := range g.DirectEdges() {
		ds.DirectEdges = append(ds.DirectEdges, Edge{
			Parent: e.Parent,
			Child:  e.Child,
			Count:  g.Occurrences(e.Parent, e.Child),
		})
	}
	for _, e := range g.ReverseEdges() {
		ds.ReverseEdges = append(ds.ReverseEdges, Edge{Parent: e.Parent, Child: e.Child, Count: 1})
	}
	for _, p := range g.ClosurePairs() {
		ds.Closure = append(ds.Closure, Pair{Descendant: p.Descendant, Ancestor: p.Ancestor})
	}
	return ds
}

func sortNodes(nodes []Node) {
	slices.SortFunc(nodes, func(a, b Node) int {
		return strings.Compare(a.Number, b.Number)
	})
}

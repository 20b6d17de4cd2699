// Package part defines part records, identifier normalization, and the
// cross-reference index between stable part numbers and display names.
//
// Part numbers are reliable unique keys; names are not. Multiple parts can
// share a name, a name can be missing, and a name can coincidentally equal
// another part's number. The [Index] aggregates every (number, name,
// metadata) triple seen during a run into two read-only mappings:
//
//   - number → display name (last writer wins)
//   - normalized name → ordered candidate list, each candidate carrying
//     the metadata needed for deterministic tie-breaking
//
// The index is built once per run with [BuildIndex] and is immutable
// afterwards, so it can be shared across goroutines without locking.
package part

// Meta is the per-record metadata bag carried by part records and
// candidates. All fields are optional; empty strings mean "not recorded".
type Meta struct {
	Revision  string `json:"revision,omitempty" bson:"revision,omitempty"`
	View      string `json:"view,omitempty" bson:"view,omitempty"`
	Container string `json:"container,omitempty" bson:"container,omitempty"`
	Source    string `json:"source,omitempty" bson:"source,omitempty"`
}

// Record is one part row from an input batch.
//
// Number is the stable primary key. Two records with the same number refer
// to the same part; later metadata overwrites earlier metadata within one
// run. Name may be empty or duplicated across records.
type Record struct {
	Number string
	Name   string
	Meta   Meta
}

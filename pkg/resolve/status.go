package resolve

// Status classifies the outcome of resolving one token.
type Status string

const (
	// StatusExact: the normalized, case-preserved name matched exactly
	// one candidate.
	StatusExact Status = "resolved-exact"

	// StatusCaseInsensitive: the case-folded name matched exactly one
	// candidate after the exact stage failed.
	StatusCaseInsensitive Status = "resolved-case-insensitive"

	// StatusNumericFallback: the token matched no name but is itself a
	// known part number (a "name" column carrying a bare identifier).
	StatusNumericFallback Status = "resolved-numeric-fallback"

	// StatusTieBreak: the name was ambiguous and a candidate was chosen
	// deterministically under the lenient policy.
	StatusTieBreak Status = "resolved-tie-break"

	// StatusUnknown: no candidate at any stage. The edge is dropped
	// (lenient) or the run fails (strict).
	StatusUnknown Status = "unknown"

	// StatusAmbiguousRejected: multiple candidates under the strict
	// policy. The run fails.
	StatusAmbiguousRejected Status = "ambiguous-rejected"
)

// Accepted reports whether a token with this status may enter the graph.
func (s Status) Accepted() bool {
	switch s {
	case StatusExact, StatusCaseInsensitive, StatusNumericFallback, StatusTieBreak:
		return true
	}
	return false
}

// Edge is a raw directed edge from an input batch. Parent and Child are
// either both part names or both part numbers, depending on the batch mode.
type Edge struct {
	Parent string
	Child  string
}

// ResolvedEdge is a directed edge over part numbers, annotated with how
// each endpoint was resolved.
type ResolvedEdge struct {
	Parent       string
	Child        string
	ParentStatus Status
	ChildStatus  Status
}

// TokenResolution records the decision made for one distinct token: the
// chosen part number (empty if none) and, for ambiguous names, the full
// candidate list considered.
type TokenResolution struct {
	Token      string   `json:"token"`
	Status     Status   `json:"status"`
	Number     string   `json:"number,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// Diagnostics accumulates every recoverable resolution decision so a
// lenient run stays fully auditable. Slices are sorted by token for
// deterministic output.
type Diagnostics struct {
	Edges    int `json:"edges"`    // raw edges seen
	Resolved int `json:"resolved"` // edges with both endpoints accepted
	Dropped  int `json:"dropped"`  // edges dropped (unknown endpoint)

	Unknown   []TokenResolution `json:"unknown,omitempty"`
	TieBreaks []TokenResolution `json:"tie_breaks,omitempty"`
	Fallbacks []TokenResolution `json:"fallbacks,omitempty"`

	// Trace holds one entry per input edge when Policy.Trace is set.
	Trace []EdgeTrace `json:"trace,omitempty"`
}

// EdgeTrace is the itemized resolution record for one raw edge.
type EdgeTrace struct {
	Parent TokenResolution `json:"parent"`
	Child  TokenResolution `json:"child"`
}

package resolve

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/part"
)

// Resolve maps name-based edges onto part-number edges using the index.
//
// Each distinct token is resolved once; resolution depends only on the
// token, the index contents, and the policy, never on edge ordering. Under
// the strict policy any unknown or ambiguous token fails the whole call
// with an aggregated error listing every offending token, and no edges are
// returned. Under the lenient policy unknown edges are dropped and counted,
// ambiguous names settle through the tie-break chain, and the call always
// succeeds.
func Resolve(edges []Edge, idx *part.Index, policy Policy) ([]ResolvedEdge, Diagnostics, error) {
	if err := policy.Validate(); err != nil {
		return nil, Diagnostics{}, err
	}

	r := &resolver{idx: idx, policy: policy, memo: make(map[string]TokenResolution)}
	resolved := make([]ResolvedEdge, 0, len(edges))
	diag := Diagnostics{Edges: len(edges)}

	for _, e := range edges {
		rp := r.token(e.Parent)
		rc := r.token(e.Child)
		if policy.Trace {
			diag.Trace = append(diag.Trace, EdgeTrace{Parent: rp, Child: rc})
		}
		if rp.Status.Accepted() && rc.Status.Accepted() {
			resolved = append(resolved, ResolvedEdge{
				Parent:       rp.Number,
				Child:        rc.Number,
				ParentStatus: rp.Status,
				ChildStatus:  rc.Status,
			})
			diag.Resolved++
		} else {
			diag.Dropped++
		}
	}

	r.fill(&diag)
	if policy.Strict() {
		if err := r.fatal(); err != nil {
			return nil, Diagnostics{Edges: len(edges)}, err
		}
	}
	return resolved, diag, nil
}

// ResolveNumbers validates number-based edges against the index. The
// tokens are already part numbers; each must still be known so that every
// edge entering the graph references an indexed part. Unknown numbers are
// dropped (lenient) or fail the call (strict), mirroring [Resolve].
func ResolveNumbers(edges []Edge, idx *part.Index, policy Policy) ([]ResolvedEdge, Diagnostics, error) {
	if err := policy.Validate(); err != nil {
		return nil, Diagnostics{}, err
	}

	memo := make(map[string]TokenResolution)
	token := func(raw string) TokenResolution {
		norm := part.NormalizeIdentifier(raw)
		if res, ok := memo[norm]; ok {
			return res
		}
		res := TokenResolution{Token: norm, Status: StatusUnknown}
		if idx.Known(norm) {
			res.Status = StatusExact
			res.Number = norm
		}
		memo[norm] = res
		return res
	}

	resolved := make([]ResolvedEdge, 0, len(edges))
	diag := Diagnostics{Edges: len(edges)}
	for _, e := range edges {
		rp, rc := token(e.Parent), token(e.Child)
		if policy.Trace {
			diag.Trace = append(diag.Trace, EdgeTrace{Parent: rp, Child: rc})
		}
		if rp.Status.Accepted() && rc.Status.Accepted() {
			resolved = append(resolved, ResolvedEdge{
				Parent:       rp.Number,
				Child:        rc.Number,
				ParentStatus: rp.Status,
				ChildStatus:  rc.Status,
			})
			diag.Resolved++
		} else {
			diag.Dropped++
		}
	}

	for _, res := range sortedResolutions(memo) {
		if res.Status == StatusUnknown {
			diag.Unknown = append(diag.Unknown, res)
		}
	}
	if policy.Strict() && len(diag.Unknown) > 0 {
		causes := make([]error, len(diag.Unknown))
		for i, res := range diag.Unknown {
			causes[i] = errors.New(errors.ErrCodeUnresolvedName, "unknown part number %q", res.Token)
		}
		return nil, Diagnostics{Edges: len(edges)}, errors.NewAggregate(
			errors.ErrCodeUnresolvedName, "edge batch references unknown part numbers", causes)
	}
	return resolved, diag, nil
}

// resolver memoizes per-token decisions for one Resolve call.
type resolver struct {
	idx    *part.Index
	policy Policy
	memo   map[string]TokenResolution
}

// token resolves one raw token through the staged algorithm:
// exact name match, case-folded match, numeric fallback, then the
// ambiguity policy.
func (r *resolver) token(raw string) TokenResolution {
	norm := part.NormalizeIdentifier(raw)
	if res, ok := r.memo[norm]; ok {
		return res
	}
	res := r.resolveToken(norm)
	r.memo[norm] = res
	return res
}

func (r *resolver) resolveToken(norm string) TokenResolution {
	res := TokenResolution{Token: norm}

	exact := r.idx.Candidates(norm)
	if len(exact) == 1 {
		res.Status = StatusExact
		res.Number = exact[0].Number
		return res
	}

	folded := r.idx.FoldedCandidates(norm)
	if len(exact) == 0 && len(folded) == 1 {
		res.Status = StatusCaseInsensitive
		res.Number = folded[0].Number
		return res
	}

	// Prefer the tighter (exact-stage) candidate set when both stages
	// were ambiguous.
	ambiguous := exact
	if len(ambiguous) < 2 {
		ambiguous = folded
	}

	if len(ambiguous) == 0 {
		if r.idx.Known(norm) {
			res.Status = StatusNumericFallback
			res.Number = norm
			return res
		}
		res.Status = StatusUnknown
		return res
	}

	res.Candidates = candidateNumbers(ambiguous)
	if r.policy.Strict() {
		res.Status = StatusAmbiguousRejected
		return res
	}
	res.Status = StatusTieBreak
	res.Number = r.tieBreak(ambiguous)
	return res
}

// tieBreak picks one candidate deterministically: most recent revision
// (when enabled), then preferred view, then preferred container, then the
// lexicographically smallest part number. The comparator chain never
// consults iteration order, so the choice is stable across runs.
func (r *resolver) tieBreak(candidates []part.Candidate) string {
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b part.Candidate) int {
		if r.policy.PreferRevisionRecency {
			if c := compareRevisions(b.Meta.Revision, a.Meta.Revision); c != 0 {
				return c
			}
		}
		if c := preferEqual(a.Meta.View, b.Meta.View, r.policy.PreferredView); c != 0 {
			return c
		}
		if c := preferEqual(a.Meta.Container, b.Meta.Container, r.policy.PreferredContainer); c != 0 {
			return c
		}
		return strings.Compare(a.Number, b.Number)
	})
	return sorted[0].Number
}

// preferEqual orders the candidate matching the configured preference
// first. Returns 0 when preference is unset or both sides tie.
func preferEqual(a, b, preferred string) int {
	if preferred == "" {
		return 0
	}
	switch {
	case a == preferred && b != preferred:
		return -1
	case b == preferred && a != preferred:
		return 1
	}
	return 0
}

// compareRevisions orders revision markers. Revisions that both parse as
// integers compare numerically ("10" after "9"); otherwise they compare
// lexicographically, which matches letter revisions ("A" < "B"). An empty
// revision sorts before any non-empty one.
func compareRevisions(a, b string) int {
	if a == b {
		return 0
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func candidateNumbers(candidates []part.Candidate) []string {
	numbers := make([]string, len(candidates))
	for i, c := range candidates {
		numbers[i] = c.Number
	}
	slices.Sort(numbers)
	return numbers
}

// fill copies memoized decisions into the diagnostics, sorted by token.
func (r *resolver) fill(diag *Diagnostics) {
	for _, res := range sortedResolutions(r.memo) {
		switch res.Status {
		case StatusUnknown, StatusAmbiguousRejected:
			diag.Unknown = append(diag.Unknown, res)
		case StatusTieBreak:
			diag.TieBreaks = append(diag.TieBreaks, res)
		case StatusNumericFallback:
			diag.Fallbacks = append(diag.Fallbacks, res)
		}
	}
}

// fatal builds the aggregated strict-mode error, or nil if every token
// resolved cleanly. The aggregate carries AMBIGUOUS_NAME when ambiguity
// is the only problem; any unknown token makes it UNRESOLVED_NAME.
func (r *resolver) fatal() error {
	var causes []error
	code := errors.ErrCodeAmbiguousName
	for _, res := range sortedResolutions(r.memo) {
		switch res.Status {
		case StatusUnknown:
			code = errors.ErrCodeUnresolvedName
			causes = append(causes, errors.New(errors.ErrCodeUnresolvedName, "unknown name %q", res.Token))
		case StatusAmbiguousRejected:
			causes = append(causes, errors.New(errors.ErrCodeAmbiguousName,
				"ambiguous name %q: candidates %s", res.Token, strings.Join(res.Candidates, ", ")))
		}
	}
	if len(causes) == 0 {
		return nil
	}
	return errors.NewAggregate(code,
		fmt.Sprintf("strict resolution failed for %d token(s)", len(causes)), causes)
}

func sortedResolutions(memo map[string]TokenResolution) []TokenResolution {
	out := make([]TokenResolution, 0, len(memo))
	for _, res := range memo {
		out = append(out, res)
	}
	slices.SortFunc(out, func(a, b TokenResolution) int {
		return strings.Compare(a.Token, b.Token)
	})
	return out
}

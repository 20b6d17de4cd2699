package resolve

import (
	"reflect"
	"strings"
	"testing"

	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/part"
)

func testIndex() *part.Index {
	return part.BuildIndex([]part.Record{
		{Number: "P1", Name: "Bracket"},
		{Number: "P2", Name: "WHEEL ASSY"},
		{Number: "P3", Name: "Frame"},
		// Shared name with distinct metadata for tie-break tests.
		{Number: "E1", Name: "Engine", Meta: part.Meta{Revision: "B", View: "Design"}},
		{Number: "E2", Name: "Engine", Meta: part.Meta{Revision: "A", View: "Manufacturing"}},
		// A part whose number doubles as another edge token.
		{Number: "9000", Name: "Axle"},
	})
}

func TestResolve_Exact(t *testing.T) {
	resolved, diag, err := Resolve([]Edge{{Parent: "Bracket", Child: "Frame"}}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("len(resolved) = %d, want 1", len(resolved))
	}
	got := resolved[0]
	if got.Parent != "P1" || got.Child != "P3" {
		t.Errorf("resolved edge = %s -> %s, want P1 -> P3", got.Parent, got.Child)
	}
	if got.ParentStatus != StatusExact || got.ChildStatus != StatusExact {
		t.Errorf("statuses = %s, %s, want both %s", got.ParentStatus, got.ChildStatus, StatusExact)
	}
	if diag.Resolved != 1 || diag.Dropped != 0 {
		t.Errorf("diag = %+v, want 1 resolved, 0 dropped", diag)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	resolved, _, err := Resolve([]Edge{{Parent: "wheel assy", Child: "Bracket"}}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved[0].Parent != "P2" {
		t.Errorf("parent = %s, want P2", resolved[0].Parent)
	}
	if resolved[0].ParentStatus != StatusCaseInsensitive {
		t.Errorf("parent status = %s, want %s", resolved[0].ParentStatus, StatusCaseInsensitive)
	}
}

func TestResolve_NumericFallback(t *testing.T) {
	resolved, diag, err := Resolve([]Edge{{Parent: "Frame", Child: "9000"}}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved[0].Child != "9000" {
		t.Errorf("child = %s, want 9000", resolved[0].Child)
	}
	if resolved[0].ChildStatus != StatusNumericFallback {
		t.Errorf("child status = %s, want %s", resolved[0].ChildStatus, StatusNumericFallback)
	}
	if len(diag.Fallbacks) != 1 || diag.Fallbacks[0].Token != "9000" {
		t.Errorf("diag.Fallbacks = %v, want [9000]", diag.Fallbacks)
	}
}

func TestResolve_UnknownDroppedLenient(t *testing.T) {
	resolved, diag, err := Resolve([]Edge{
		{Parent: "Bracket", Child: "No Such Part"},
		{Parent: "Bracket", Child: "Frame"},
	}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(resolved) != 1 {
		t.Errorf("len(resolved) = %d, want 1", len(resolved))
	}
	if diag.Dropped != 1 {
		t.Errorf("diag.Dropped = %d, want 1", diag.Dropped)
	}
	if len(diag.Unknown) != 1 || diag.Unknown[0].Token != "No Such Part" {
		t.Errorf("diag.Unknown = %v, want [No Such Part]", diag.Unknown)
	}
}

func TestResolve_TieBreakRevisionRecency(t *testing.T) {
	resolved, diag, err := Resolve([]Edge{{Parent: "Engine", Child: "Bracket"}}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// E1 carries revision B, E2 revision A. Recency wins.
	if resolved[0].Parent != "E1" {
		t.Errorf("parent = %s, want E1", resolved[0].Parent)
	}
	if resolved[0].ParentStatus != StatusTieBreak {
		t.Errorf("parent status = %s, want %s", resolved[0].ParentStatus, StatusTieBreak)
	}
	if len(diag.TieBreaks) != 1 {
		t.Fatalf("len(diag.TieBreaks) = %d, want 1", len(diag.TieBreaks))
	}
	if want := []string{"E1", "E2"}; !reflect.DeepEqual(diag.TieBreaks[0].Candidates, want) {
		t.Errorf("candidates = %v, want %v", diag.TieBreaks[0].Candidates, want)
	}
}

func TestResolve_TieBreakPreferredView(t *testing.T) {
	policy := DefaultPolicy()
	policy.PreferRevisionRecency = false
	policy.PreferredView = "Manufacturing"

	resolved, _, err := Resolve([]Edge{{Parent: "Engine", Child: "Bracket"}}, testIndex(), policy)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved[0].Parent != "E2" {
		t.Errorf("parent = %s, want E2", resolved[0].Parent)
	}
}

func TestResolve_TieBreakSmallestNumber(t *testing.T) {
	idx := part.BuildIndex([]part.Record{
		{Number: "P9", Name: "Clip"},
		{Number: "P2", Name: "Clip"},
	})
	policy := DefaultPolicy()
	policy.PreferRevisionRecency = false

	resolved, _, err := Resolve([]Edge{{Parent: "Clip", Child: "Clip"}}, idx, policy)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// Both endpoints settle on the same number, so the builder will later
	// reject the row as a self-loop; resolution itself stays mechanical.
	if resolved[0].Parent != "P2" || resolved[0].Child != "P2" {
		t.Errorf("edge = %s -> %s, want P2 -> P2", resolved[0].Parent, resolved[0].Child)
	}
}

func TestResolve_RevisionNumericComparison(t *testing.T) {
	idx := part.BuildIndex([]part.Record{
		{Number: "N1", Name: "Gear", Meta: part.Meta{Revision: "9"}},
		{Number: "N2", Name: "Gear", Meta: part.Meta{Revision: "10"}},
	})

	resolved, _, err := Resolve([]Edge{{Parent: "Gear", Child: "Gear"}}, idx, DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// "10" beats "9" numerically even though it sorts first as a string.
	if resolved[0].Parent != "N2" {
		t.Errorf("parent = %s, want N2", resolved[0].Parent)
	}
}

func TestResolve_StrictAggregatesAllFailures(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = ModeStrict

	resolved, _, err := Resolve([]Edge{
		{Parent: "Engine", Child: "Missing One"},
		{Parent: "Missing Two", Child: "Bracket"},
	}, testIndex(), policy)

	if err == nil {
		t.Fatal("Resolve() error = nil, want aggregated failure")
	}
	if resolved != nil {
		t.Errorf("resolved = %v, want nil under strict failure", resolved)
	}
	// Unknown tokens are in the mix, so the aggregate reads UNRESOLVED.
	if !errors.Is(err, errors.ErrCodeUnresolvedName) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeUnresolvedName)
	}
	msg := err.Error()
	for _, token := range []string{"Engine", "Missing One", "Missing Two"} {
		if !strings.Contains(msg, token) {
			t.Errorf("error message missing token %q: %s", token, msg)
		}
	}
	// The ambiguous cause names its candidates.
	for _, number := range []string{"E1", "E2"} {
		if !strings.Contains(msg, number) {
			t.Errorf("error message missing candidate %q: %s", number, msg)
		}
	}
}

func TestResolve_StrictPurelyAmbiguous(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = ModeStrict

	_, _, err := Resolve([]Edge{{Parent: "Engine", Child: "Bracket"}}, testIndex(), policy)
	if err == nil {
		t.Fatal("Resolve() error = nil, want ambiguous failure")
	}
	if !errors.Is(err, errors.ErrCodeAmbiguousName) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeAmbiguousName)
	}
	msg := err.Error()
	for _, number := range []string{"E1", "E2"} {
		if !strings.Contains(msg, number) {
			t.Errorf("error message missing candidate %q: %s", number, msg)
		}
	}
}

func TestResolve_EdgeOrderDoesNotChangeDecisions(t *testing.T) {
	edges := []Edge{
		{Parent: "Engine", Child: "Bracket"},
		{Parent: "Bracket", Child: "Frame"},
		{Parent: "Frame", Child: "9000"},
	}
	reversed := []Edge{edges[2], edges[1], edges[0]}

	a, diagA, err := Resolve(edges, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	b, diagB, err := Resolve(reversed, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	decisions := func(edges []ResolvedEdge) map[string]string {
		m := make(map[string]string)
		for _, e := range edges {
			m[e.Parent+"->"+e.Child] = string(e.ParentStatus) + ":" + string(e.ChildStatus)
		}
		return m
	}
	if !reflect.DeepEqual(decisions(a), decisions(b)) {
		t.Errorf("decisions differ with edge order: %v vs %v", decisions(a), decisions(b))
	}
	if !reflect.DeepEqual(diagA.TieBreaks, diagB.TieBreaks) {
		t.Errorf("tie-break diagnostics differ with edge order")
	}
}

func TestResolve_Trace(t *testing.T) {
	policy := DefaultPolicy()
	policy.Trace = true

	_, diag, err := Resolve([]Edge{{Parent: "Bracket", Child: "Frame"}}, testIndex(), policy)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(diag.Trace) != 1 {
		t.Fatalf("len(diag.Trace) = %d, want 1", len(diag.Trace))
	}
	if diag.Trace[0].Parent.Token != "Bracket" || diag.Trace[0].Child.Token != "Frame" {
		t.Errorf("trace = %+v, want Bracket/Frame", diag.Trace[0])
	}
}

func TestResolveNumbers(t *testing.T) {
	resolved, diag, err := ResolveNumbers([]Edge{
		{Parent: "P1", Child: "P2"},
		{Parent: "P1", Child: "P404"},
	}, testIndex(), DefaultPolicy())
	if err != nil {
		t.Fatalf("ResolveNumbers() error = %v", err)
	}
	if len(resolved) != 1 || resolved[0].Child != "P2" {
		t.Errorf("resolved = %v, want one P1 -> P2 edge", resolved)
	}
	if diag.Dropped != 1 || len(diag.Unknown) != 1 {
		t.Errorf("diag = %+v, want 1 dropped, 1 unknown", diag)
	}
}

func TestResolveNumbers_Strict(t *testing.T) {
	policy := DefaultPolicy()
	policy.Mode = ModeStrict

	_, _, err := ResolveNumbers([]Edge{{Parent: "P1", Child: "P404"}}, testIndex(), policy)
	if err == nil {
		t.Fatal("ResolveNumbers() error = nil, want strict failure")
	}
	if !errors.Is(err, errors.ErrCodeUnresolvedName) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeUnresolvedName)
	}
}

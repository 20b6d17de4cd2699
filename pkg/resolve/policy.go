// Package resolve turns raw parent/child edges, whose tokens are part
// names or part numbers, into number/number edges using the cross-reference
// index built by [pkg/part].
//
// Resolution is deterministic: the same edges, index, and policy always
// produce the same output, independent of input ordering. Ambiguity is
// handled as data, not control flow: each token receives a
// [Status] and the full decision trail lands in [Diagnostics]. Only
// strict-mode violations abort the run, and when they do the returned
// error names every offending token, not just the first.
package resolve

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/bomgraph/bomgraph/pkg/errors"
)

// Mode selects how unresolved and ambiguous names are handled.
type Mode string

const (
	// ModeStrict aborts the whole resolution on any unknown or ambiguous
	// token. No partial edge set is returned.
	ModeStrict Mode = "strict"

	// ModeLenient drops unknown tokens with a diagnostic and settles
	// ambiguous tokens with the deterministic tie-break chain.
	ModeLenient Mode = "lenient"
)

// Policy configures name resolution. The zero value is not usable; start
// from [DefaultPolicy] or load a TOML file with [LoadPolicy].
type Policy struct {
	// Mode is strict or lenient. Default lenient.
	Mode Mode `toml:"mode"`

	// PreferredView, when set, prefers ambiguous candidates whose view
	// metadata matches it (e.g. "Design" vs "Manufacturing").
	PreferredView string `toml:"preferred_view"`

	// PreferredContainer, when set, prefers ambiguous candidates whose
	// container metadata matches it.
	PreferredContainer string `toml:"preferred_container"`

	// PreferRevisionRecency prefers the candidate with the most recent
	// revision marker. Default true.
	PreferRevisionRecency bool `toml:"prefer_revision_recency"`

	// Trace records a per-edge resolution trace in the diagnostics.
	// Off by default; traces grow linearly with the input.
	Trace bool `toml:"trace"`
}

// DefaultPolicy returns the lenient default policy with revision-recency
// tie-breaking enabled.
func DefaultPolicy() Policy {
	return Policy{
		Mode:                  ModeLenient,
		PreferRevisionRecency: true,
	}
}

// Validate checks that the policy mode is recognized.
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeStrict, ModeLenient:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidPolicy, "invalid mode: %q (must be strict or lenient)", p.Mode)
	}
}

// Strict reports whether the policy aborts on unresolved or ambiguous names.
func (p Policy) Strict() bool { return p.Mode == ModeStrict }

// Merge overlays another policy on p, field by field. Set fields of the
// overlay win; zero fields keep p's values. This is how flag-built
// policies layer over a loaded policy file without erasing it.
func (p Policy) Merge(overlay Policy) Policy {
	if overlay.Mode != "" {
		p.Mode = overlay.Mode
	}
	if overlay.PreferredView != "" {
		p.PreferredView = overlay.PreferredView
	}
	if overlay.PreferredContainer != "" {
		p.PreferredContainer = overlay.PreferredContainer
	}
	if overlay.Trace {
		p.Trace = true
	}
	return p
}

// LoadPolicy reads a TOML policy file, applying defaults for unset fields.
//
// Example file:
//
//	mode = "lenient"
//	preferred_view = "Design"
//	prefer_revision_recency = true
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "read policy %s", path)
	}
	p := DefaultPolicy()
	meta, err := toml.Decode(string(data), &p)
	if err != nil {
		return Policy{}, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "parse policy %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Policy{}, errors.New(errors.ErrCodeInvalidPolicy, "unknown policy key %q in %s", undecoded[0].String(), path)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

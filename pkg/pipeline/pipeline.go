// Package pipeline runs the complete load → index → resolve → build →
// emit flow. CLI and server share it so a run behaves the same from every
// entry point.
//
// # Stages
//
//  1. Load: read part and relationship CSV exports
//  2. Index: build the number/name cross-reference
//  3. Resolve: rewrite raw edges onto part numbers per policy
//  4. Build: assemble the deduplicated BOM graph with closure
//  5. Dataset: collect nodes, edges, and diagnostics into emit records
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    PartFiles: []string{"parts.csv"},
//	    EdgeFile:  "bom.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = emit.ExportJSON(result.Dataset, "out.json")
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/resolve"
)

// Options configures one pipeline run. The struct serializes to JSON so
// the server can echo the effective configuration in run reports.
type Options struct {
	// PartFiles are the parts exports to index, merged in order. Later
	// files overwrite names and metadata from earlier ones.
	PartFiles []string `json:"part_files"`

	// EdgeFile is the relationship export. Its header decides whether
	// tokens are part numbers, display names, or hierarchy levels.
	EdgeFile string `json:"edge_file"`

	// PolicyFile optionally points at a TOML policy, used as the base
	// the Policy overlay is merged onto.
	PolicyFile string `json:"policy_file,omitempty"`

	// Policy overlays the policy file, or the defaults when no file is
	// given. Set fields win; zero fields keep the base values.
	Policy resolve.Policy `json:"policy"`

	// Refresh skips the cache lookup and overwrites the cached entry.
	Refresh bool `json:"refresh,omitempty"`

	// Logger is used for stage progress. Defaults to a discard logger.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent; every Runner entry point calls it.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.PartFiles) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one parts file is required")
	}
	if o.EdgeFile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "an edge file is required")
	}
	base := resolve.DefaultPolicy()
	if o.PolicyFile != "" {
		loaded, err := resolve.LoadPolicy(o.PolicyFile)
		if err != nil {
			return err
		}
		base = loaded
	}
	o.Policy = base.Merge(o.Policy)
	if err := o.Policy.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Stats contains timing and size information for one run.
type Stats struct {
	LoadTime    time.Duration `json:"load_time"`
	ResolveTime time.Duration `json:"resolve_time"`
	BuildTime   time.Duration `json:"build_time"`

	Parts int `json:"parts"`
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// CacheInfo reports whether the run was served from cache.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}

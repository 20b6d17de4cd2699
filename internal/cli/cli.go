// Package cli implements the bomgraph command-line interface.
//
// This package provides commands for importing BOM and parts exports,
// inspecting the cross-reference index, validating assembly structure,
// rendering Graphviz output, and serving a finished run over HTTP. The
// CLI is built using cobra with structured logging via charmbracelet/log.
//
// # Commands
//
//   - import: Run the full load → resolve → build → emit pipeline
//   - xref: Dump the part number / name cross-reference
//   - check: Validate structure only (cycles, self-loops, duplicates)
//   - visualize: Render the assembly graph as DOT or SVG
//   - serve: Expose a finished run over a read-only HTTP API
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bomgraph/bomgraph/pkg/buildinfo"
	"github.com/bomgraph/bomgraph/pkg/cache"
	"github.com/bomgraph/bomgraph/pkg/pipeline"
	"github.com/bomgraph/bomgraph/pkg/resolve"
)

// appName is the application name used for directories and display.
const appName = "bomgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Bomgraph builds part graphs from BOM exports",
		Long:         `Bomgraph cross-references part numbers with display names, resolves name-based BOM relationships onto stable identifiers, and builds a deduplicated assembly graph with reverse edges and transitive closure.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.importCommand())
	root.AddCommand(c.xrefCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. With redisAddr set the
// shared Redis backend is used instead of the local file cache.
func (c *CLI) newRunner(cmd *cobra.Command, noCache bool, redisAddr string) (*pipeline.Runner, error) {
	store, err := newCache(cmd, noCache, redisAddr)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.Logger), nil
}

func newCache(cmd *cobra.Command, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(cmd.Context(), redisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG convention.
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// policyFlags is the flag set shared by commands that resolve edges.
type policyFlags struct {
	policyFile string
	strict     bool
	trace      bool
	view       string
	container  string
}

func (f *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policyFile, "policy", "", "TOML policy file")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on any unknown or ambiguous name")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "record a per-edge resolution trace")
	cmd.Flags().StringVar(&f.view, "prefer-view", "", "view preferred when breaking ties")
	cmd.Flags().StringVar(&f.container, "prefer-container", "", "container preferred when breaking ties")
}

// policy builds the flag overlay. Only flags the user set are filled in;
// the pipeline merges the overlay onto the policy file, or onto the
// defaults, so flags always win over the file.
func (f *policyFlags) policy() resolve.Policy {
	var p resolve.Policy
	if f.strict {
		p.Mode = resolve.ModeStrict
	}
	p.PreferredView = f.view
	p.PreferredContainer = f.container
	p.Trace = f.trace
	return p
}

// pipelineOptions assembles pipeline options from common arguments.
func (f *policyFlags) pipelineOptions(partFiles []string, edgeFile string, refresh bool) pipeline.Options {
	return pipeline.Options{
		PartFiles:  partFiles,
		EdgeFile:   edgeFile,
		PolicyFile: f.policyFile,
		Policy:     f.policy(),
		Refresh:    refresh,
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bomgraph/bomgraph/pkg/emit"
	"github.com/bomgraph/bomgraph/pkg/pipeline"
)

// importOpts holds the command-line flags for the import command.
type importOpts struct {
	policyFlags
	parts     []string
	output    string
	noCache   bool
	refresh   bool
	redisAddr string

	neo4jURI  string
	neo4jUser string
	neo4jPass string
	neo4jDB   string
	neo4jWipe bool
	batchSize int

	mongoURI string
	mongoDB  string
}

// importCommand creates the import command: the full pipeline plus the
// configured emitters.
func (c *CLI) importCommand() *cobra.Command {
	opts := importOpts{}

	cmd := &cobra.Command{
		Use:   "import <edge-file>",
		Short: "Import BOM exports and emit the assembly graph",
		Long: `Import cross-references parts exports against a BOM relationship export,
resolves name-based edges onto part numbers, builds the deduplicated
assembly graph, and emits the result.

The edge file header decides how rows are interpreted: Level/Number
columns mean an indented hierarchy export, Parent/Child Number columns
mean number-based edges, Parent/Child Name columns mean name-based edges
that go through resolution.

Examples:
  bomgraph import bom.csv --parts parts.csv -o graph.json
  bomgraph import bom.csv --parts a.csv --parts b.csv --strict
  bomgraph import bom.csv --parts parts.csv --neo4j-uri bolt://localhost:7687 --neo4j-user neo4j`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd, args[0], opts)
		},
	}

	opts.policyFlags.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.parts, "parts", "p", nil, "parts export (repeatable, merged in order)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "JSON output file (stdout if empty and no other emitter)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared cache (host:port)")

	cmd.Flags().StringVar(&opts.neo4jURI, "neo4j-uri", "", "Neo4j bolt URI (enables the Neo4j emitter)")
	cmd.Flags().StringVar(&opts.neo4jUser, "neo4j-user", "neo4j", "Neo4j user")
	cmd.Flags().StringVar(&opts.neo4jPass, "neo4j-password", os.Getenv("NEO4J_PASSWORD"), "Neo4j password (defaults to $NEO4J_PASSWORD)")
	cmd.Flags().StringVar(&opts.neo4jDB, "neo4j-database", "", "Neo4j database name")
	cmd.Flags().BoolVar(&opts.neo4jWipe, "neo4j-wipe", false, "wipe the target database before loading")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", emit.DefaultBatchSize, "batch size for database loads")

	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (enables the MongoDB emitter)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-database", appName, "MongoDB database name")

	_ = cmd.MarkFlagRequired("parts")
	return cmd
}

func (c *CLI) runImport(cmd *cobra.Command, edgeFile string, opts importOpts) error {
	runner, err := c.newRunner(cmd, opts.noCache, opts.redisAddr)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	prog := newProgress(loggerFromContext(cmd.Context()))
	res, err := runner.Execute(cmd.Context(), opts.pipelineOptions(opts.parts, edgeFile, opts.refresh))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d parts and %d edges", res.Stats.Parts, res.Stats.Edges))

	printRunSummary(res)

	for _, em := range buildEmitters(opts) {
		if err := em.Emit(cmd.Context(), res.Dataset); err != nil {
			return err
		}
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// buildEmitters assembles the emitter list from the flags. With nothing
// configured the dataset goes to stdout as JSON.
func buildEmitters(opts importOpts) []emit.Emitter {
	var emitters []emit.Emitter
	if opts.neo4jURI != "" {
		emitters = append(emitters, &emit.Neo4jEmitter{Config: emit.Neo4jConfig{
			URI:       opts.neo4jURI,
			User:      opts.neo4jUser,
			Password:  opts.neo4jPass,
			Database:  opts.neo4jDB,
			BatchSize: opts.batchSize,
			Wipe:      opts.neo4jWipe,
		}})
	}
	if opts.mongoURI != "" {
		emitters = append(emitters, &emit.MongoEmitter{Config: emit.MongoConfig{
			URI:       opts.mongoURI,
			Database:  opts.mongoDB,
			BatchSize: opts.batchSize,
		}})
	}
	if opts.output != "" {
		emitters = append(emitters, &emit.JSONEmitter{Path: opts.output})
	}
	if len(emitters) == 0 {
		emitters = append(emitters, &emit.JSONEmitter{Out: os.Stdout})
	}
	return emitters
}

// printRunSummary prints the headline stats and every diagnostic a
// reviewer would want to audit.
func printRunSummary(res *pipeline.Result) {
	printStats(res.Stats.Parts, res.Stats.Edges, len(res.Dataset.Closure), res.CacheInfo.Hit)

	report := res.Dataset.Diagnostics
	if report.Index.Dropped > 0 {
		printWarning("%d part records dropped (no part number)", report.Index.Dropped)
	}
	if n := len(report.MultiNamed); n > 0 {
		printWarning("%d parts recorded under more than one name", n)
	}
	if report.Resolution.Dropped > 0 {
		printWarning("%d edges dropped during resolution", report.Resolution.Dropped)
	}
	for _, tok := range report.Resolution.Unknown {
		printDetail("unknown: %s", tok.Token)
	}
	for _, tok := range report.Resolution.TieBreaks {
		printDetail("tie-break: %s → %s (of %d candidates)", tok.Token, tok.Number, len(tok.Candidates))
	}
	if report.Graph.SelfLoops > 0 {
		printWarning("%d self-referencing rows skipped", report.Graph.SelfLoops)
	}
	if report.Graph.Cycle != nil {
		printError("cycle detected: %v", report.Graph.Cycle.Cycle)
	}
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bomgraph/bomgraph/pkg/bom"
	"github.com/bomgraph/bomgraph/pkg/cache"
	"github.com/bomgraph/bomgraph/pkg/emit"
	"github.com/bomgraph/bomgraph/pkg/errors"
	"github.com/bomgraph/bomgraph/pkg/part"
	"github.com/bomgraph/bomgraph/pkg/resolve"
	"github.com/bomgraph/bomgraph/pkg/source"
)

// Runner executes pipeline runs with caching. It is stateless except for
// the cache and logger, so one Runner can serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// uses the default.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Result contains the outputs of one pipeline run. On a cache hit the
// graph and index are rebuilt from the cached dataset, so both are always
// available to callers like the API server.
type Result struct {
	RunID     string
	Dataset   *emit.Dataset
	Graph     *bom.Graph
	Index     *part.Index
	Stats     Stats
	CacheInfo CacheInfo
}

// Execute runs the complete pipeline. Inputs are keyed by content hash,
// so rerunning over unchanged files with the same policy is served from
// cache.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	key, err := r.cacheKey(opts)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh {
		if res, ok := r.lookup(ctx, key); ok {
			opts.Logger.Info("served from cache", "run_id", res.RunID, "key", key)
			return res, nil
		}
	}

	res, err := r.run(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.CacheInfo.Key = key

	if data, err := json.Marshal(res.Dataset); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLDataset); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		}
	}
	return res, nil
}

// run executes the stages without touching the cache.
func (r *Runner) run(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()
	res := &Result{RunID: runID}

	loadStart := time.Now()
	var records []part.Record
	for _, path := range opts.PartFiles {
		batch, err := source.LoadParts(path)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	edges, err := source.LoadEdges(opts.EdgeFile)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = time.Since(loadStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Index = part.BuildIndex(records)
	res.Stats.Parts = res.Index.Len()
	opts.Logger.Info("indexed parts",
		"records", res.Index.Stats().Records,
		"parts", res.Index.Len(),
		"dropped", res.Index.Stats().Dropped,
		"duration", res.Stats.LoadTime)

	resolveStart := time.Now()
	var (
		resolved []resolve.ResolvedEdge
		diag     resolve.Diagnostics
	)
	switch edges.Mode {
	case source.EdgeModeNames:
		resolved, diag, err = resolve.Resolve(edges.Edges, res.Index, opts.Policy)
	default:
		resolved, diag, err = resolve.ResolveNumbers(edges.Edges, res.Index, opts.Policy)
	}
	if err != nil {
		return nil, err
	}
	res.Stats.ResolveTime = time.Since(resolveStart)
	opts.Logger.Info("resolved edges",
		"edges", diag.Edges,
		"resolved", diag.Resolved,
		"dropped", diag.Dropped,
		"duration", res.Stats.ResolveTime)

	buildStart := time.Now()
	graph, err := bom.Build(toBOMEdges(resolved))
	if err != nil {
		var cycle *bom.CycleError
		if !stderrors.As(err, &cycle) {
			return nil, err
		}
		opts.Logger.Warn("assembly hierarchy contains a cycle", "cycle", cycle.Cycle)
	}
	res.Graph = graph
	res.Stats.BuildTime = time.Since(buildStart)
	res.Stats.Nodes = graph.NodeCount()
	res.Stats.Edges = graph.EdgeCount()
	opts.Logger.Info("built graph",
		"nodes", graph.NodeCount(),
		"edges", graph.EdgeCount(),
		"duration", res.Stats.BuildTime)

	res.Dataset = emit.NewDataset(runID, res.Index, graph, emit.Report{
		Index:           res.Index.Stats(),
		MultiNamed:      res.Index.MultiNamed(),
		Resolution:      diag,
		Graph:           graph.Diagnostics(),
		SkippedEdgeRows: edges.Skipped,
	})
	return res, nil
}

// cacheKey hashes the input file contents and the policy. File paths do
// not participate, so renaming an export does not invalidate the entry.
func (r *Runner) cacheKey(opts Options) (string, error) {
	hashes := make([]string, 0, len(opts.PartFiles)+1)
	for _, path := range append(append([]string{}, opts.PartFiles...), opts.EdgeFile) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		hashes = append(hashes, cache.Hash(data))
	}
	return cache.Key("dataset", hashes, opts.Policy), nil
}

// lookup tries to serve a run from cache. A corrupt entry is a miss.
func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}

	var ds emit.Dataset
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&ds); err != nil {
		return nil, false
	}
	graph, index, err := rebuild(&ds)
	if err != nil {
		return nil, false
	}
	return &Result{
		RunID:   ds.RunID,
		Dataset: &ds,
		Graph:   graph,
		Index:   index,
		Stats: Stats{
			Parts: index.Len(),
			Nodes: graph.NodeCount(),
			Edges: graph.EdgeCount(),
		},
		CacheInfo: CacheInfo{Hit: true, Key: key},
	}, true
}

// rebuild reconstructs the graph and index from a dataset. Direct edges
// are replayed with their occurrence counts so the rebuilt graph matches
// the original exactly.
func rebuild(ds *emit.Dataset) (*bom.Graph, *part.Index, error) {
	var raw []bom.Edge
	for _, e := range ds.DirectEdges {
		count := max(e.Count, 1)
		for range count {
			raw = append(raw, bom.Edge{Parent: e.Parent, Child: e.Child})
		}
	}
	graph, err := bom.Build(raw)
	if err != nil {
		var cycle *bom.CycleError
		if !stderrors.As(err, &cycle) {
			return nil, nil, err
		}
	}

	records := make([]part.Record, 0, len(ds.Nodes))
	for _, n := range ds.Nodes {
		records = append(records, part.Record{Number: n.Number, Name: n.Name, Meta: n.Meta})
	}
	return graph, part.BuildIndex(records), nil
}

func toBOMEdges(resolved []resolve.ResolvedEdge) []bom.Edge {
	edges := make([]bom.Edge, len(resolved))
	for i, e := range resolved {
		edges[i] = bom.Edge{Parent: e.Parent, Child: e.Child}
	}
	return edges
}

func (r *Runner) applyLogger(opts *Options) {
	if r.Logger != nil {
		opts.Logger = r.Logger
	}
}

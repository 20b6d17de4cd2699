package emit

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bomgraph/bomgraph/pkg/errors"
)

// Neo4jConfig holds the connection settings for a Neo4j target.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
	// BatchSize caps how many records each UNWIND statement carries.
	// Zero means DefaultBatchSize.
	BatchSize int
	// Wipe removes all existing nodes and relationships before loading.
	Wipe bool
}

// DefaultBatchSize is the UNWIND batch size used when none is configured.
const DefaultBatchSize = 1000

// Neo4jEmitter loads a dataset into Neo4j over bolt. Parts become Part
// nodes keyed by number, direct edges become HAS_COMPONENT relationships,
// reverse edges USED_IN, and closure pairs PART_OF_ASSEMBLY.
type Neo4jEmitter struct {
	Config Neo4jConfig
}

// Emit implements [Emitter]. All writes go through batched UNWIND
// statements so large assemblies load in a bounded number of round trips.
func (e *Neo4jEmitter) Emit(ctx context.Context, ds *Dataset) error {
	driver, err := neo4j.NewDriverWithContext(e.Config.URI,
		neo4j.BasicAuth(e.Config.User, e.Config.Password, ""))
	if err != nil {
		return errors.Wrap(errors.ErrCodeEmit, err, "connect to %s", e.Config.URI)
	}
	defer driver.Close(ctx)

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeEmit, err, "verify connectivity to %s", e.Config.URI)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.Config.Database})
	defer session.Close(ctx)

	if e.Config.Wipe {
		if err := e.run(ctx, session, "MATCH (n) DETACH DELETE n", nil); err != nil {
			return errors.Wrap(errors.ErrCodeEmit, err, "wipe database")
		}
	}
	if err := e.run(ctx, session,
		"CREATE CONSTRAINT part_number IF NOT EXISTS FOR (p:Part) REQUIRE p.number IS UNIQUE", nil); err != nil {
		return errors.Wrap(errors.ErrCodeEmit, err, "create constraint")
	}

	if err := e.loadNodes(ctx, session, ds.Nodes); err != nil {
		return err
	}
	if err := e.loadEdges(ctx, session, ds.DirectEdges, "HAS_COMPONENT", true); err != nil {
		return err
	}
	if err := e.loadEdges(ctx, session, ds.ReverseEdges, "USED_IN", false); err != nil {
		return err
	}
	return e.loadClosure(ctx, session, ds.Closure)
}

func (e *Neo4jEmitter) batchSize() int {
	if e.Config.BatchSize > 0 {
		return e.Config.BatchSize
	}
	return DefaultBatchSize
}

func (e *Neo4jEmitter) run(ctx context.Context, session neo4j.SessionWithContext, cypher string, params map[string]any) error {
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	return err
}

func (e *Neo4jEmitter) loadNodes(ctx context.Context, session neo4j.SessionWithContext, nodes []Node) error {
	const cypher = `
UNWIND $rows AS row
MERGE (p:Part {number: row.number})
SET p.name = row.name,
    p.revision = row.revision,
    p.view = row.view,
    p.container = row.container,
    p.source = row.source`

	for start := 0; start < len(nodes); start += e.batchSize() {
		end := min(start+e.batchSize(), len(nodes))
		rows := make([]map[string]any, 0, end-start)
		for _, n := range nodes[start:end] {
			rows = append(rows, map[string]any{
				"number":    n.Number,
				"name":      n.Name,
				"revision":  n.Meta.Revision,
				"view":      n.Meta.View,
				"container": n.Meta.Container,
				"source":    n.Meta.Source,
			})
		}
		if err := e.run(ctx, session, cypher, map[string]any{"rows": rows}); err != nil {
			return errors.Wrap(errors.ErrCodeEmit, err, "load parts batch at %d", start)
		}
	}
	return nil
}

func (e *Neo4jEmitter) loadEdges(ctx context.Context, session neo4j.SessionWithContext, edges []Edge, rel string, counted bool) error {
	cypher := `
UNWIND $rows AS row
MATCH (parent:Part {number: row.parent})
MATCH (child:Part {number: row.child})
MERGE (parent)-[r:` + rel + `]->(child)`
	if counted {
		cypher += "\nSET r.count = row.count"
	}

	for start := 0; start < len(edges); start += e.batchSize() {
		end := min(start+e.batchSize(), len(edges))
		rows := make([]map[string]any, 0, end-start)
		for _, edge := range edges[start:end] {
			row := map[string]any{"parent": edge.Parent, "child": edge.Child}
			if counted {
				row["count"] = edge.Count
			}
			rows = append(rows, row)
		}
		if err := e.run(ctx, session, cypher, map[string]any{"rows": rows}); err != nil {
			return errors.Wrap(errors.ErrCodeEmit, err, "load %s batch at %d", rel, start)
		}
	}
	return nil
}

func (e *Neo4jEmitter) loadClosure(ctx context.Context, session neo4j.SessionWithContext, pairs []Pair) error {
	const cypher = `
UNWIND $rows AS row
MATCH (d:Part {number: row.descendant})
MATCH (a:Part {number: row.ancestor})
MERGE (d)-[:PART_OF_ASSEMBLY]->(a)`

	for start := 0; start < len(pairs); start += e.batchSize() {
		end := min(start+e.batchSize(), len(pairs))
		rows := make([]map[string]any, 0, end-start)
		for _, p := range pairs[start:end] {
			rows = append(rows, map[string]any{"descendant": p.Descendant, "ancestor": p.Ancestor})
		}
		if err := e.run(ctx, session, cypher, map[string]any{"rows": rows}); err != nil {
			return errors.Wrap(errors.ErrCodeEmit, err, "load closure batch at %d", start)
		}
	}
	return nil
}

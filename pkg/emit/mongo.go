package emit

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bomgraph/bomgraph/pkg/errors"
)

// MongoConfig holds the connection settings for a MongoDB target.
type MongoConfig struct {
	URI      string
	Database string
	// BatchSize caps how many documents each InsertMany carries.
	// Zero means DefaultBatchSize.
	BatchSize int
}

// MongoEmitter archives a dataset into MongoDB, one collection per record
// kind. Each document carries the run ID so several runs can coexist and
// be compared.
type MongoEmitter struct {
	Config MongoConfig
}

// Emit implements [Emitter].
func (e *MongoEmitter) Emit(ctx context.Context, ds *Dataset) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(e.Config.URI))
	if err != nil {
		return errors.Wrap(errors.ErrCodeEmit, err, "connect to %s", e.Config.URI)
	}
	defer client.Disconnect(ctx)

	db := client.Database(e.Config.Database)

	docs := make([]any, 0, len(ds.Nodes))
	for _, n := range ds.Nodes {
		docs = append(docs, nodeDoc{RunID: ds.RunID, Node: n})
	}
	if err := e.insert(ctx, db.Collection("parts"), docs); err != nil {
		return err
	}

	docs = docs[:0]
	for _, edge := range ds.DirectEdges {
		docs = append(docs, edgeDoc{RunID: ds.RunID, Edge: edge})
	}
	if err := e.insert(ctx, db.Collection("direct_edges"), docs); err != nil {
		return err
	}

	docs = docs[:0]
	for _, edge := range ds.ReverseEdges {
		docs = append(docs, edgeDoc{RunID: ds.RunID, Edge: edge})
	}
	if err := e.insert(ctx, db.Collection("reverse_edges"), docs); err != nil {
		return err
	}

	docs = docs[:0]
	for _, p := range ds.Closure {
		docs = append(docs, pairDoc{RunID: ds.RunID, Pair: p})
	}
	if err := e.insert(ctx, db.Collection("closure"), docs); err != nil {
		return err
	}

	if _, err := db.Collection("runs").InsertOne(ctx, ds.Diagnostics); err != nil {
		return errors.Wrap(errors.ErrCodeEmit, err, "insert run report")
	}
	return nil
}

func (e *MongoEmitter) batchSize() int {
	if e.Config.BatchSize > 0 {
		return e.Config.BatchSize
	}
	return DefaultBatchSize
}

func (e *MongoEmitter) insert(ctx context.Context, coll *mongo.Collection, docs []any) error {
	for start := 0; start < len(docs); start += e.batchSize() {
		end := min(start+e.batchSize(), len(docs))
		if _, err := coll.InsertMany(ctx, docs[start:end]); err != nil {
			return errors.Wrap(errors.ErrCodeEmit, err, "insert into %s at %d", coll.Name(), start)
		}
	}
	return nil
}

type nodeDoc struct {
	RunID string `bson:"run_id"`
	Node  `bson:",inline"`
}

type edgeDoc struct {
	RunID string `bson:"run_id"`
	Edge  `bson:",inline"`
}

type pairDoc struct {
	RunID string `bson:"run_id"`
	Pair  `bson:",inline"`
}

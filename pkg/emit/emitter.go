package emit

import "context"

// Emitter writes a finished dataset to a target backend. Implementations
// must not mutate the dataset; the same dataset may be handed to several
// emitters in one run.
type Emitter interface {
	Emit(ctx context.Context, ds *Dataset) error
}

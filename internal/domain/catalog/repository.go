package catalog

import "context"

type Repo interface {
	// Upsert inserts or refreshes one variant by its natural key.
	Upsert(ctx context.Context, rec Record) error
	// All returns every stored variant.
	All(ctx context.Context) ([]Variant, error)
}

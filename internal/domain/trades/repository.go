package trades

import "context"

type Repo interface {
	// Upsert inserts or refreshes one transaction by its natural key.
	Upsert(ctx context.Context, rec Record) error
}

// ClassifyRow is the slice of a stored transaction the backfill needs to
// re-derive its event type.
type ClassifyRow struct {
	ID            int64
	PureProductID string
	PureVariantID string
	SpotPremium   float64
}

// BackfillRepo pages stored transactions and rewrites derived labels.
type BackfillRepo interface {
	Count(ctx context.Context) (int64, error)
	Page(ctx context.Context, limit, offset int) ([]ClassifyRow, error)
	SetEventType(ctx context.Context, id int64, et EventType) error
}

package trades

import "context"

// Event is one trade reported by the provider for a variant. CreatedAt is
// the raw provider timestamp; parsing happens in the transaction builder so
// a malformed value skips one event, never a batch.
type Event struct {
	Kind              string
	CreatedAt         string
	Price             float64
	Quantity          int32
	SpotPremium       float64
	SpotPremiumDollar float64
}

// Fetcher returns the full reported trade history for one variant per call;
// the upstream contract has no pagination cursor.
type Fetcher interface {
	FetchActivity(ctx context.Context, pureProductID, pureVariantID string) ([]Event, error)
}

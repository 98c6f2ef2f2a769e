package catalog

import "time"

// Variant is a stored product variant row. The natural key is
// (PureProductID, PureVariantID); ID is the surrogate referenced by
// transactions.
type Variant struct {
	ID            int64
	PureProductID string
	PureVariantID string
	Name          string
	SKU           string
	Material      string
	VariantLabel  string
	ImageURL      *string

	// Market snapshot from the most recent product sync. Both premiums are
	// nil when the upstream market had no live offers/listings; the
	// timestamp is refreshed on every sync regardless.
	HighestOfferPremium  *float64
	LowestListingPremium *float64
	MarketDataUpdatedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is an upsert-ready variant, without surrogate or audit fields.
type Record struct {
	PureProductID string
	PureVariantID string
	Name          string
	SKU           string
	Material      string
	VariantLabel  string
	ImageURL      *string

	HighestOfferPremium  *float64
	LowestListingPremium *float64
	MarketDataUpdatedAt  time.Time
}

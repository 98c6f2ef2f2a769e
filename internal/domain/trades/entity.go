package trades

import "time"

// Transaction is a stored trade event. Natural key:
// (EventTime, PureProductID, PureVariantID) — the provider re-reports
// events, so this triple collapses duplicates on upsert.
type Transaction struct {
	ID                    int64
	ProductID             int64 // surrogate id of the owning catalog variant
	PureProductID         string
	PureVariantID         string
	Price                 float64
	Quantity              int32
	SpotPremiumPercentage float64
	SpotPremiumDollar     float64
	EventTime             time.Time
	EventType             EventType
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Record is an upsert-ready transaction.
type Record struct {
	ProductID             int64
	PureProductID         string
	PureVariantID         string
	Price                 float64
	Quantity              int32
	SpotPremiumPercentage float64
	SpotPremiumDollar     float64
	EventTime             time.Time
	EventType             EventType
}

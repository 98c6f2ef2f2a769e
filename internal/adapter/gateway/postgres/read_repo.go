package postgres

import (
	"context"
	"database/sql"
	"time"
)

// ReadRepo backs the read-only API service. It has no write methods by
// construction.
type ReadRepo struct {
	db *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{db: db} }

// TransactionRow is a trade joined with its product's descriptive fields.
type TransactionRow struct {
	Name                  string
	SKU                   string
	Material              string
	VariantLabel          string
	EventTime             time.Time
	EventType             *string
	Quantity              int32
	Price                 float64
	SpotPremiumPercentage float64
	SpotPremiumDollar     float64
}

// LatestTransactions returns trades newest-first. limit <= 0 means no limit.
func (r *ReadRepo) LatestTransactions(ctx context.Context, limit int) ([]TransactionRow, error) {
	q := `
		SELECT p.name, p.sku, p.material, p.variant_label,
		       t.event_time, t.event_type, t.quantity,
		       t.price::FLOAT8,
		       t.spot_premium_percentage::FLOAT8,
		       t.spot_premium_dollar::FLOAT8
		FROM transactions t
		JOIN products p ON t.product_id = p.id
		ORDER BY t.event_time DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, q+` LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(
			&t.Name, &t.SKU, &t.Material, &t.VariantLabel,
			&t.EventTime, &t.EventType, &t.Quantity,
			&t.Price, &t.SpotPremiumPercentage, &t.SpotPremiumDollar,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ProductRow is one catalog variant with its market snapshot.
type ProductRow struct {
	PureProductID        string
	PureVariantID        string
	Name                 string
	SKU                  string
	Material             string
	VariantLabel         string
	ImageURL             *string
	HighestOfferPremium  *float64
	LowestListingPremium *float64
	MarketDataUpdatedAt  *time.Time
}

func (r *ReadRepo) Products(ctx context.Context) ([]ProductRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pure_product_id, pure_variant_id,
		       name, sku, material, variant_label, image_url,
		       highest_offer_spot_premium::FLOAT8,
		       lowest_listing_spot_premium::FLOAT8,
		       market_data_updated_at
		FROM products
		ORDER BY name, variant_label
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(
			&p.PureProductID, &p.PureVariantID,
			&p.Name, &p.SKU, &p.Material, &p.VariantLabel, &p.ImageURL,
			&p.HighestOfferPremium, &p.LowestListingPremium, &p.MarketDataUpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByEventType aggregates stored trades per derived label. Rows whose
// event_type is NULL (pre-backfill) are reported under "unclassified".
func (r *ReadRepo) CountByEventType(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(event_type, 'unclassified'), COUNT(*)
		FROM transactions
		GROUP BY 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var et string
		var n int64
		if err := rows.Scan(&et, &n); err != nil {
			return nil, err
		}
		out[et] = n
	}
	return out, rows.Err()
}

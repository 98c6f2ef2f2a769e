package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
)

type ProductsRepo struct {
	db *sql.DB
}

func NewProductsRepo(db *sql.DB) *ProductsRepo { return &ProductsRepo{db: db} }

// Upsert writes one variant keyed by (pure_product_id, pure_variant_id).
// Deliberately one row per statement: a bad record must fail alone, and
// rows are never archived — the catalog only grows.
func (r *ProductsRepo) Upsert(ctx context.Context, rec catalog.Record) error {
	const q = `
		INSERT INTO products (
			pure_product_id, pure_variant_id,
			name, sku, material, variant_label, image_url,
			highest_offer_spot_premium, lowest_listing_spot_premium, market_data_updated_at,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, now(), now())
		ON CONFLICT (pure_product_id, pure_variant_id) DO UPDATE SET
			name                        = EXCLUDED.name,
			sku                         = EXCLUDED.sku,
			material                    = EXCLUDED.material,
			variant_label               = EXCLUDED.variant_label,
			image_url                   = EXCLUDED.image_url,
			highest_offer_spot_premium  = EXCLUDED.highest_offer_spot_premium,
			lowest_listing_spot_premium = EXCLUDED.lowest_listing_spot_premium,
			market_data_updated_at      = EXCLUDED.market_data_updated_at,
			updated_at                  = now()
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.PureProductID, rec.PureVariantID,
		rec.Name, rec.SKU, rec.Material, rec.VariantLabel, rec.ImageURL,
		rec.HighestOfferPremium, rec.LowestListingPremium, rec.MarketDataUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product %s/%s: %w", rec.PureProductID, rec.PureVariantID, err)
	}
	return nil
}

// All loads every stored variant, snapshot included.
func (r *ProductsRepo) All(ctx context.Context) ([]catalog.Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pure_product_id, pure_variant_id,
		       name, sku, material, variant_label, image_url,
		       highest_offer_spot_premium, lowest_listing_spot_premium, market_data_updated_at,
		       created_at, updated_at
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Variant
	for rows.Next() {
		var v catalog.Variant
		if err := rows.Scan(
			&v.ID, &v.PureProductID, &v.PureVariantID,
			&v.Name, &v.SKU, &v.Material, &v.VariantLabel, &v.ImageURL,
			&v.HighestOfferPremium, &v.LowestListingPremium, &v.MarketDataUpdatedAt,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

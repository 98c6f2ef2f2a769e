package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/trades"
)

type TransactionsRepo struct {
	db *sql.DB
}

func NewTransactionsRepo(db *sql.DB) *TransactionsRepo { return &TransactionsRepo{db: db} }

// Upsert writes one transaction keyed by
// (event_time, pure_product_id, pure_variant_id). The provider re-reports
// events; the natural key collapses them with last-write-wins fields.
func (r *TransactionsRepo) Upsert(ctx context.Context, rec trades.Record) error {
	const q = `
		INSERT INTO transactions (
			product_id, pure_product_id, pure_variant_id,
			price, quantity, spot_premium_percentage, spot_premium_dollar,
			event_time, event_type,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		ON CONFLICT (event_time, pure_product_id, pure_variant_id) DO UPDATE SET
			product_id              = EXCLUDED.product_id,
			price                   = EXCLUDED.price,
			quantity                = EXCLUDED.quantity,
			spot_premium_percentage = EXCLUDED.spot_premium_percentage,
			spot_premium_dollar     = EXCLUDED.spot_premium_dollar,
			event_type              = EXCLUDED.event_type,
			updated_at              = now()
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ProductID, rec.PureProductID, rec.PureVariantID,
		rec.Price, rec.Quantity, rec.SpotPremiumPercentage, rec.SpotPremiumDollar,
		rec.EventTime, string(rec.EventType),
	)
	if err != nil {
		return fmt.Errorf("upsert transaction %s/%s@%s: %w",
			rec.PureProductID, rec.PureVariantID, rec.EventTime, err)
	}
	return nil
}

// Page returns stored transactions in stable id order for backfill paging.
func (r *TransactionsRepo) Page(ctx context.Context, limit, offset int) ([]trades.ClassifyRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pure_product_id, pure_variant_id, spot_premium_percentage::FLOAT8
		FROM transactions
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trades.ClassifyRow
	for rows.Next() {
		var c trades.ClassifyRow
		if err := rows.Scan(&c.ID, &c.PureProductID, &c.PureVariantID, &c.SpotPremium); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetEventType rewrites the derived classification for one stored row.
func (r *TransactionsRepo) SetEventType(ctx context.Context, id int64, et trades.EventType) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET event_type = $1, updated_at = now()
		WHERE id = $2
	`, string(et), id)
	if err != nil {
		return fmt.Errorf("set event_type tx=%d: %w", id, err)
	}
	return nil
}

// Count returns the total number of stored transactions.
func (r *TransactionsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

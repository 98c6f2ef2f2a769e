package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	pg "github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/postgres"
	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
	"github.com/mitchwolfe1/pure-analytics/internal/domain/trades"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/store"
)

func fp(f float64) *float64 { return &f }

func TestUpsertIdempotence_Integration(t *testing.T) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set; integration test skipped")
	}
	db, err := store.OpenPostgres(dsn, 2, 3*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := pg.NewProductsRepo(db)
	txs := pg.NewTransactionsRepo(db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := catalog.Record{
		PureProductID:       "it-p1",
		PureVariantID:       "it-v1",
		Name:                "Gold Eagle",
		SKU:                 "GE-1",
		Material:            "gold",
		VariantLabel:        "1 oz",
		HighestOfferPremium: fp(2.0),
		MarketDataUpdatedAt: now,
	}
	if err := products.Upsert(ctx, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// second write must land on the same row with the new field values
	rec.Name = "Gold Eagle (2024)"
	rec.LowestListingPremium = fp(6.0)
	if err := products.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	all, err := products.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got *catalog.Variant
	matches := 0
	for i := range all {
		if all[i].PureProductID == "it-p1" && all[i].PureVariantID == "it-v1" {
			matches++
			got = &all[i]
		}
	}
	if matches != 1 {
		t.Fatalf("rows=%d want exactly 1", matches)
	}
	if got.Name != "Gold Eagle (2024)" || got.LowestListingPremium == nil || *got.LowestListingPremium != 6.0 {
		t.Fatalf("second write not applied: %+v", got)
	}

	// natural-key dedup on transactions: same triple, different price
	et := time.Date(2024, 4, 30, 20, 4, 5, 0, time.UTC)
	trec := trades.Record{
		ProductID:             got.ID,
		PureProductID:         "it-p1",
		PureVariantID:         "it-v1",
		Price:                 2400,
		Quantity:              1,
		SpotPremiumPercentage: 4.0,
		SpotPremiumDollar:     96,
		EventTime:             et,
		EventType:             trades.EventTypeBuy,
	}
	if err := txs.Upsert(ctx, trec); err != nil {
		t.Fatalf("tx upsert: %v", err)
	}
	trec.Price = 2450
	if err := txs.Upsert(ctx, trec); err != nil {
		t.Fatalf("tx re-upsert: %v", err)
	}

	var price float64
	var n int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(price::FLOAT8) FROM transactions
		WHERE event_time = $1 AND pure_product_id = $2 AND pure_variant_id = $3
	`, et, "it-p1", "it-v1").Scan(&n, &price); err != nil {
		t.Fatal(err)
	}
	if n != 1 || price != 2450 {
		t.Fatalf("dedup failed: rows=%d price=%v", n, price)
	}

	// backfill paging sees the row and can rewrite its label
	page, err := txs.Page(ctx, 1000, 0)
	if err != nil {
		t.Fatal(err)
	}
	var found *trades.ClassifyRow
	for i := range page {
		if page[i].PureProductID == "it-p1" && page[i].PureVariantID == "it-v1" {
			found = &page[i]
		}
	}
	if found == nil {
		t.Fatal("upserted transaction not in page")
	}
	if err := txs.SetEventType(ctx, found.ID, trades.EventTypeSell); err != nil {
		t.Fatal(err)
	}
}

package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
	"github.com/mitchwolfe1/pure-analytics/internal/domain/trades"
)

type variantKey struct {
	pureProductID string
	pureVariantID string
}

// Anomaly is a stored transaction whose variant is missing from the
// catalog. It stays unclassified; the write path treats an unknown variant
// as a hard error, so an anomaly here means the catalog itself regressed.
type Anomaly struct {
	TxID          int64
	PureProductID string
	PureVariantID string
}

// Report is the outcome of one backfill run.
type Report struct {
	Total     int64
	Updated   int
	Anomalies []Anomaly
	Failed    int // update statements that errored
}

// Interactor re-derives event_type for every stored transaction in fixed
// pages, resolving variants through one in-memory index instead of a lookup
// per row.
type Interactor struct {
	Products catalog.Repo
	Txs      trades.BackfillRepo
	PageSize int
	Logger   *slog.Logger
}

func (i *Interactor) log() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}

func (i *Interactor) Run(ctx context.Context) (Report, error) {
	pageSize := i.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	variants, err := i.Products.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load variants: %w", err)
	}
	index := make(map[variantKey]catalog.Variant, len(variants))
	for _, v := range variants {
		index[variantKey{v.PureProductID, v.PureVariantID}] = v
	}

	total, err := i.Txs.Count(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("count transactions: %w", err)
	}
	i.log().Info("backfill start", "transactions", total, "variants", len(variants), "page_size", pageSize)

	report := Report{Total: total}
	for offset := 0; ; offset += pageSize {
		rows, err := i.Txs.Page(ctx, pageSize, offset)
		if err != nil {
			return report, fmt.Errorf("page offset=%d: %w", offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			v, ok := index[variantKey{row.PureProductID, row.PureVariantID}]
			if !ok {
				i.log().Error("variant not found for transaction",
					"tx", row.ID, "product", row.PureProductID, "variant", row.PureVariantID)
				report.Anomalies = append(report.Anomalies, Anomaly{
					TxID:          row.ID,
					PureProductID: row.PureProductID,
					PureVariantID: row.PureVariantID,
				})
				continue
			}
			et := trades.Classify(row.SpotPremium, v.HighestOfferPremium, v.LowestListingPremium)
			if err := i.Txs.SetEventType(ctx, row.ID, et); err != nil {
				i.log().Error("event type update failed", "tx", row.ID, "err", err)
				report.Failed++
				continue
			}
			report.Updated++
		}
		i.log().Info("backfill progress", "updated", report.Updated, "of", total)
	}

	i.log().Info("backfill done",
		"updated", report.Updated, "anomalies", len(report.Anomalies), "failed", report.Failed)
	return report, nil
}

package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
)

// RecordError attributes one failed write to its natural key.
type RecordError struct {
	PureProductID string
	PureVariantID string
	Err           error
}

// UpsertReport accumulates per-record write outcomes for one batch.
type UpsertReport struct {
	Succeeded int
	Failed    []RecordError
}

// ProductSyncReport is the outcome of one product-sync cycle.
type ProductSyncReport struct {
	Build   catalog.BuildReport
	Upserts UpsertReport
}

// ProductSyncer drives one product-sync cycle: build upsert-ready records
// from the provider, then write them one at a time. A failed record is
// reported and skipped; only a failed build aborts the cycle.
type ProductSyncer struct {
	Fetcher catalog.Fetcher
	Repo    catalog.Repo
	Logger  *slog.Logger
}

func (s *ProductSyncer) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *ProductSyncer) Run(ctx context.Context) (ProductSyncReport, error) {
	s.log().Info("product sync start")

	records, build, err := s.Fetcher.BuildRecords(ctx)
	if err != nil {
		return ProductSyncReport{Build: build}, fmt.Errorf("build products: %w", err)
	}

	report := ProductSyncReport{Build: build}
	for _, rec := range records {
		if err := s.Repo.Upsert(ctx, rec); err != nil {
			s.log().Error("product upsert failed",
				"product", rec.PureProductID, "variant", rec.PureVariantID, "err", err)
			report.Upserts.Failed = append(report.Upserts.Failed, RecordError{
				PureProductID: rec.PureProductID,
				PureVariantID: rec.PureVariantID,
				Err:           err,
			})
			continue
		}
		report.Upserts.Succeeded++
	}

	s.log().Info("product sync done",
		"upserted", report.Upserts.Succeeded,
		"failed", len(report.Upserts.Failed),
		"skipped_chunks", len(build.SkippedChunks),
		"dropped_variants", build.DroppedVariants)
	return report, nil
}

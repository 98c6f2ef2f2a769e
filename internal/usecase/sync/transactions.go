package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
	"github.com/mitchwolfe1/pure-analytics/internal/domain/trades"
)

// Provider timestamps look like "2024-04-30 15:04:05.123-0500"; fraction
// and zone offset are both optional. Offset-less values are taken as UTC.
var eventTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
}

func parseEventTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range eventTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// buildTransaction turns one reported event into an upsert-ready record,
// classifying it against the variant's current market snapshot.
func buildTransaction(event trades.Event, variant catalog.Variant) (trades.Record, error) {
	eventTime, err := parseEventTime(event.CreatedAt)
	if err != nil {
		return trades.Record{}, fmt.Errorf("parse event time %q: %w", event.CreatedAt, err)
	}
	return trades.Record{
		ProductID:             variant.ID,
		PureProductID:         variant.PureProductID,
		PureVariantID:         variant.PureVariantID,
		Price:                 event.Price,
		Quantity:              event.Quantity,
		SpotPremiumPercentage: event.SpotPremium,
		SpotPremiumDollar:     event.SpotPremiumDollar,
		EventTime:             eventTime,
		EventType:             trades.Classify(event.SpotPremium, variant.HighestOfferPremium, variant.LowestListingPremium),
	}, nil
}

// VariantError attributes one failed activity fetch to its variant.
type VariantError struct {
	PureProductID string
	PureVariantID string
	Err           error
}

// TransactionSyncReport is the outcome of one transaction-sync cycle.
type TransactionSyncReport struct {
	Variants       int
	FailedVariants []VariantError
	Events         int
	SkippedEvents  int // unparseable timestamps
	Upserts        UpsertReport
}

// TransactionSyncer drives one transaction-sync cycle over every stored
// variant, strictly sequentially. One bad variant never aborts the sweep.
type TransactionSyncer struct {
	Fetcher  trades.Fetcher
	Products catalog.Repo
	Txs      trades.Repo
	Logger   *slog.Logger
}

func (s *TransactionSyncer) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *TransactionSyncer) Run(ctx context.Context) (TransactionSyncReport, error) {
	s.log().Info("transaction sync start")

	variants, err := s.Products.All(ctx)
	if err != nil {
		return TransactionSyncReport{}, fmt.Errorf("load variants: %w", err)
	}

	report := TransactionSyncReport{Variants: len(variants)}
	for i, v := range variants {
		l := s.log().With("product", v.PureProductID, "variant", v.PureVariantID)
		l.Debug("fetching activity", "n", i+1, "of", len(variants))

		events, err := s.Fetcher.FetchActivity(ctx, v.PureProductID, v.PureVariantID)
		if err != nil {
			l.Error("activity fetch failed", "err", err)
			report.FailedVariants = append(report.FailedVariants, VariantError{
				PureProductID: v.PureProductID,
				PureVariantID: v.PureVariantID,
				Err:           err,
			})
			continue
		}
		report.Events += len(events)

		for _, e := range events {
			rec, err := buildTransaction(e, v)
			if err != nil {
				l.Warn("skipping event", "err", err)
				report.SkippedEvents++
				continue
			}
			if err := s.Txs.Upsert(ctx, rec); err != nil {
				l.Error("transaction upsert failed", "event_time", rec.EventTime, "err", err)
				report.Upserts.Failed = append(report.Upserts.Failed, RecordError{
					PureProductID: v.PureProductID,
					PureVariantID: v.PureVariantID,
					Err:           err,
				})
				continue
			}
			report.Upserts.Succeeded++
		}
	}

	s.log().Info("transaction sync done",
		"variants", report.Variants,
		"failed_variants", len(report.FailedVariants),
		"events", report.Events,
		"skipped_events", report.SkippedEvents,
		"upserted", report.Upserts.Succeeded,
		"failed_upserts", len(report.Upserts.Failed))
	return report, nil
}

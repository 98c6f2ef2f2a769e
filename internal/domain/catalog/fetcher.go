package catalog

import "context"

// SkippedChunk records one product-detail batch dropped after retry
// exhaustion.
type SkippedChunk struct {
	Batch int // 1-based
	Size  int
	Err   error
}

// BuildReport accumulates the outcome of one catalog build so callers can
// assert on partial results instead of scraping logs.
type BuildReport struct {
	RequestedProducts int
	FetchedProducts   int
	SkippedChunks     []SkippedChunk
	DroppedVariants   int // variants whose product detail never arrived
}

// Fetcher builds upsert-ready variant records from the upstream provider.
type Fetcher interface {
	BuildRecords(ctx context.Context) ([]Record, BuildReport, error)
}

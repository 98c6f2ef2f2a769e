package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pg "github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/postgres"
	"github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/pureapi"
	"github.com/mitchwolfe1/pure-analytics/internal/config"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/logx"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/store"
	"github.com/mitchwolfe1/pure-analytics/internal/pkg/retry"
	"github.com/mitchwolfe1/pure-analytics/internal/usecase/backfill"
	"github.com/mitchwolfe1/pure-analytics/internal/usecase/sync"
)

// One-off job: refresh market snapshots from the provider, then re-derive
// event_type for every stored transaction against the fresh snapshots.
func main() {
	logger := logx.New("pure-analytics-backfill")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := store.OpenPostgres(cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseAcquireTimeout)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(db, "file://migrations"); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := retry.New(retry.Policy{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		RateLimitDelay: cfg.RateLimitDelay,
	}, logger)
	client := pureapi.New(cfg.APIBaseURL, cfg.PureAPIKey, exec, cfg.ProductBatchSize, logger)

	products := pg.NewProductsRepo(db)
	transactions := pg.NewTransactionsRepo(db)

	// Step 1: refresh market snapshots so classification uses current data.
	logger.Info("refreshing market snapshots")
	productSync := &sync.ProductSyncer{Fetcher: client, Repo: products, Logger: logger}
	if _, err := productSync.Run(ctx); err != nil {
		logger.Error("snapshot refresh failed", "err", err)
		os.Exit(1)
	}

	// Step 2: re-derive event types page by page.
	bf := &backfill.Interactor{
		Products: products,
		Txs:      transactions,
		PageSize: cfg.TransactionPageSize,
		Logger:   logger,
	}
	report, err := bf.Run(ctx)
	if err != nil {
		logger.Error("backfill failed", "err", err)
		os.Exit(1)
	}
	logger.Info("backfill finished",
		"transactions", report.Total,
		"updated", report.Updated,
		"anomalies", len(report.Anomalies),
		"failed", report.Failed)
}

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
	"github.com/mitchwolfe1/pure-analytics/internal/infra/scheduler"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/store"
	"github.com/mitchwolfe1/pure-analytics/internal/pkg/retry"
	"github.com/mitchwolfe1/pure-analytics/internal/usecase/sync"
)

func main() {
	logger := logx.New("pure-analytics-ingest")

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
	logger.Info("database ready")

	exec := retry.New(retry.Policy{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		RateLimitDelay: cfg.RateLimitDelay,
	}, logger)
	client := pureapi.New(cfg.APIBaseURL, cfg.PureAPIKey, exec, cfg.ProductBatchSize, logger)

	products := pg.NewProductsRepo(db)
	transactions := pg.NewTransactionsRepo(db)

	productSync := &sync.ProductSyncer{Fetcher: client, Repo: products, Logger: logger}
	transactionSync := &sync.TransactionSyncer{Fetcher: client, Products: products, Txs: transactions, Logger: logger}

	loop := &scheduler.Loop{
		ProductSync: func(ctx context.Context) error {
			_, err := productSync.Run(ctx)
			return err
		},
		TransactionSync: func(ctx context.Context) error {
			_, err := transactionSync.Run(ctx)
			return err
		},
		ProductInterval:     cfg.ProductSyncInterval,
		TransactionInterval: cfg.TransactionSyncInterval,
		Logger:              logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ingestion service ready")
	loop.Run(ctx)
	logger.Info("ingestion service stopped")
}

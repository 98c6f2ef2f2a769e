package main

import (
	"os"

	"github.com/mitchwolfe1/pure-analytics/internal/app"
	"github.com/mitchwolfe1/pure-analytics/internal/config"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/logx"
	"github.com/mitchwolfe1/pure-analytics/internal/infra/store"
)

func main() {
	logger := logx.New("pure-analytics-api")

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

	router := app.Build(db)
	logger.Info("api listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

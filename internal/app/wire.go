package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	httpctrl "github.com/mitchwolfe1/pure-analytics/internal/adapter/controller/http"
	pg "github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/postgres"
)

// Build wires the read-only API router. The service has no write routes:
// the store is owned by the ingestion side.
func Build(db *sql.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	reads := pg.NewReadRepo(db)

	httpctrl.NewHealthController(db).Register(router)
	httpctrl.NewTransactionsController(reads).Register(router)
	httpctrl.NewProductsController(reads).Register(router)

	return router
}

package httpctrl

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	pg "github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/postgres"
)

// TransactionsQuery is the read contract this controller needs; the full
// ReadRepo satisfies it.
type TransactionsQuery interface {
	LatestTransactions(ctx context.Context, limit int) ([]pg.TransactionRow, error)
	CountByEventType(ctx context.Context) (map[string]int64, error)
}

type TransactionsController struct {
	Q TransactionsQuery
}

func NewTransactionsController(q TransactionsQuery) *TransactionsController {
	return &TransactionsController{Q: q}
}

func (c *TransactionsController) Register(r *gin.Engine) {
	r.GET("/transactions", c.list)
	r.GET("/stats", c.stats)
}

type transactionView struct {
	Name                  string    `json:"name"`
	SKU                   string    `json:"sku"`
	Material              string    `json:"material"`
	VariantLabel          string    `json:"variant_label"`
	EventTime             time.Time `json:"event_time"`
	EventType             *string   `json:"event_type"`
	Quantity              int32     `json:"quantity"`
	Price                 float64   `json:"price"`
	SpotPremiumPercentage float64   `json:"spot_premium_percentage"`
	SpotPremiumDollar     float64   `json:"spot_premium_dollar"`
}

func (c *TransactionsController) list(ctx *gin.Context) {
	limit := 0
	if q := ctx.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	rows, err := c.Q.LatestTransactions(ctx, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]transactionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, transactionView{
			Name:                  r.Name,
			SKU:                   r.SKU,
			Material:              r.Material,
			VariantLabel:          r.VariantLabel,
			EventTime:             r.EventTime,
			EventType:             r.EventType,
			Quantity:              r.Quantity,
			Price:                 r.Price,
			SpotPremiumPercentage: r.SpotPremiumPercentage,
			SpotPremiumDollar:     r.SpotPremiumDollar,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (c *TransactionsController) stats(ctx *gin.Context) {
	counts, err := c.Q.CountByEventType(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"event_types": counts})
}

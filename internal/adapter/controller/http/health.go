package httpctrl

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mitchwolfe1/pure-analytics/internal/infra/store"
)

type HealthController struct {
	db store.Pinger
}

func NewHealthController(db store.Pinger) *HealthController { return &HealthController{db: db} }

func (h *HealthController) Register(r *gin.Engine) {
	r.GET("/health", h.get)
	r.HEAD("/health", h.head)
}

func (h *HealthController) get(c *gin.Context) {
	checks := map[string]string{"db": "ok"}

	if err := store.PingCtx(h.db, 500*time.Millisecond); err != nil {
		checks["db"] = "down"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "pure-analytics-api",
		"checks":  checks,
		"now":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthController) head(c *gin.Context) {
	if err := store.PingCtx(h.db, 500*time.Millisecond); err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}

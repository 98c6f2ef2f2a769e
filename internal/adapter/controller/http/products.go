package httpctrl

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pg "github.com/mitchwolfe1/pure-analytics/internal/adapter/gateway/postgres"
)

type ProductsQuery interface {
	Products(ctx context.Context) ([]pg.ProductRow, error)
}

type ProductsController struct {
	Q ProductsQuery
}

func NewProductsController(q ProductsQuery) *ProductsController { return &ProductsController{Q: q} }

func (c *ProductsController) Register(r *gin.Engine) {
	r.GET("/products", c.list)
}

type productView struct {
	PureProductID        string     `json:"pure_product_id"`
	PureVariantID        string     `json:"pure_variant_id"`
	Name                 string     `json:"name"`
	SKU                  string     `json:"sku"`
	Material             string     `json:"material"`
	VariantLabel         string     `json:"variant_label"`
	ImageURL             *string    `json:"image_url"`
	HighestOfferPremium  *float64   `json:"highest_offer_spot_premium"`
	LowestListingPremium *float64   `json:"lowest_listing_spot_premium"`
	MarketDataUpdatedAt  *time.Time `json:"market_data_updated_at"`
}

func (c *ProductsController) list(ctx *gin.Context) {
	rows, err := c.Q.Products(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]productView, 0, len(rows))
	for _, r := range rows {
		out = append(out, productView{
			PureProductID:        r.PureProductID,
			PureVariantID:        r.PureVariantID,
			Name:                 r.Name,
			SKU:                  r.SKU,
			Material:             r.Material,
			VariantLabel:         r.VariantLabel,
			ImageURL:             r.ImageURL,
			HighestOfferPremium:  r.HighestOfferPremium,
			LowestListingPremium: r.LowestListingPremium,
			MarketDataUpdatedAt:  r.MarketDataUpdatedAt,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"products": out})
}

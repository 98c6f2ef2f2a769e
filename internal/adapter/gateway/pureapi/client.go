package pureapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitchwolfe1/pure-analytics/internal/domain/catalog"
	"github.com/mitchwolfe1/pure-analytics/internal/domain/trades"
	"github.com/mitchwolfe1/pure-analytics/internal/pkg/retry"
)

const (
	productOptionsPath  = "/products/get-product-options/v1"
	getProductsPath     = "/products/get-products/v1"
	productActivityPath = "/products/get-product-activity/v1"
)

// Client talks to the Pure data provider. All network calls go through the
// retry executor, so sequential use of one client is rate-limited by
// construction.
type Client struct {
	base      string
	key       string
	hc        *http.Client
	exec      *retry.Executor
	batchSize int
	logger    *slog.Logger

	now func() time.Time
}

func New(base, apiKey string, exec *retry.Executor, productBatchSize int, l *slog.Logger) *Client {
	if productBatchSize <= 0 {
		productBatchSize = 30
	}
	return &Client{
		base: base,
		key:  apiKey,
		hc: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		exec:      exec,
		batchSize: productBatchSize,
		logger:    l,
		now:       time.Now,
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.key)

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("pure api %s: http %d: %s", path, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(v)
}

// FetchVariants retrieves the full option tree and flattens it to one entry
// per (product, variant).
func (c *Client) FetchVariants(ctx context.Context) ([]FlatVariant, error) {
	resp, err := retry.Do(ctx, c.exec, "fetch product options", func(ctx context.Context) (productOptionsResponse, error) {
		var v productOptionsResponse
		err := c.getJSON(ctx, productOptionsPath, nil, &v)
		return v, err
	})
	if err != nil {
		return nil, err
	}

	var out []FlatVariant
	for _, p := range resp.Data {
		for _, v := range p.Variants {
			out = append(out, FlatVariant{
				PureProductID: p.Value,
				PureVariantID: v.Value,
				VariantLabel:  v.Label,
			})
		}
	}
	c.log().Info("flattened product options", "variants", len(out))
	return out, nil
}

// DedupeProductIDs collapses variants to the unique product ids they
// reference, keeping first-seen order so batch boundaries are stable.
func DedupeProductIDs(variants []FlatVariant) []string {
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if _, ok := seen[v.PureProductID]; ok {
			continue
		}
		seen[v.PureProductID] = struct{}{}
		out = append(out, v.PureProductID)
	}
	return out
}

func chunkIDs(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// FetchProducts fetches details for ids in fixed-size chunks. A chunk that
// still fails after retries is skipped, not fatal; the report says what is
// missing.
func (c *Client) FetchProducts(ctx context.Context, ids []string) (map[string]Product, catalog.BuildReport) {
	report := catalog.BuildReport{RequestedProducts: len(ids)}
	chunks := chunkIDs(ids, c.batchSize)
	products := make(map[string]Product, len(ids))

	for i, chunk := range chunks {
		batch := i + 1
		label := fmt.Sprintf("fetch products batch %d/%d", batch, len(chunks))
		q := url.Values{"ids": {strings.Join(chunk, ",")}}

		got, err := retry.Do(ctx, c.exec, label, func(ctx context.Context) ([]Product, error) {
			var v productsResponse
			if err := c.getJSON(ctx, getProductsPath, q, &v); err != nil {
				return nil, err
			}
			return v.Data, nil
		})
		if err != nil {
			c.log().Error("skipping product batch", "batch", batch, "of", len(chunks), "size", len(chunk), "err", err)
			report.SkippedChunks = append(report.SkippedChunks, catalog.SkippedChunk{Batch: batch, Size: len(chunk), Err: err})
			continue
		}
		for _, p := range got {
			products[p.ID] = p
		}
		report.FetchedProducts += len(got)
	}

	c.log().Info("fetched product details", "fetched", report.FetchedProducts, "requested", report.RequestedProducts)
	return products, report
}

// BuildRecords runs the full product pipeline: flatten, dedupe, chunked
// detail fetch, then an inner join of variants against fetched products.
// Records always carry a fresh snapshot timestamp, even when both market
// extremes are absent — an empty market is still a fresh observation.
func (c *Client) BuildRecords(ctx context.Context) ([]catalog.Record, catalog.BuildReport, error) {
	variants, err := c.FetchVariants(ctx)
	if err != nil {
		return nil, catalog.BuildReport{}, err
	}

	ids := DedupeProductIDs(variants)
	c.log().Info("deduplicated products", "products", len(ids), "variants", len(variants))

	products, report := c.FetchProducts(ctx, ids)

	stamp := c.now().UTC()
	records := make([]catalog.Record, 0, len(variants))
	for _, v := range variants {
		p, ok := products[v.PureProductID]
		if !ok {
			report.DroppedVariants++
			continue
		}
		var highest, lowest *float64
		for _, pv := range p.Variants {
			if pv.Title != v.VariantLabel {
				continue
			}
			if pv.HighestOffer != nil {
				highest = &pv.HighestOffer.SpotPremium
			}
			if pv.LowestListing != nil {
				lowest = &pv.LowestListing.SpotPremium
			}
			break
		}
		records = append(records, catalog.Record{
			PureProductID:        v.PureProductID,
			PureVariantID:        v.PureVariantID,
			Name:                 p.Title,
			SKU:                  p.SKU,
			Material:             p.Material,
			VariantLabel:         v.VariantLabel,
			ImageURL:             p.ImageURL,
			HighestOfferPremium:  highest,
			LowestListingPremium: lowest,
			MarketDataUpdatedAt:  stamp,
		})
	}

	if report.DroppedVariants > 0 {
		c.log().Warn("dropped variants without product details", "dropped", report.DroppedVariants)
	}
	c.log().Info("built upsert-ready records", "records", len(records))
	return records, report, nil
}

// FetchActivity returns all reported trade events for one variant. The
// endpoint returns full history per call; there is no pagination cursor.
func (c *Client) FetchActivity(ctx context.Context, productID, variantID string) ([]trades.Event, error) {
	label := fmt.Sprintf("fetch activity product=%s variant=%s", productID, variantID)
	q := url.Values{"productId": {productID}, "variantId": {variantID}}

	raw, err := retry.Do(ctx, c.exec, label, func(ctx context.Context) ([]ActivityEvent, error) {
		var v activityResponse
		if err := c.getJSON(ctx, productActivityPath, q, &v); err != nil {
			return nil, err
		}
		return v.Data, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]trades.Event, 0, len(raw))
	for _, e := range raw {
		out = append(out, trades.Event{
			Kind:              e.Event,
			CreatedAt:         e.CreatedAt,
			Price:             e.Price,
			Quantity:          e.Quantity,
			SpotPremium:       e.SpotPremium,
			SpotPremiumDollar: e.SpotPremiumDollar,
		})
	}
	return out, nil
}

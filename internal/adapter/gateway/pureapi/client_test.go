package pureapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/mitchwolfe1/pure-analytics/internal/pkg/retry"
)

// zero-delay executor so tests do not actually sleep
func fastExec(maxRetries int) *retry.Executor {
	return retry.New(retry.Policy{MaxRetries: maxRetries}, nil)
}

func testClient(ts *httptest.Server, batchSize int) *Client {
	c := New(ts.URL, "test-key", fastExec(1), batchSize, nil)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestChunkIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	chunks := chunkIDs(ids, 3)

	if len(chunks) != 3 { // ceil(7/3)
		t.Fatalf("chunks=%d", len(chunks))
	}
	var flat []string
	for _, ch := range chunks {
		if len(ch) > 3 {
			t.Fatalf("oversized chunk: %v", ch)
		}
		flat = append(flat, ch...)
	}
	if !reflect.DeepEqual(flat, ids) {
		t.Fatalf("order not preserved: %v", flat)
	}
}

func TestDedupeProductIDs_FirstSeenOrder(t *testing.T) {
	in := []FlatVariant{
		{PureProductID: "p2", PureVariantID: "v1"},
		{PureProductID: "p1", PureVariantID: "v2"},
		{PureProductID: "p2", PureVariantID: "v3"},
		{PureProductID: "p3", PureVariantID: "v4"},
	}
	got := DedupeProductIDs(in)
	want := []string{"p2", "p1", "p3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFetchVariants_FlattensTree(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(productOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[
			{"value":"p1","label":"Gold Eagle","variants":[
				{"value":"v1","label":"1 oz"},
				{"value":"v2","label":"1/2 oz"}]},
			{"value":"p2","label":"Silver Maple","variants":[
				{"value":"v3","label":"1 oz"}]}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	got, err := testClient(ts, 30).FetchVariants(context.Background())
	if err != nil {
		t.Fatalf("FetchVariants: %v", err)
	}
	want := []FlatVariant{
		{"p1", "v1", "1 oz"},
		{"p1", "v2", "1/2 oz"},
		{"p2", "v3", "1 oz"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}
}

func TestBuildRecords_PartialChunkFailure(t *testing.T) {
	// two products, batch size 1 → two chunks; the p2 chunk always fails
	mux := http.NewServeMux()
	mux.HandleFunc(productOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"value":"p1","label":"Gold Eagle","variants":[{"value":"v1","label":"1 oz"}]},
			{"value":"p2","label":"Silver Maple","variants":[{"value":"v2","label":"1 oz"}]}
		]}`))
	})
	mux.HandleFunc(getProductsPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ids") {
		case "p1":
			w.Write([]byte(`{"data":[{"id":"p1","title":"Gold Eagle","sku":"GE-1","material":"gold","variants":[
				{"title":"1 oz","highestOffer":{"spotPremium":2.5},"lowestListing":{"spotPremium":6.0}}]}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	recs, report, err := testClient(ts, 1).BuildRecords(context.Background())
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d want 1", len(recs))
	}
	r := recs[0]
	if r.PureProductID != "p1" || r.PureVariantID != "v1" || r.Name != "Gold Eagle" || r.SKU != "GE-1" {
		t.Fatalf("bad record: %+v", r)
	}
	if r.HighestOfferPremium == nil || *r.HighestOfferPremium != 2.5 ||
		r.LowestListingPremium == nil || *r.LowestListingPremium != 6.0 {
		t.Fatalf("bad snapshot: %+v", r)
	}
	if report.RequestedProducts != 2 || report.FetchedProducts != 1 {
		t.Fatalf("report: %+v", report)
	}
	if len(report.SkippedChunks) != 1 || report.SkippedChunks[0].Size != 1 {
		t.Fatalf("skipped: %+v", report.SkippedChunks)
	}
	if report.DroppedVariants != 1 {
		t.Fatalf("dropped=%d", report.DroppedVariants)
	}
}

func TestBuildRecords_StampsSnapshotWithoutQuotes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(productOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"value":"p1","label":"Bar","variants":[{"value":"v1","label":"10 oz"}]}]}`))
	})
	mux.HandleFunc(getProductsPath, func(w http.ResponseWriter, r *http.Request) {
		// no live offers or listings on this variant
		w.Write([]byte(`{"data":[{"id":"p1","title":"Bar","sku":"B-10","material":"silver","variants":[{"title":"10 oz"}]}]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	recs, _, err := testClient(ts, 30).BuildRecords(context.Background())
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d", len(recs))
	}
	if recs[0].HighestOfferPremium != nil || recs[0].LowestListingPremium != nil {
		t.Fatalf("expected absent quotes: %+v", recs[0])
	}
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if !recs[0].MarketDataUpdatedAt.Equal(want) {
		t.Fatalf("snapshot timestamp not stamped: %v", recs[0].MarketDataUpdatedAt)
	}
}

func TestBuildRecords_UnknownLabelDropsQuotesOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(productOptionsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"value":"p1","label":"Coin","variants":[{"value":"v1","label":"1 oz"}]}]}`))
	})
	mux.HandleFunc(getProductsPath, func(w http.ResponseWriter, r *http.Request) {
		// detail payload lists a different variant label
		w.Write([]byte(`{"data":[{"id":"p1","title":"Coin","sku":"C-1","material":"gold","variants":[
			{"title":"2 oz","highestOffer":{"spotPremium":1.0},"lowestListing":{"spotPremium":2.0}}]}]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	recs, _, err := testClient(ts, 30).BuildRecords(context.Background())
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d", len(recs))
	}
	if recs[0].HighestOfferPremium != nil || recs[0].LowestListingPremium != nil {
		t.Fatalf("quotes should be absent on label mismatch: %+v", recs[0])
	}
}

func TestFetchActivity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(productActivityPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("productId") != "p1" || q.Get("variantId") != "v1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"data":[
			{"event":"sale","createdAt":"2024-04-30 15:04:05.123-0500","price":2410.5,"quantity":2,"spotPremium":4.2,"spotPremiumDollar":97.1}
		]}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	events, err := testClient(ts, 30).FetchActivity(context.Background(), "p1", "v1")
	if err != nil {
		t.Fatalf("FetchActivity: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events=%d", len(events))
	}
	e := events[0]
	if e.Kind != "sale" || e.Price != 2410.5 || e.Quantity != 2 || e.SpotPremium != 4.2 || e.SpotPremiumDollar != 97.1 {
		t.Fatalf("bad event: %+v", e)
	}
	if e.CreatedAt != "2024-04-30 15:04:05.123-0500" {
		t.Fatalf("raw timestamp mangled: %q", e.CreatedAt)
	}
}

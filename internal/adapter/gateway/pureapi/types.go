package pureapi

// Wire types for the Pure data provider.

type productOptionsResponse struct {
	Data []ProductOption `json:"data"`
}

// ProductOption is one node of the product→variant option tree.
type ProductOption struct {
	Value    string          `json:"value"` // pure_product_id
	Label    string          `json:"label"`
	Variants []VariantOption `json:"variants"`
}

type VariantOption struct {
	Value string `json:"value"` // pure_variant_id
	Label string `json:"label"`
}

// FlatVariant is one (product, variant) pair flattened out of the option
// tree. The label is carried along to locate the variant inside the product
// detail payload later.
type FlatVariant struct {
	PureProductID string
	PureVariantID string
	VariantLabel  string
}

type productsResponse struct {
	Data []Product `json:"data"`
}

// Product is the detail payload for one product, covering all of its
// variants.
type Product struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	SKU      string           `json:"sku"`
	Material string           `json:"material"`
	ImageURL *string          `json:"imageUrl"`
	Variants []ProductVariant `json:"variants"`
}

// ProductVariant carries the live market extremes for one variant. Either
// quote is absent when that side of the market is empty.
type ProductVariant struct {
	Title         string       `json:"title"`
	HighestOffer  *MarketQuote `json:"highestOffer"`
	LowestListing *MarketQuote `json:"lowestListing"`
}

type MarketQuote struct {
	SpotPremium float64 `json:"spotPremium"`
}

type activityResponse struct {
	Data []ActivityEvent `json:"data"`
}

// ActivityEvent is one reported trade. CreatedAt stays a string here; the
// transaction builder owns parsing so a bad timestamp skips one event, not
// the whole response.
type ActivityEvent struct {
	Event             string  `json:"event"`
	CreatedAt         string  `json:"createdAt"`
	Price             float64 `json:"price"`
	Quantity          int32   `json:"quantity"`
	SpotPremium       float64 `json:"spotPremium"`
	SpotPremiumDollar float64 `json:"spotPremiumDollar"`
}

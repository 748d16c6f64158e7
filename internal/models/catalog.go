package models

// Variation is the product-service view of a purchasable variation, as
// returned by GET /api/v1/variations/{id}. The owning product summary is
// inlined so the common validation path needs a single round trip.
type Variation struct {
	ID          string         `json:"id"`
	Amount      int            `json:"amount"`
	AmountLimit int            `json:"amount_limit"`
	Product     ProductSummary `json:"product"`
}

type ProductSummary struct {
	ID       string `json:"id"`
	ShopID   string `json:"shop_id"`
	IsActive bool   `json:"is_active"`
	Title    string `json:"title"`
	SKU      string `json:"sku"`
}

package models

// Cart is the shopcart-service view of a user's cart, as returned by
// GET /api/v1/carts/by-user/{user_id}.
type Cart struct {
	ID     int64      `json:"id"`
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ID                 int64  `json:"id"`
	ShopCartID         int64  `json:"shop_cart_id"`
	ProductVariationID string `json:"product_variation_id"`
	Quantity           int    `json:"quantity"`
}

// CorrectionAction describes what the saga (or the sync job) did to a cart
// line that failed validation.
type CorrectionAction string

const (
	ActionRemove CorrectionAction = "remove"
	ActionUpdate CorrectionAction = "update"
)

// CorrectionReason explains why a cart line was corrected.
type CorrectionReason string

const (
	ReasonNotFound          CorrectionReason = "not_found"
	ReasonInvalidData       CorrectionReason = "invalid_data"
	ReasonProductNotFound   CorrectionReason = "product_not_found"
	ReasonInactive          CorrectionReason = "inactive"
	ReasonInvalidShop       CorrectionReason = "invalid_shop"
	ReasonOutOfStock        CorrectionReason = "out_of_stock"
	ReasonInsufficientStock CorrectionReason = "insufficient_stock"
)

// CartCorrection is one entry of the structured diff returned with a 409
// stock-conflict response. The cart has already been repaired when the caller
// sees it.
type CartCorrection struct {
	CartItemID         int64            `json:"cart_item_id"`
	ProductVariationID string           `json:"product_variation_id"`
	ProductTitle       string           `json:"product_title,omitempty"`
	Action             CorrectionAction `json:"action"`
	Reason             CorrectionReason `json:"reason"`
	OldQuantity        int              `json:"old_quantity,omitempty"`
	NewQuantity        int              `json:"new_quantity,omitempty"`
	Applied            bool             `json:"applied"`
}

// StockConflict is returned by the saga when one or more cart lines failed
// validation. It satisfies error so services can surface it through normal
// error returns; handlers map it to HTTP 409.
type StockConflict struct {
	CartID      int64            `json:"cart_id"`
	IssuesFound int              `json:"issues_found"`
	ItemsFixed  int              `json:"items_fixed"`
	Details     []CartCorrection `json:"details"`
}

func (c *StockConflict) Error() string {
	return "cart updated due to stock issues; retry checkout"
}

package models

// CompletedOrder is the wire shape the orders service pushes to analytics
// once every item on an order is approved. Items carries only approved
// lines; Price stays in minor units on the wire and is divided down at
// ingestion.
type CompletedOrder struct {
	OrderID int64                `json:"order_id"`
	UserID  string               `json:"user_id"`
	Items   []CompletedOrderItem `json:"items"`
}

// CompletedOrderItem is one approved line of a completed order.
type CompletedOrderItem struct {
	OrderItemID        int64  `json:"order_item_id"`
	ShopID             string `json:"shop_id"`
	ProductID          string `json:"product_id"`
	ProductVariationID string `json:"product_variation_id"`
	Quantity           int    `json:"quantity"`
	Price              int64  `json:"price"`
}

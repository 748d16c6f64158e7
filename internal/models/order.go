package models

import "time"

// ItemStatus is the shop-fulfillment state of a single order item. The values
// are part of the wire contract with the shop service and must not be
// renumbered.
type ItemStatus int

const (
	ItemStatusProcessing ItemStatus = 1
	ItemStatusShipped    ItemStatus = 2
	ItemStatusApproved   ItemStatus = 3
	ItemStatusCancelled  ItemStatus = 4
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusProcessing, ItemStatusShipped, ItemStatusApproved, ItemStatusCancelled:
		return true
	}
	return false
}

func (s ItemStatus) String() string {
	switch s {
	case ItemStatusProcessing:
		return "processing"
	case ItemStatusShipped:
		return "shipped"
	case ItemStatusApproved:
		return "approved"
	case ItemStatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Order is the aggregate root created by the cart-to-order saga.
type Order struct {
	ID         int64       `json:"id"`
	UserID     string      `json:"user_id"`
	IsApproved bool        `json:"is_approved"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderItem is one validated cart line frozen into the order. ShopID and
// ProductID are resolved during saga validation and are required at creation;
// an item never exists without them.
type OrderItem struct {
	ID                 int64      `json:"id"`
	OrderID            int64      `json:"order_id"`
	ProductVariationID string     `json:"product_variation_id"`
	ProductID          string     `json:"product_id"`
	ShopID             string     `json:"shop_id"`
	Quantity           int        `json:"quantity"`
	// Price is in minor currency units (cents). Resolved by the pricing
	// pipeline after creation; zero until then.
	Price  int64      `json:"price"`
	Status ItemStatus `json:"status"`
}

// AllItemsApproved reports whether every item reached the terminal approved
// status. An order with no items is never approved.
func AllItemsApproved(items []OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.Status != ItemStatusApproved {
			return false
		}
	}
	return true
}

package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic names double as routing keys: one kafka topic per event type, named
// by the dot-path the services route on.
const (
	TopicOrderCreated           = "order.created"
	TopicOrderItemCreated       = "order.item.created"
	TopicOrderItemStatusUpdated = "order.item.status.updated"
	TopicUserCreated            = "user.created"
	TopicShopApproved           = "shop.approved"
)

// Envelope is the wire format shared by every event on the bus.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload, panicking only on unmarshalable payloads
// (programming error, all payloads here are plain structs).
func NewEnvelope(eventType string, data any) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
}

// DecodePayload unmarshals the envelope data into a typed event struct.
func DecodePayload[T any](env Envelope) (T, error) {
	var t T
	err := json.Unmarshal(env.Data, &t)
	return t, err
}

// OrderLine is the per-item slice of an order.created payload.
type OrderLine struct {
	ProductVariationID string `json:"product_variation_id"`
	Quantity           int    `json:"quantity"`
}

type OrderCreatedData struct {
	OrderID  int64       `json:"order_id"`
	UserUUID string      `json:"user_uuid"`
	CartID   int64       `json:"cart_id"`
	Items    []OrderLine `json:"items"`
}

type OrderItemCreatedData struct {
	OrderItemID      int64  `json:"order_item_id"`
	OrderID          int64  `json:"order_id"`
	ShopID           string `json:"shop_id"`
	ProductID        string `json:"product_id"`
	ProductVariation string `json:"product_variation"`
	Quantity         int    `json:"quantity"`
	Price            int64  `json:"price"`
	Status           int    `json:"status"`
	UserID           string `json:"user_id"`
}

type OrderItemStatusUpdatedData struct {
	OrderItemID int64  `json:"order_item_id"`
	OrderID     int64  `json:"order_id"`
	ShopID      string `json:"shop_id"`
	Status      int    `json:"status"`
}

type UserCreatedData struct {
	UserUUID string `json:"user_uuid"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type ShopApprovedData struct {
	UserUUID string `json:"user_uuid"`
	ShopID   string `json:"shop_id"`
}

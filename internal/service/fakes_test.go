package service

import (
	"context"
	"errors"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

type fakeProductClient struct {
	variations map[string]*models.Variation
	err        error
}

func (f *fakeProductClient) GetVariation(_ context.Context, id string) (*models.Variation, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.variations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return v, nil
}

type fakeCartClient struct {
	cart    *models.Cart
	getErr  error
	updates map[int64]int
	deletes []int64
	cleared []int64
}

func newFakeCartClient(cart *models.Cart) *fakeCartClient {
	return &fakeCartClient{cart: cart, updates: make(map[int64]int)}
}

func (f *fakeCartClient) GetCart(context.Context, string) (*models.Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cart, nil
}

func (f *fakeCartClient) UpdateItemQuantity(_ context.Context, id int64, q int) error {
	f.updates[id] = q
	return nil
}

func (f *fakeCartClient) DeleteItem(_ context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeCartClient) ClearCart(_ context.Context, id int64) error {
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeOrderRepo struct {
	nextOrderID int64
	nextItemID  int64
	orders      map[int64]*models.Order
	items       map[int64]*models.OrderItem

	failItemAt    int // fail the nth CreateOrderItem call (1-based), 0 = never
	itemCalls     int
	deletedOrders []int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64]*models.OrderItem),
	}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, userID string) (*models.Order, error) {
	f.nextOrderID++
	order := &models.Order{ID: f.nextOrderID, UserID: userID}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderRepo) CreateOrderItem(_ context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	f.itemCalls++
	if f.failItemAt > 0 && f.itemCalls == f.failItemAt {
		return nil, errors.New("insert failed")
	}
	f.nextItemID++
	copied := *item
	copied.ID = f.nextItemID
	f.items[copied.ID] = &copied
	return &copied, nil
}

func (f *fakeOrderRepo) DeleteOrder(_ context.Context, orderID int64) error {
	delete(f.orders, orderID)
	for id, item := range f.items {
		if item.OrderID == orderID {
			delete(f.items, id)
		}
	}
	f.deletedOrders = append(f.deletedOrders, orderID)
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, orderID int64) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *order
	copied.Items = nil
	for _, item := range f.items {
		if item.OrderID == orderID {
			copied.Items = append(copied.Items, *item)
		}
	}
	return &copied, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]*models.Order, error) {
	var out []*models.Order
	for id, order := range f.orders {
		if order.UserID == userID {
			copied, _ := f.GetByID(context.Background(), id)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetItem(_ context.Context, itemID int64) (*models.OrderItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeOrderRepo) ItemsByOrder(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range f.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateItemStatus(_ context.Context, itemID int64, status models.ItemStatus) error {
	item, ok := f.items[itemID]
	if !ok {
		return apperrors.ErrNotFound
	}
	item.Status = status
	return nil
}

func (f *fakeOrderRepo) SetApproved(_ context.Context, orderID int64, approved bool) error {
	order, ok := f.orders[orderID]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.IsApproved = approved
	return nil
}

func (f *fakeOrderRepo) orderCount() int { return len(f.orders) }
func (f *fakeOrderRepo) itemCount() int  { return len(f.items) }

type fakePublisher struct {
	created        []events.OrderCreatedData
	itemsCreated   []events.OrderItemCreatedData
	statusUpdates  []events.OrderItemStatusUpdatedData
	failOnCreated  bool
	failOnStatuses bool
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, data events.OrderCreatedData) error {
	if f.failOnCreated {
		return errors.New("broker down")
	}
	f.created = append(f.created, data)
	return nil
}

func (f *fakePublisher) PublishOrderItemCreated(_ context.Context, order *models.Order, item *models.OrderItem) error {
	f.itemsCreated = append(f.itemsCreated, events.OrderItemCreatedData{
		OrderItemID: item.ID,
		OrderID:     order.ID,
	})
	return nil
}

func (f *fakePublisher) PublishOrderItemStatusUpdated(_ context.Context, data events.OrderItemStatusUpdatedData) error {
	if f.failOnStatuses {
		return errors.New("broker down")
	}
	f.statusUpdates = append(f.statusUpdates, data)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeShopClient struct {
	owned []string
	err   error
}

func (f *fakeShopClient) GetUserShopIDs(context.Context, string) ([]string, error) {
	return f.owned, f.err
}

type fakeAnalyticsClient struct {
	sent []models.CompletedOrder
	err  error
}

func (f *fakeAnalyticsClient) SendCompletedOrder(_ context.Context, order models.CompletedOrder) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, order)
	return nil
}

package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
)

// fakeStore mimics DecrementForOrder's contract including the ledger: a
// repeated event id is a no-op.
type fakeStore struct {
	stock     map[string]int
	processed map[string]bool
	calls     int
}

func newFakeStore(stock map[string]int) *fakeStore {
	return &fakeStore{stock: stock, processed: make(map[string]bool)}
}

func (f *fakeStore) DecrementForOrder(_ context.Context, eventID string, lines []repository.StockLine) ([]repository.DecrementResult, error) {
	f.calls++
	if f.processed[eventID] {
		return nil, nil
	}
	f.processed[eventID] = true

	results := make([]repository.DecrementResult, 0, len(lines))
	for _, line := range lines {
		res := repository.DecrementResult{ProductVariationID: line.ProductVariationID}
		amount, ok := f.stock[line.ProductVariationID]
		switch {
		case !ok:
			res.Reason = "not_found"
		case amount < line.Quantity:
			res.Reason = "insufficient"
		default:
			f.stock[line.ProductVariationID] = amount - line.Quantity
			res.Applied = true
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeStore) LowStockCount(context.Context) (int, error) { return 0, nil }

type fakeDedup struct {
	seen map[string]bool
}

func (f *fakeDedup) MarkEventSeen(_ context.Context, eventID string) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func orderCreatedEnvelope(t *testing.T, orderID int64, items []events.OrderLine) events.Envelope {
	t.Helper()
	return events.NewEnvelope(events.TopicOrderCreated, events.OrderCreatedData{
		OrderID:  orderID,
		UserUUID: "user-1",
		CartID:   1,
		Items:    items,
	})
}

func TestHandleOrderCreated_DecrementsAllLines(t *testing.T) {
	store := newFakeStore(map[string]int{"var-a": 10, "var-b": 4})
	worker := NewWorker(store, nil, zap.NewNop())

	env := orderCreatedEnvelope(t, 1, []events.OrderLine{
		{ProductVariationID: "var-a", Quantity: 3},
		{ProductVariationID: "var-b", Quantity: 4},
	})

	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))
	assert.Equal(t, 7, store.stock["var-a"])
	assert.Equal(t, 0, store.stock["var-b"])
}

func TestHandleOrderCreated_ShortLineSkippedOthersApply(t *testing.T) {
	store := newFakeStore(map[string]int{"var-a": 10, "var-b": 1})
	worker := NewWorker(store, nil, zap.NewNop())

	env := orderCreatedEnvelope(t, 2, []events.OrderLine{
		{ProductVariationID: "var-a", Quantity: 2},
		{ProductVariationID: "var-b", Quantity: 5},
		{ProductVariationID: "var-missing", Quantity: 1},
	})

	// Partial progress still acks: no error surfaces.
	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))
	assert.Equal(t, 8, store.stock["var-a"])
	// Stock never goes negative, the short line is untouched.
	assert.Equal(t, 1, store.stock["var-b"])
}

func TestHandleOrderCreated_DuplicateDeliveryIsNoOp(t *testing.T) {
	store := newFakeStore(map[string]int{"var-a": 10})
	worker := NewWorker(store, nil, zap.NewNop())

	env := orderCreatedEnvelope(t, 3, []events.OrderLine{
		{ProductVariationID: "var-a", Quantity: 4},
	})

	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))
	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))

	assert.Equal(t, 6, store.stock["var-a"])
}

func TestHandleOrderCreated_FastPathShortCircuits(t *testing.T) {
	store := newFakeStore(map[string]int{"var-a": 10})
	worker := NewWorker(store, &fakeDedup{}, zap.NewNop())

	env := orderCreatedEnvelope(t, 4, []events.OrderLine{
		{ProductVariationID: "var-a", Quantity: 1},
	})

	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))
	require.NoError(t, worker.HandleOrderCreated(context.Background(), env))

	// The duplicate never reached the store.
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 9, store.stock["var-a"])
}

func TestHandleOrderCreated_MalformedPayload(t *testing.T) {
	worker := NewWorker(newFakeStore(nil), nil, zap.NewNop())

	env := events.Envelope{
		EventID:   "ev-1",
		EventType: events.TopicOrderCreated,
		Data:      []byte(`{"order_id": "not-a-number"}`),
	}

	assert.Error(t, worker.HandleOrderCreated(context.Background(), env))
}

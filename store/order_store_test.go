package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
)

func newTestOrderStore(b database.Backend) *OrderStore {
	return NewOrderStore(b, WithClock(fixedClock()), WithRetryDelay(0))
}

func sampleOrder() *models.Order {
	return &models.Order{
		TableID: "TABLE-1",
		Items: []models.OrderItem{
			{ID: "i1", Name: "Latte", Price: 10, Quantity: 2},
			{ID: "i2", Name: "Cake", Price: 15, Quantity: 1},
		},
	}
}

func TestOrderAddDefaultsAndTotal(t *testing.T) {
	s := newTestOrderStore(newMemBackend())

	order, err := s.Add(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 35.0, order.Total)
}

func TestOrderTotalIgnoresCallerValue(t *testing.T) {
	s := newTestOrderStore(newMemBackend())
	in := sampleOrder()
	in.Total = 1

	order, err := s.Add(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 35.0, order.Total)
}

func TestOrderRemoveItemWhilePreparingIsRejected(t *testing.T) {
	b := newMemBackend()
	s := newTestOrderStore(b)
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, order.ID, models.OrderPreparing)
	require.NoError(t, err)

	before := s.Items()
	puts := b.putCount()

	_, err = s.RemoveItem(ctx, order.ID, "i2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationRejected)
	assert.ErrorIs(t, err, domain.ErrCannotRemoveWhilePreparing)
	assert.Equal(t, before, s.Items())
	assert.Equal(t, puts, b.putCount())

	updated, err := s.AddItem(ctx, order.ID, models.OrderItem{ID: "i3", Name: "Tea", Price: 3, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 3)
	assert.Equal(t, 38.0, updated.Total)
}

func TestOrderRemoveItemWhilePendingIsAccepted(t *testing.T) {
	s := newTestOrderStore(newMemBackend())
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)

	updated, err := s.RemoveItem(ctx, order.ID, "i2")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 20.0, updated.Total)
}

func TestOrderAddItemMergesQuantity(t *testing.T) {
	s := newTestOrderStore(newMemBackend())
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)

	updated, err := s.AddItem(ctx, order.ID, models.OrderItem{ID: "i1", Name: "Latte", Price: 10, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, 3, updated.Items[0].Quantity)
	assert.Equal(t, 45.0, updated.Total)
}

func TestOrderStatusFlow(t *testing.T) {
	s := newTestOrderStore(newMemBackend())
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)

	_, err = s.SetStatus(ctx, order.ID, models.OrderServed)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = s.SetStatus(ctx, order.ID, models.OrderPreparing)
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, order.ID, models.OrderServed)
	require.NoError(t, err)

	_, err = s.SetStatus(ctx, order.ID, models.OrderPending)
	assert.ErrorIs(t, err, domain.ErrValidationRejected)
	_, err = s.SetStatus(ctx, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, domain.ErrValidationRejected)

	assert.Len(t, s.ByStatus(models.OrderServed), 1)
}

func TestOrderUpdateRetriesOnceOnConflict(t *testing.T) {
	b := newMemBackend()
	s := newTestOrderStore(b)
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)

	// penulis lain mengganti meja tepat sebelum put pertama
	raced := false
	b.beforePut = func(doc database.Document) {
		if raced {
			return
		}
		raced = true
		current, _ := b.doc(order.ID)
		var other models.Order
		require.NoError(t, json.Unmarshal(current.Body, &other))
		other.TableID = "TABLE-9"
		body, _ := json.Marshal(other)
		b.writeDirect(order.ID, body)
	}

	updated, err := s.SetStatus(ctx, order.ID, models.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, updated.Status)
	assert.Equal(t, "TABLE-9", updated.TableID, "retry merges onto the latest revision")
	assert.Equal(t, "3-test", updated.Rev)

	stored, _ := b.doc(order.ID)
	var persisted models.Order
	require.NoError(t, json.Unmarshal(stored.Body, &persisted))
	assert.Equal(t, "TABLE-9", persisted.TableID)
	assert.Equal(t, models.OrderPreparing, persisted.Status)

	cached, _ := s.Get(order.ID)
	assert.Equal(t, "TABLE-9", cached.TableID)
	assert.Equal(t, "3-test", cached.Rev)
}

func TestOrderRetryWaitsEvenWhenCallerCancels(t *testing.T) {
	b := newMemBackend()
	s := NewOrderStore(b, WithClock(fixedClock()), WithRetryDelay(30*time.Millisecond))

	order, err := s.Add(context.Background(), sampleOrder())
	require.NoError(t, err)

	raced := false
	b.beforePut = func(doc database.Document) {
		if raced {
			return
		}
		raced = true
		current, _ := b.doc(order.ID)
		b.writeDirect(order.ID, current.Body)
	}

	// mutasi yang sudah dimulai tetap selesai walau request dibatalkan
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	begin := time.Now()
	updated, err := s.SetStatus(ctx, order.ID, models.OrderPreparing)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(begin), 30*time.Millisecond)
	assert.Equal(t, models.OrderPreparing, updated.Status)
}

func TestOrderSecondConflictIsTerminal(t *testing.T) {
	b := newMemBackend()
	s := newTestOrderStore(b)
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)
	before := s.Items()

	b.beforePut = func(doc database.Document) {
		current, _ := b.doc(order.ID)
		b.writeDirect(order.ID, current.Body)
	}
	putsBefore := b.putCount()

	_, err = s.SetStatus(ctx, order.ID, models.OrderPreparing)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, putsBefore+2, b.putCount(), "exactly one retry")
	assert.Equal(t, before, s.Items())
	assert.Contains(t, s.Status().Error, "conflict")
	assert.Empty(t, s.Status().MutatingID)
}

func TestOrderRetryRechecksGuardOnLatest(t *testing.T) {
	b := newMemBackend()
	s := newTestOrderStore(b)
	ctx := context.Background()

	order, err := s.Add(ctx, sampleOrder())
	require.NoError(t, err)
	before := s.Items()

	// dapur sudah menyajikan pesanan di perangkat lain
	b.beforePut = func(doc database.Document) {
		current, _ := b.doc(order.ID)
		var other models.Order
		_ = json.Unmarshal(current.Body, &other)
		other.Status = models.OrderCancelled
		body, _ := json.Marshal(other)
		b.writeDirect(order.ID, body)
		b.beforePut = nil
	}

	_, err = s.SetStatus(ctx, order.ID, models.OrderPreparing)
	assert.ErrorIs(t, err, domain.ErrValidationRejected)
	assert.Equal(t, before, s.Items())
}

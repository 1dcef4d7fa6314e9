package store

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
)

const defaultRetryDelay = 100 * time.Millisecond

type OrderStore struct {
	*RecordStore[*models.Order]
}

func NewOrderStore(backend database.Backend, opts ...Option) *OrderStore {
	cfg := buildConfig(config{newID: prefixedID("ORD"), retryDelay: defaultRetryDelay}, opts)
	return &OrderStore{
		RecordStore: newRecordStore(database.CollectionOrders, backend, func() *models.Order {
			return &models.Order{}
		}, orderGuard, cfg),
	}
}

// orderGuard keeps items of a preparing order from being removed and
// enforces the status flow.
func orderGuard(current, next *models.Order) error {
	if current.Status == models.OrderPreparing {
		for _, item := range current.Items {
			if !next.HasItem(item.ID) {
				return domain.ErrCannotRemoveWhilePreparing
			}
		}
	}
	if !current.Status.CanTransition(next.Status) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, current.Status, next.Status)
	}
	return nil
}

func (s *OrderStore) SetStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return s.Update(ctx, id, models.OrderPatch{Status: &status})
}

// AddItem appends item, or raises the quantity when the menu item is already on the order.
func (s *OrderStore) AddItem(ctx context.Context, id string, item models.OrderItem) (*models.Order, error) {
	var items []models.OrderItem
	if current, ok := s.Get(id); ok {
		items = current.Items
	}
	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	return s.Update(ctx, id, models.OrderPatch{Items: &items})
}

func (s *OrderStore) RemoveItem(ctx context.Context, id, itemID string) (*models.Order, error) {
	var items []models.OrderItem
	if current, ok := s.Get(id); ok {
		for _, item := range current.Items {
			if item.ID != itemID {
				items = append(items, item)
			}
		}
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	return s.Update(ctx, id, models.OrderPatch{Items: &items})
}

// ByStatus filters the cached orders.
func (s *OrderStore) ByStatus(status models.OrderStatus) []*models.Order {
	var out []*models.Order
	for _, o := range s.Items() {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

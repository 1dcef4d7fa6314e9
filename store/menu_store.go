package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/models"
)

type MenuStore struct {
	*RecordStore[*models.MenuItem]
}

func NewMenuStore(backend database.Backend, opts ...Option) *MenuStore {
	cfg := buildConfig(config{newID: uuid.NewString}, opts)
	return &MenuStore{
		RecordStore: newRecordStore(database.CollectionMenuItems, backend, func() *models.MenuItem {
			return &models.MenuItem{}
		}, nil, cfg),
	}
}

// ToggleAvailability flips IsAvailable of a cached item through Update.
func (s *MenuStore) ToggleAvailability(ctx context.Context, id string) (*models.MenuItem, error) {
	var next bool
	if current, ok := s.Get(id); ok {
		next = !current.IsAvailable
	}
	return s.Update(ctx, id, models.MenuItemPatch{IsAvailable: &next})
}

// Available returns the items currently offered to customers.
func (s *MenuStore) Available() []*models.MenuItem {
	items := s.Items()
	out := items[:0]
	for _, item := range items {
		if item.IsAvailable {
			out = append(out, item)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (s *MenuStore) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range s.Items() {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

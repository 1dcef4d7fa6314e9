package services

import (
	"context"

	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

// DefaultMenu is the starter menu written into an empty store.
func DefaultMenu() []*models.MenuItem {
	return []*models.MenuItem{
		{Name: "Cappuccino", Price: 4.50, Category: "Beverages", IsAvailable: true, Description: "Espresso with steamed milk foam"},
		{Name: "Caesar Salad", Price: 8.99, Category: "Salads", IsAvailable: true, Description: "Romaine, parmesan, croutons"},
		{Name: "Margherita Pizza", Price: 12.99, Category: "Pizza", IsAvailable: true, Description: "Tomato, mozzarella, basil"},
		{Name: "Chocolate Cake", Price: 6.50, Category: "Desserts", IsAvailable: false, Description: "Dark chocolate layer cake"},
	}
}

// SeedMenu adds DefaultMenu when the loaded store is empty. It returns how
// many items were written.
func SeedMenu(ctx context.Context, menus *store.MenuStore) (int, error) {
	if len(menus.Items()) > 0 {
		return 0, nil
	}
	added := 0
	for _, item := range DefaultMenu() {
		if _, err := menus.Add(ctx, item); err != nil {
			return added, err
		}
		added++
	}
	utils.InfoLogger.WithField("count", added).Info("Seeded default menu")
	return added, nil
}

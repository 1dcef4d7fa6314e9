package models

// OrderItem is a snapshot of a menu item taken when it was added to the order.
type OrderItem struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

package models

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPreparing OrderStatus = "Preparing"
	OrderServed    OrderStatus = "Served"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderServed, OrderCancelled},
}

func (s OrderStatus) Terminal() bool {
	return s == OrderServed || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	Meta
	TableID string      `json:"tableId,omitempty"`
	Items   []OrderItem `json:"items" validate:"dive"`
	Total   float64     `json:"total" validate:"gte=0"`
	Status  OrderStatus `json:"status" validate:"oneof=Pending Preparing Served Cancelled"`
}

func (o *Order) Clone() *Order {
	c := *o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	return &c
}

// Normalize fills the initial status, folds repeated item ids into one line
// and recomputes the total from the items.
func (o *Order) Normalize() {
	if o.Status == "" {
		o.Status = OrderPending
	}
	o.Items = MergeItems(o.Items)
	o.Total = ComputeTotal(o.Items)
}

// MergeItems sums the quantities of lines sharing an id. The first line keeps
// its position, name and price.
func MergeItems(items []OrderItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ID != "" {
			if i, ok := seen[item.ID]; ok {
				out[i].Quantity += item.Quantity
				continue
			}
			seen[item.ID] = len(out)
		}
		out = append(out, item)
	}
	return out
}

// HasItem reports whether an item with the given id is on the order.
func (o *Order) HasItem(id string) bool {
	for _, item := range o.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// ComputeTotal sums price x quantity without rounding. Clients format the
// amount for display.
func ComputeTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

type OrderPatch struct {
	TableID *string      `json:"tableId,omitempty"`
	Items   *[]OrderItem `json:"items,omitempty"`
	Status  *OrderStatus `json:"status,omitempty"`
}

func (p OrderPatch) Apply(o *Order) {
	if p.TableID != nil {
		o.TableID = *p.TableID
	}
	if p.Items != nil {
		o.Items = make([]OrderItem, len(*p.Items))
		copy(o.Items, *p.Items)
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
}

package models

import "strings"

type MenuItem struct {
	Meta
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	IsAvailable bool    `json:"isAvailable"`
	Description string  `json:"description,omitempty"`
}

func (m *MenuItem) Clone() *MenuItem {
	c := *m
	return &c
}

func (m *MenuItem) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
}

// MenuItemPatch berisi field yang boleh diubah; nil berarti tidak diubah.
type MenuItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (p MenuItemPatch) Apply(m *MenuItem) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.IsAvailable != nil {
		m.IsAvailable = *p.IsAvailable
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
}

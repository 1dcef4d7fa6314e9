package models

import "time"

// Meta is embedded in every stored record. Rev is issued by the persistence
// backend and only flows from write acknowledgements into the cache.
type Meta struct {
	ID        string    `json:"id"`
	Rev       string    `json:"rev,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) GetMeta() *Meta {
	return m
}

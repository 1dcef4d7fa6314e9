package database

import (
	"context"
	"encoding/json"
)

// Document is a stored record body together with the revision the backend
// holds for it. On Put, Rev is the revision the write is based on ("" for a
// first write).
type Document struct {
	ID   string
	Rev  string
	Body json.RawMessage
}

// Backend is the document protocol the record stores are written against.
type Backend interface {
	Get(ctx context.Context, id string) (Document, error)
	Put(ctx context.Context, doc Document) (string, error)
	Remove(ctx context.Context, id, rev string) error
	List(ctx context.Context) ([]Document, error)
}

// Collections used by the record stores.
const (
	CollectionMenuItems = "menu-items"
	CollectionOrders    = "orders"
	CollectionTables    = "tables"
)

type Mode int

const (
	ModePrimary Mode = iota
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeFallback:
		return "fallback"
	}
	return "unknown"
}

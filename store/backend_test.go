package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
)

// memBackend is a revision-checking in-memory backend with hooks for
// injecting concurrent writers and failures.
type memBackend struct {
	mu    sync.Mutex
	docs  map[string]database.Document
	order []string
	gen   map[string]int

	puts    int
	removes int

	failPut    error
	failGet    error
	failRemove error
	failList   error

	beforePut func(doc database.Document)
	putGate   chan struct{}
}

func newMemBackend() *memBackend {
	return &memBackend{docs: make(map[string]database.Document), gen: make(map[string]int)}
}

func (b *memBackend) Get(ctx context.Context, id string) (database.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet != nil {
		return database.Document{}, b.failGet
	}
	doc, ok := b.docs[id]
	if !ok {
		return database.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

func (b *memBackend) Put(ctx context.Context, doc database.Document) (string, error) {
	if b.beforePut != nil {
		b.beforePut(doc)
	}
	if b.putGate != nil {
		<-b.putGate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.failPut != nil {
		return "", b.failPut
	}
	cur, ok := b.docs[doc.ID]
	if (ok && cur.Rev != doc.Rev) || (!ok && doc.Rev != "") {
		return "", fmt.Errorf("%w: %s", domain.ErrConflict, doc.ID)
	}
	return b.store(doc.ID, doc.Body), nil
}

func (b *memBackend) Remove(ctx context.Context, id, rev string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removes++
	if b.failRemove != nil {
		return b.failRemove
	}
	cur, ok := b.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if cur.Rev != rev {
		return fmt.Errorf("%w: %s", domain.ErrConflict, id)
	}
	delete(b.docs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

func (b *memBackend) List(ctx context.Context) ([]database.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failList != nil {
		return nil, b.failList
	}
	out := make([]database.Document, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.docs[id])
	}
	return out, nil
}

// writeDirect simulates another writer updating the document.
func (b *memBackend) writeDirect(id string, body []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(id, body)
}

func (b *memBackend) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = make(map[string]database.Document)
	b.order = nil
}

func (b *memBackend) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts
}

func (b *memBackend) doc(id string) (database.Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[id]
	return d, ok
}

func (b *memBackend) store(id string, body []byte) string {
	if _, ok := b.docs[id]; !ok {
		b.order = append(b.order, id)
	}
	b.gen[id]++
	rev := fmt.Sprintf("%d-test", b.gen[id])
	b.docs[id] = database.Document{ID: id, Rev: rev, Body: append([]byte(nil), body...)}
	return rev
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SnapshotStore is the fallback backend. The whole collection lives as one
// JSON array under a namespaced key (a file in dir). It has no revisions, so
// it never reports ErrNotFound or ErrConflict.
type SnapshotStore struct {
	mu   sync.Mutex
	key  string
	path string
}

func NewSnapshotStore(dir, namespace, collection string) *SnapshotStore {
	key := namespace + "-" + collection
	return &SnapshotStore{
		key:  key,
		path: filepath.Join(dir, key+".json"),
	}
}

// Key is the namespaced key the collection is stored under, e.g. "orderin-menu-items".
func (s *SnapshotStore) Key() string {
	return s.key
}

func (s *SnapshotStore) Get(ctx context.Context, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read()
	if err != nil {
		return Document{}, err
	}
	if i := indexOf(docs, id); i >= 0 {
		return docs[i], nil
	}
	return Document{ID: id}, nil
}

func (s *SnapshotStore) Put(ctx context.Context, doc Document) (string, error) {
	if doc.ID == "" {
		return "", errors.New("document id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read()
	if err != nil {
		return "", err
	}
	doc.Rev = ""
	if i := indexOf(docs, doc.ID); i >= 0 {
		docs[i] = doc
	} else {
		docs = append(docs, doc)
	}
	return "", s.write(docs)
}

func (s *SnapshotStore) Remove(ctx context.Context, id, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return nil
	}
	return s.write(append(docs[:i], docs[i+1:]...))
}

func (s *SnapshotStore) List(ctx context.Context) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *SnapshotStore) read() ([]Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []Document{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}

	docs := make([]Document, 0, len(raw))
	for _, body := range raw {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &head); err != nil || head.ID == "" {
			continue
		}
		docs = append(docs, Document{ID: head.ID, Body: body})
	}
	return docs, nil
}

func (s *SnapshotStore) write(docs []Document) error {
	raw := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raw = append(raw, doc.Body)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), s.key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func indexOf(docs []Document, id string) int {
	for i, doc := range docs {
		if doc.ID == id {
			return i
		}
	}
	return -1
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/utils"
)

// Patch is a partial update. Apply overwrites the fields it carries.
type Patch[T any] interface {
	Apply(T)
}

// Guard vets a merged entity against the one it was merged onto.
type Guard[T any] func(current, next T) error

// RecordStore owns one collection: the cache, the backend it persists to and
// the optimistic write protocol between them.
type RecordStore[T Entity[T]] struct {
	kind      string
	backend   database.Backend
	cache     *Cache[T]
	status    statusChannel
	newEntity func() T
	guard     Guard[T]
	cfg       config
}

func newRecordStore[T Entity[T]](kind string, backend database.Backend, newEntity func() T, guard Guard[T], cfg config) *RecordStore[T] {
	return &RecordStore[T]{
		kind:      kind,
		backend:   backend,
		cache:     NewCache[T](),
		newEntity: newEntity,
		guard:     guard,
		cfg:       cfg,
	}
}

func (s *RecordStore[T]) Kind() string {
	return s.kind
}

func (s *RecordStore[T]) Items() []T {
	return s.cache.Items()
}

func (s *RecordStore[T]) Get(id string) (T, bool) {
	return s.cache.Get(id)
}

func (s *RecordStore[T]) Status() Status {
	return s.status.snapshot()
}

// Load replaces the cache with the backend's collection. An empty result
// never clobbers a populated cache, and backend errors leave the cache as is.
func (s *RecordStore[T]) Load(ctx context.Context) []T {
	s.status.begin()
	defer s.status.end()

	docs, err := s.backend.List(ctx)
	if err != nil {
		s.fail("load", "", err)
		return s.cache.Items()
	}
	if len(docs) == 0 && s.cache.Len() > 0 {
		s.logger().WithField("cached", s.cache.Len()).Info("Backend returned no documents, keeping cache")
		return s.cache.Items()
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		e, err := s.decode(doc)
		if err != nil {
			s.logger().WithField("id", doc.ID).Warnf("Skipping undecodable document: %v", err)
			continue
		}
		items = append(items, e)
	}
	s.cache.Replace(items)
	s.logger().WithField("count", len(items)).Debug("Collection loaded")
	return s.cache.Items()
}

// Add writes a new entity. The cache shows it before the backend answers and
// the returned entity always carries the id that was written or attempted.
func (s *RecordStore[T]) Add(ctx context.Context, entity T) (T, error) {
	ctx = context.WithoutCancel(ctx)
	s.status.begin()
	defer s.status.end()

	return s.create(ctx, "add", entity)
}

// Update merges patch onto the cached entity and writes it with the
// backend's current revision. A conflict is retried once on top of the
// backend's latest document.
func (s *RecordStore[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	var zero T
	ctx = context.WithoutCancel(ctx)
	s.status.begin()
	defer s.status.end()
	defer s.status.mutate(id)()

	current, ok := s.cache.Get(id)
	if !ok {
		return zero, s.fail("update", id, fmt.Errorf("%w: %s is not loaded", domain.ErrNotFound, id))
	}
	merged, err := s.merge(current, patch)
	if err != nil {
		return zero, s.fail("update", id, err)
	}
	snap := s.cache.ApplyOptimistic(merged)

	doc, err := s.backend.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.cache.Rollback(snap)
		s.logger().WithField("id", id).Info("Document missing in backend, creating it")
		return s.create(ctx, "update", merged)
	}
	if err != nil {
		s.cache.Rollback(snap)
		return zero, s.fail("update", id, err)
	}

	persisted := merged
	rev, err := s.put(ctx, merged, doc.Rev)
	if errors.Is(err, domain.ErrConflict) {
		s.logger().WithFields(logrus.Fields{"id": id, "rev": doc.Rev}).Warn("Update conflict, retrying once")
		persisted, rev, err = s.retry(ctx, id, patch)
	}
	if err != nil {
		s.cache.Rollback(snap)
		return zero, s.fail("update", id, err)
	}

	persisted.GetMeta().Rev = rev
	s.cache.Reconcile(persisted)
	return persisted.Clone(), nil
}

// Delete removes the entity from the backend first and from the cache only
// after the backend confirmed.
func (s *RecordStore[T]) Delete(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)
	s.status.begin()
	defer s.status.end()

	doc, err := s.backend.Get(ctx, id)
	if err != nil {
		return s.fail("delete", id, err)
	}
	if err := s.backend.Remove(ctx, id, doc.Rev); err != nil {
		return s.fail("delete", id, err)
	}
	s.cache.Remove(id)
	return nil
}

func (s *RecordStore[T]) create(ctx context.Context, op string, entity T) (T, error) {
	e := entity.Clone()
	m := e.GetMeta()
	if m.ID == "" {
		m.ID = s.cfg.newID()
	}
	now := s.cfg.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.Before(now) {
		m.UpdatedAt = now
	}
	m.Rev = ""
	e.Normalize()
	if err := s.validate(e); err != nil {
		return e.Clone(), s.fail(op, m.ID, err)
	}

	snap := s.cache.ApplyOptimistic(e)
	rev, err := s.put(ctx, e, "")
	if err != nil {
		s.cache.Rollback(snap)
		return e.Clone(), s.fail(op, m.ID, err)
	}

	m.Rev = rev
	s.cache.Reconcile(e)
	return e.Clone(), nil
}

func (s *RecordStore[T]) retry(ctx context.Context, id string, patch Patch[T]) (T, string, error) {
	var zero T
	if s.cfg.retryDelay > 0 {
		time.Sleep(s.cfg.retryDelay)
	}

	doc, err := s.backend.Get(ctx, id)
	if err != nil {
		return zero, "", err
	}
	latest, err := s.decode(doc)
	if err != nil {
		return zero, "", err
	}
	merged, err := s.merge(latest, patch)
	if err != nil {
		return zero, "", err
	}
	s.cache.Reconcile(merged)

	rev, err := s.put(ctx, merged, doc.Rev)
	return merged, rev, err
}

func (s *RecordStore[T]) merge(base T, patch Patch[T]) (T, error) {
	var zero T
	next := base.Clone()
	patch.Apply(next)

	m, bm := next.GetMeta(), base.GetMeta()
	m.ID = bm.ID
	m.Rev = bm.Rev
	m.CreatedAt = bm.CreatedAt
	m.UpdatedAt = s.cfg.now()
	if m.UpdatedAt.Before(bm.UpdatedAt) {
		m.UpdatedAt = bm.UpdatedAt
	}
	next.Normalize()

	if s.guard != nil {
		if err := s.guard(base, next); err != nil {
			return zero, err
		}
	}
	if err := s.validate(next); err != nil {
		return zero, err
	}
	return next, nil
}

func (s *RecordStore[T]) put(ctx context.Context, e T, rev string) (string, error) {
	doc, err := s.encode(e, rev)
	if err != nil {
		return "", err
	}
	return s.backend.Put(ctx, doc)
}

func (s *RecordStore[T]) encode(e T, rev string) (database.Document, error) {
	c := e.Clone()
	c.GetMeta().Rev = ""
	body, err := json.Marshal(c)
	if err != nil {
		return database.Document{}, err
	}
	return database.Document{ID: c.GetMeta().ID, Rev: rev, Body: body}, nil
}

func (s *RecordStore[T]) decode(doc database.Document) (T, error) {
	var zero T
	e := s.newEntity()
	if err := json.Unmarshal(doc.Body, e); err != nil {
		return zero, err
	}
	m := e.GetMeta()
	if m.ID == "" {
		m.ID = doc.ID
	}
	m.Rev = doc.Rev
	return e, nil
}

func (s *RecordStore[T]) validate(e T) error {
	if err := s.cfg.validate.Struct(e); err != nil {
		return domain.Rejected("%s", err.Error())
	}
	return nil
}

// fail translates err into the taxonomy, surfaces it on the status channel
// and returns it.
func (s *RecordStore[T]) fail(op, id string, err error) error {
	opErr := &domain.OperationError{Op: op, Kind: s.kind, ID: id, Err: domain.Classify(err)}
	s.status.fail(opErr)
	utils.ErrorLogger.WithFields(logrus.Fields{
		"component": "store",
		"kind":      s.kind,
		"op":        op,
		"id":        id,
	}).Error(err)
	return opErr
}

func (s *RecordStore[T]) logger() *logrus.Entry {
	return utils.InfoLogger.WithFields(logrus.Fields{"component": "store", "kind": s.kind})
}

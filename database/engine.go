package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
	"gorm.io/gorm"
)

// DocumentEngine is the primary backend: revision-checked JSON documents in a
// gorm table. Every write compares the supplied revision with the stored one
// and mints a fresh revision on success.
type DocumentEngine struct {
	db         *gorm.DB
	collection string
	now        func() time.Time
}

func NewDocumentEngine(db *gorm.DB, collection string) *DocumentEngine {
	return &DocumentEngine{db: db, collection: collection, now: time.Now}
}

func (e *DocumentEngine) Collection() string {
	return e.collection
}

func (e *DocumentEngine) Get(ctx context.Context, id string) (Document, error) {
	var row models.DocumentRow
	err := e.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", e.collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, e.collection, id)
	}
	if err != nil {
		return Document{}, err
	}
	return Document{ID: row.DocID, Rev: row.Rev, Body: []byte(row.Body)}, nil
}

func (e *DocumentEngine) Put(ctx context.Context, doc Document) (string, error) {
	if doc.ID == "" {
		return "", errors.New("document id is required")
	}

	var newRev string
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := e.now()

		var row models.DocumentRow
		err := tx.Where("collection = ? AND doc_id = ?", e.collection, doc.ID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if doc.Rev != "" {
				return e.conflict(doc.ID, doc.Rev, "")
			}
			newRev = nextRev("")
			row = models.DocumentRow{
				Collection: e.collection,
				DocID:      doc.ID,
				Rev:        newRev,
				Body:       string(doc.Body),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return e.conflict(doc.ID, doc.Rev, "?")
				}
				return err
			}
			return recordChange(tx, e.collection, doc.ID, newRev, models.ActionInsert, now)
		}
		if err != nil {
			return err
		}

		if doc.Rev != row.Rev {
			return e.conflict(doc.ID, doc.Rev, row.Rev)
		}

		newRev = nextRev(row.Rev)
		res := tx.Model(&models.DocumentRow{}).
			Where("collection = ? AND doc_id = ? AND rev = ?", e.collection, doc.ID, doc.Rev).
			Updates(map[string]interface{}{
				"rev":        newRev,
				"body":       string(doc.Body),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return e.conflict(doc.ID, doc.Rev, "?")
		}
		return recordChange(tx, e.collection, doc.ID, newRev, models.ActionUpdate, now)
	})
	if err != nil {
		return "", err
	}
	return newRev, nil
}

func (e *DocumentEngine) Remove(ctx context.Context, id, rev string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection = ? AND doc_id = ? AND rev = ?", e.collection, id, rev).
			Delete(&models.DocumentRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.DocumentRow{}).
				Where("collection = ? AND doc_id = ?", e.collection, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, e.collection, id)
			}
			return e.conflict(id, rev, "?")
		}
		return recordChange(tx, e.collection, id, rev, models.ActionDelete, e.now())
	})
}

func (e *DocumentEngine) List(ctx context.Context) ([]Document, error) {
	var rows []models.DocumentRow
	if err := e.db.WithContext(ctx).
		Where("collection = ?", e.collection).
		Order("created_at ASC, doc_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.DocID, Rev: row.Rev, Body: []byte(row.Body)})
	}
	return docs, nil
}

func (e *DocumentEngine) conflict(id, have, want string) error {
	return fmt.Errorf("%w: %s/%s at rev %q, stored %q", domain.ErrConflict, e.collection, id, have, want)
}

package database

import (
	"context"
	"time"

	"github.com/yeremiapane/orderin/models"
	"gorm.io/gorm"
)

func recordChange(tx *gorm.DB, collection, id, rev, action string, at time.Time) error {
	return tx.Create(&models.DocumentChange{
		Collection: collection,
		DocID:      id,
		Rev:        rev,
		ActionType: action,
		ChangedAt:  at,
	}).Error
}

// LoadDocument reads a stored document row regardless of collection backend wiring.
func LoadDocument(ctx context.Context, db *gorm.DB, collection, id string) (models.DocumentRow, error) {
	var row models.DocumentRow
	err := db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	return row, err
}

package models

import "time"

// DocumentRow is the primary engine's storage row: one revisioned JSON document per (collection, id).
type DocumentRow struct {
	Collection string    `gorm:"primaryKey;type:varchar(50)"`
	DocID      string    `gorm:"primaryKey;type:varchar(100)"`
	Rev        string    `gorm:"type:varchar(64);not null"`
	Body       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (DocumentRow) TableName() string {
	return "documents"
}

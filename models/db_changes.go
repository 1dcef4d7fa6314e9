package models

import "time"

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// DocumentChange is appended in the same transaction as every primary engine write.
type DocumentChange struct {
	ID         uint      `gorm:"primaryKey"`
	Collection string    `gorm:"type:varchar(50);not null;index:idx_collection_action"`
	DocID      string    `gorm:"type:varchar(100);not null"`
	Rev        string    `gorm:"type:varchar(64)"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_collection_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}

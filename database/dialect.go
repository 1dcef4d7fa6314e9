package database

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/orderin/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLiteDSN = "orderin.db"

// Dialector returns the gorm dialector for the configured store driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", driver)
}

// Migrate creates the document and change log tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.DocumentRow{}, &models.DocumentChange{})
}

package db

import (
	"log"
	"strings"

	"go-dialog/internal/config"
	"go-dialog/internal/facts"
	"go-dialog/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the database and migrates the schema. A DSN ending in .db or
// starting with file: selects sqlite, anything else is postgres.
func Init(cfg *config.Config) error {
	dsn := cfg.Postgres.DSN
	var dial gorm.Dialector
	if strings.HasSuffix(dsn, ".db") || strings.HasPrefix(dsn, "file:") {
		dial = sqlite.Open(dsn)
	} else {
		dial = postgres.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate the fact base
	if err := db.AutoMigrate(&facts.Fact{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}

package db

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"go-infobot/internal/config"
	"go-infobot/internal/fact"
	"go-infobot/internal/presence"
	"go-infobot/internal/settings"
	"go-infobot/internal/user"
	"go-infobot/internal/usercache"
)

var DB *gorm.DB

// Init opens the database and migrates all models. A postgres:// DSN selects
// the postgres driver; anything else is treated as an sqlite path.
func Init(cfg *config.Config) error {
	var dial gorm.Dialector
	dsn := cfg.Postgres.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return err
	}

	// Fact table
	if err := db.AutoMigrate(&fact.Fact{}); err != nil {
		return err
	}

	// Channel settings and user cache
	if err := db.AutoMigrate(&settings.ChannelSettings{}, &usercache.CachedUser{}); err != nil {
		return err
	}

	// Presence counters and admin accounts
	if err := db.AutoMigrate(&presence.Counters{}, &user.User{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}

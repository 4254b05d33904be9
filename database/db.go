// Package database opens and migrates the gorm connection.
package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tournament-platform/models"
)

type Options struct {
	// URL is a postgres DSN, or sqlite:<path> for a local file database.
	URL           string
	Debug         bool
	SlowThreshold time.Duration
}

func (o *Options) FillDefaults() {
	if o.SlowThreshold == 0 {
		o.SlowThreshold = 200 * time.Millisecond
	}
}

// Models lists every table owned by the service, in dependency order.
var Models = []any{
	&models.User{},
	&models.Tournament{},
	&models.Registration{},
	&models.TeamMember{},
}

// Open connects and runs AutoMigrate.
func Open(o Options) (*gorm.DB, error) {
	o.FillDefaults()

	level := logger.Warn
	if o.Debug {
		level = logger.Info
	}
	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Config{
			SlowThreshold:             o.SlowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}

	path, isSQLite := strings.CutPrefix(o.URL, "sqlite:")
	var dialector gorm.Dialector
	if isSQLite {
		dialector = sqlite.Open(sqlitePath(path))
	} else {
		dialector = postgres.Open(o.URL)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if isSQLite {
		// SQLite has a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		Close(db)
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

func sqlitePath(path string) string {
	params := "_foreign_keys=1&_busy_timeout=60000"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[DB] could not get underlying db: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("[DB] could not close db: %v", err)
	}
}

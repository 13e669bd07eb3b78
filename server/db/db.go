package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hoermto/unifi-energy/util"
	"github.com/mitchellh/go-homedir"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the sqlite database at path, creating parent directories as needed
func New(path string) (*gorm.DB, error) {
	file, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	log := util.NewLogger("db")
	log.INFO.Printf("using sqlite database: %s", file)

	// avoid SQLITE_BUSY errors
	dialect := sqlite.Open(file + "?_pragma=busy_timeout(5000)")

	return gorm.Open(dialect, &gorm.Config{
		Logger: logger.New(log.TRACE, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"bizhub/internal/shared/config"
	appLogger "bizhub/internal/shared/logger"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// Init opens the shared tenant directory. The directory is the only store held
// process-wide; tenant stores are owned by the connection registry.
func Init(cfg *config.DatabaseConfig) error {
	store := StoreConfig{
		Name:            "directory",
		Driver:          cfg.Driver,
		DatabaseName:    cfg.Database,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Minute,
	}
	if cfg.Driver == config.DriverSQLite {
		store.DSN = SQLiteDSN(cfg.Path)
	} else {
		store.Driver = config.DriverMySQL
		store.DSN = cfg.GetDSN()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := Open(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to connect to directory database: %w", err)
	}

	dbMu.Lock()
	db = database
	dbMu.Unlock()

	appLogger.Info("directory database connection established",
		"driver", store.Driver,
		"database", store.DatabaseName)

	return nil
}

// Get returns the directory connection
func Get() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// Close closes the directory connection
func Close() error {
	dbMu.RLock()
	currentDB := db
	dbMu.RUnlock()

	if currentDB == nil {
		return nil
	}

	if err := CloseDB(currentDB); err != nil {
		return err
	}

	appLogger.Info("directory database connection closed")
	return nil
}

package database

import (
	"context"
	"fmt"

	"blood-request-coordinator/internal/config"
	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/store"
	"blood-request-coordinator/internal/store/gormstore"
	"blood-request-coordinator/internal/store/memory"
	"blood-request-coordinator/internal/store/mongostore"
)

// Open initializes the store backend named by cfg.Store.Driver. An unknown
// driver is an error. When the settings of a known driver are incomplete it
// returns (nil, nil): the server keeps running and every operation reports
// the store as not initialized.
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory, config.DriverMySQL, config.DriverPostgres, config.DriverMongoDB:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if !cfg.StoreConfigured() {
		logging.Store.WithField("driver", cfg.Store.Driver).
			Warn("Store settings incomplete, running without a database")
		return nil, nil
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		logging.Store.Info("Using in-memory store")
		return memory.New(), nil
	case config.DriverMySQL, config.DriverPostgres:
		s, err := gormstore.Open(cfg.Store, cfg.IsRelease())
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongoDB:
		s, err := mongostore.Open(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

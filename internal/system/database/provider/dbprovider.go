// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"fmt"
	"sync"

	"github.com/openmes/batch-record-api/internal/system/database"
	"github.com/openmes/batch-record-api/internal/system/log"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetBatchRecordDBClient() (DBClientInterface, error)
}

// DBProviderCloser is a separate interface for closing the provider.
// Only the lifecycle manager should use this interface.
type DBProviderCloser interface {
	Close() error
}

// dbProvider is the implementation of DBProviderInterface.
type dbProvider struct {
	client *dbClientHolder
	db     *database.DB
}

type dbClientHolder struct {
	mu     sync.RWMutex
	client DBClientInterface
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the database connection.
func InitDBProvider(db *database.DB) {
	once.Do(func() {
		instance = &dbProvider{
			db:     db,
			client: &dbClientHolder{},
		}
		instance.initializeClient()
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetDBProviderCloser returns the DBProvider with closing capability.
// This should only be called from the main lifecycle manager.
func GetDBProviderCloser() DBProviderCloser {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetBatchRecordDBClient returns a database client for the batch record
// datasource. The client manages its own connection pool and does not need
// to be closed by callers.
func (d *dbProvider) GetBatchRecordDBClient() (DBClientInterface, error) {
	d.client.mu.RLock()
	defer d.client.mu.RUnlock()

	if d.client.client == nil {
		return nil, fmt.Errorf("batch record DB client is not initialized")
	}
	return d.client.client, nil
}

// initializeClient initializes the database client.
func (d *dbProvider) initializeClient() {
	d.client.mu.Lock()
	defer d.client.mu.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))

	if d.db == nil {
		logger.Fatal("Database connection is nil")
		return
	}

	d.client.client = NewDBClient(d.db.DB, "mysql")
	logger.Debug("Batch record DB client initialized")
}

// Close closes the database connections. This should only be called by the lifecycle manager during shutdown.
func (d *dbProvider) Close() error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))
	logger.Debug("Closing database connections")

	d.client.mu.Lock()
	d.client.client = nil
	d.client.mu.Unlock()

	if d.db != nil {
		if err := d.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

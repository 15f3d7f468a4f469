package provider

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
)

// DBClientInterface is the query surface handed to the stores. Rows come
// back as generic maps so store code owns the mapping to domain models.
type DBClientInterface interface {
	Query(query dbmodel.DBQueryInterface, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQueryInterface, args ...interface{}) (sql.Result, error)
	BeginTx() (dbmodel.TxInterface, error)
	GetDatabaseType() string
}

// dbClient implements DBClientInterface on top of a sqlx connection pool.
type dbClient struct {
	db     *sqlx.DB
	dbType string
}

// NewDBClient creates a database client for the given connection pool.
func NewDBClient(db *sqlx.DB, dbType string) DBClientInterface {
	return &dbClient{
		db:     db,
		dbType: dbType,
	}
}

// Query runs a read query and returns each row as a column-name keyed map.
// []byte column values are converted to string.
func (c *dbClient) Query(query dbmodel.DBQueryInterface, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.db.Queryx(query.GetQuery(c.dbType), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	defer func() { _ = rows.Close() }()

	var results []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("query %s row scan failed: %w", query.GetID(), err)
		}
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s row iteration failed: %w", query.GetID(), err)
	}

	return results, nil
}

// Execute runs a write query outside a transaction.
func (c *dbClient) Execute(query dbmodel.DBQueryInterface, args ...interface{}) (sql.Result, error) {
	result, err := c.db.Exec(query.GetQuery(c.dbType), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	return result, nil
}

// BeginTx starts a transaction on the underlying pool.
func (c *dbClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx), nil
}

// GetDatabaseType returns the configured database type.
func (c *dbClient) GetDatabaseType() string {
	return c.dbType
}

package stores

import (
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/log"
)

// StoreRegistry holds references to all stores in the application.
// Each store is held as interface{} to avoid circular dependencies;
// services type-assert to the store interfaces they consume.
type StoreRegistry struct {
	dbClient provider.DBClientInterface

	Template    interface{} // template.TemplateStore
	BatchRecord interface{} // batchrecord.BatchRecordStore
	Section     interface{} // section.SectionStore
	Approval    interface{} // approval.ApprovalStore
	Signature   interface{} // signature.SignatureStore
}

// NewStoreRegistry creates a new store registry with all initialized stores.
func NewStoreRegistry(
	dbClient provider.DBClientInterface,
	templateStore interface{},
	batchRecordStore interface{},
	sectionStore interface{},
	approvalStore interface{},
	signatureStore interface{},
) *StoreRegistry {
	return &StoreRegistry{
		dbClient:    dbClient,
		Template:    templateStore,
		BatchRecord: batchRecordStore,
		Section:     sectionStore,
		Approval:    approvalStore,
		Signature:   signatureStore,
	}
}

// ExecuteTransaction runs multiple store operations in a single transaction.
// Version writes, signature consumption and audit rows for one state change
// are always composed through this.
func (r *StoreRegistry) ExecuteTransaction(queries []func(tx dbmodel.TxInterface) error) error {
	logger := log.GetLogger()
	logger.Debug("Starting transaction", log.Int("query_count", len(queries)))

	tx, err := r.dbClient.BeginTx()
	if err != nil {
		logger.Error("Failed to begin transaction", log.Error(err))
		return err
	}

	for i, query := range queries {
		if err := query(tx); err != nil {
			logger.Warn("Transaction query failed, rolling back",
				log.Error(err),
				log.Int("failed_query_index", i),
			)
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", log.Error(err))
		return err
	}

	logger.Debug("Transaction committed successfully", log.Int("query_count", len(queries)))
	return nil
}

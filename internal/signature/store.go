package signature

import (
	"context"
	"fmt"

	"github.com/openmes/batch-record-api/internal/signature/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	dbutils "github.com/openmes/batch-record-api/internal/system/database/utils"
)

// DBQuery objects for all signature operations
var (
	QueryGetSignatureByID = dbmodel.DBQuery{
		ID:    "GET_SIGNATURE_BY_ID",
		Query: "SELECT SIGNATURE_ID, USER_ID, ENTITY_TYPE, ENTITY_ID, ACTION, BATCH_RECORD_ID, PAYLOAD_HASH, SIGNED_AT, CONSUMED_AT FROM ELECTRONIC_SIGNATURE WHERE SIGNATURE_ID = ?",
	}

	QueryCreateSignature = dbmodel.DBQuery{
		ID:    "CREATE_SIGNATURE",
		Query: "INSERT INTO ELECTRONIC_SIGNATURE (SIGNATURE_ID, USER_ID, ENTITY_TYPE, ENTITY_ID, ACTION, BATCH_RECORD_ID, PAYLOAD_HASH, SIGNED_AT, CONSUMED_AT) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)",
	}

	// The CONSUMED_AT IS NULL guard makes consumption single-shot under
	// concurrent transitions.
	QueryConsumeSignature = dbmodel.DBQuery{
		ID:    "CONSUME_SIGNATURE",
		Query: "UPDATE ELECTRONIC_SIGNATURE SET CONSUMED_AT = ? WHERE SIGNATURE_ID = ? AND CONSUMED_AT IS NULL",
	}
)

// SignatureStore defines the interface for electronic signature data
// operations. Signatures are minted by the identity layer; Create exists for
// provisioning and tests.
type SignatureStore interface {
	GetByID(ctx context.Context, signatureID string) (*model.ElectronicSignature, error)
	Create(tx dbmodel.TxInterface, signature *model.ElectronicSignature) error
	Consume(tx dbmodel.TxInterface, signatureID string, consumedAt int64) error
}

// store implements SignatureStore
type store struct {
	dbClient provider.DBClientInterface
}

func newSignatureStore(dbClient provider.DBClientInterface) SignatureStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByID retrieves a signature by ID
func (s *store) GetByID(ctx context.Context, signatureID string) (*model.ElectronicSignature, error) {
	results, err := s.dbClient.Query(QueryGetSignatureByID, signatureID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, model.ErrSignatureNotFound
	}
	return mapToSignature(results[0]), nil
}

// Create inserts an unconsumed signature
func (s *store) Create(tx dbmodel.TxInterface, signature *model.ElectronicSignature) error {
	_, err := tx.Exec(QueryCreateSignature.Query,
		signature.SignatureID,
		signature.UserID,
		signature.EntityType,
		signature.EntityID,
		signature.Action,
		signature.BatchRecordID,
		signature.PayloadHash,
		signature.SignedAt,
	)
	return err
}

// Consume marks a signature as used. Returns ErrSignatureConsumed when the
// signature was already spent.
func (s *store) Consume(tx dbmodel.TxInterface, signatureID string, consumedAt int64) error {
	result, err := tx.Exec(QueryConsumeSignature.Query, consumedAt, signatureID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrSignatureConsumed
	}
	return nil
}

// mapToSignature converts a database row map to ElectronicSignature
func mapToSignature(row map[string]interface{}) *model.ElectronicSignature {
	signature := &model.ElectronicSignature{}

	if v, ok := row["SIGNATURE_ID"].(string); ok {
		signature.SignatureID = v
	}
	if v, ok := row["USER_ID"].(string); ok {
		signature.UserID = v
	}
	if v, ok := row["ENTITY_TYPE"].(string); ok {
		signature.EntityType = v
	}
	if v, ok := row["ENTITY_ID"].(string); ok {
		signature.EntityID = v
	}
	if v, ok := row["ACTION"].(string); ok {
		signature.Action = v
	}
	if v, ok := row["BATCH_RECORD_ID"].(string); ok {
		signature.BatchRecordID = &v
	}
	if v, ok := row["PAYLOAD_HASH"].(string); ok {
		signature.PayloadHash = v
	}
	if v, ok := dbutils.ParseInt64Column(row["SIGNED_AT"]); ok {
		signature.SignedAt = v
	}
	if row["CONSUMED_AT"] != nil {
		if v, ok := dbutils.ParseInt64Column(row["CONSUMED_AT"]); ok {
			signature.ConsumedAt = &v
		}
	}

	return signature
}

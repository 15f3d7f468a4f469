package batchrecord

import (
	"context"
	"fmt"

	"github.com/openmes/batch-record-api/internal/batchrecord/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	dbutils "github.com/openmes/batch-record-api/internal/system/database/utils"
)

// DBQuery objects for all batch record operations
var (
	QueryCreateBatchRecord = dbmodel.DBQuery{
		ID:    "CREATE_BATCH_RECORD",
		Query: "INSERT INTO BATCH_RECORD (BATCH_RECORD_ID, TEMPLATE_ID, NAME, LOT_NUMBER, STATUS, CREATED_TIME, CREATED_BY) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetBatchRecordByID = dbmodel.DBQuery{
		ID:    "GET_BATCH_RECORD_BY_ID",
		Query: "SELECT BATCH_RECORD_ID, TEMPLATE_ID, NAME, LOT_NUMBER, STATUS, CREATED_TIME, CREATED_BY FROM BATCH_RECORD WHERE BATCH_RECORD_ID = ?",
	}

	QueryCountBatchRecords = dbmodel.DBQuery{
		ID:    "COUNT_BATCH_RECORDS",
		Query: "SELECT COUNT(*) AS COUNT FROM BATCH_RECORD",
	}

	QueryListBatchRecords = dbmodel.DBQuery{
		ID:    "LIST_BATCH_RECORDS",
		Query: "SELECT BATCH_RECORD_ID, TEMPLATE_ID, NAME, LOT_NUMBER, STATUS, CREATED_TIME, CREATED_BY FROM BATCH_RECORD ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?",
	}
)

// BatchRecordStore defines the interface for batch record data operations
type BatchRecordStore interface {
	GetByID(ctx context.Context, batchRecordID string) (*model.BatchRecord, error)
	GetTemplateID(ctx context.Context, batchRecordID string) (string, error)
	List(ctx context.Context, limit, offset int) ([]model.BatchRecord, int, error)
	Create(tx dbmodel.TxInterface, record *model.BatchRecord) error
}

// store implements BatchRecordStore
type store struct {
	dbClient provider.DBClientInterface
}

func newBatchRecordStore(dbClient provider.DBClientInterface) BatchRecordStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByID retrieves a batch record by its ID
func (s *store) GetByID(ctx context.Context, batchRecordID string) (*model.BatchRecord, error) {
	results, err := s.dbClient.Query(QueryGetBatchRecordByID, batchRecordID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("batch record not found")
	}
	return mapToBatchRecord(results[0]), nil
}

// GetTemplateID resolves the template a batch record was created from
func (s *store) GetTemplateID(ctx context.Context, batchRecordID string) (string, error) {
	record, err := s.GetByID(ctx, batchRecordID)
	if err != nil {
		return "", err
	}
	return record.TemplateID, nil
}

// List retrieves a page of batch records with the total count
func (s *store) List(ctx context.Context, limit, offset int) ([]model.BatchRecord, int, error) {
	countRows, err := s.dbClient.Query(QueryCountBatchRecords)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	if len(countRows) > 0 {
		if count, ok := dbutils.ParseInt64Column(countRows[0]["COUNT"]); ok {
			total = int(count)
		}
	}

	results, err := s.dbClient.Query(QueryListBatchRecords, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	records := make([]model.BatchRecord, 0, len(results))
	for _, row := range results {
		records = append(records, *mapToBatchRecord(row))
	}
	return records, total, nil
}

// Create inserts a new batch record row
func (s *store) Create(tx dbmodel.TxInterface, record *model.BatchRecord) error {
	_, err := tx.Exec(QueryCreateBatchRecord.Query,
		record.BatchRecordID,
		record.TemplateID,
		record.Name,
		record.LotNumber,
		record.Status,
		record.CreatedTime,
		record.CreatedBy,
	)
	return err
}

// mapToBatchRecord converts a database row map to BatchRecord
func mapToBatchRecord(row map[string]interface{}) *model.BatchRecord {
	record := &model.BatchRecord{}

	if v, ok := row["BATCH_RECORD_ID"].(string); ok {
		record.BatchRecordID = v
	}
	if v, ok := row["TEMPLATE_ID"].(string); ok {
		record.TemplateID = v
	}
	if v, ok := row["NAME"].(string); ok {
		record.Name = v
	}
	if v, ok := row["LOT_NUMBER"].(string); ok {
		record.LotNumber = &v
	}
	if v, ok := row["STATUS"].(string); ok {
		record.Status = v
	}
	if v, ok := dbutils.ParseInt64Column(row["CREATED_TIME"]); ok {
		record.CreatedTime = v
	}
	if v, ok := row["CREATED_BY"].(string); ok {
		record.CreatedBy = v
	}

	return record
}

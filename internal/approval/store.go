package approval

import (
	"context"
	"fmt"

	"github.com/openmes/batch-record-api/internal/approval/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	dbutils "github.com/openmes/batch-record-api/internal/system/database/utils"
)

// DBQuery objects for all approval request operations
var (
	QueryGetApprovalRequestByID = dbmodel.DBQuery{
		ID:    "GET_APPROVAL_REQUEST_BY_ID",
		Query: "SELECT REQUEST_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, REQUEST_TYPE, STATUS, REASON, EXISTING_DATA, PROPOSED_DATA, REQUESTED_BY, REQUESTED_TIME, REVIEWED_BY, REVIEWED_TIME, REVIEW_COMMENTS FROM APPROVAL_REQUEST WHERE REQUEST_ID = ?",
	}

	QueryListApprovalRequestsByBatchRecord = dbmodel.DBQuery{
		ID:    "LIST_APPROVAL_REQUESTS_BY_BATCH_RECORD",
		Query: "SELECT REQUEST_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, REQUEST_TYPE, STATUS, REASON, EXISTING_DATA, PROPOSED_DATA, REQUESTED_BY, REQUESTED_TIME, REVIEWED_BY, REVIEWED_TIME, REVIEW_COMMENTS FROM APPROVAL_REQUEST WHERE BATCH_RECORD_ID = ? ORDER BY REQUESTED_TIME DESC",
	}

	QueryCountPendingBySection = dbmodel.DBQuery{
		ID:    "COUNT_PENDING_APPROVAL_REQUESTS_BY_SECTION",
		Query: "SELECT COUNT(*) AS COUNT FROM APPROVAL_REQUEST WHERE BATCH_RECORD_ID = ? AND SECTION_ID = ? AND STATUS = 'PENDING'",
	}

	QueryCreateApprovalRequest = dbmodel.DBQuery{
		ID:    "CREATE_APPROVAL_REQUEST",
		Query: "INSERT INTO APPROVAL_REQUEST (REQUEST_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, REQUEST_TYPE, STATUS, REASON, EXISTING_DATA, PROPOSED_DATA, REQUESTED_BY, REQUESTED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	// The STATUS = 'PENDING' guard makes resolution single-shot: the first
	// reviewer wins and every later attempt affects zero rows.
	QueryResolveApprovalRequest = dbmodel.DBQuery{
		ID:    "RESOLVE_APPROVAL_REQUEST",
		Query: "UPDATE APPROVAL_REQUEST SET STATUS = ?, REVIEWED_BY = ?, REVIEWED_TIME = ?, REVIEW_COMMENTS = ? WHERE REQUEST_ID = ? AND STATUS = 'PENDING'",
	}
)

// ApprovalStore defines the interface for approval request data operations
type ApprovalStore interface {
	GetByID(ctx context.Context, requestID string) (*model.ApprovalRequest, error)
	GetByIDs(ctx context.Context, requestIDs []string) (map[string]model.ApprovalRequest, error)
	ListByBatchRecord(ctx context.Context, batchRecordID string) ([]model.ApprovalRequest, error)
	CountPendingBySection(ctx context.Context, batchRecordID, sectionID string) (int, error)
	Create(tx dbmodel.TxInterface, request *model.ApprovalRequest) error
	Resolve(tx dbmodel.TxInterface, resolution model.Resolution) error
}

// store implements ApprovalStore
type store struct {
	dbClient provider.DBClientInterface
}

func newApprovalStore(dbClient provider.DBClientInterface) ApprovalStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetByID retrieves an approval request by its ID
func (s *store) GetByID(ctx context.Context, requestID string) (*model.ApprovalRequest, error) {
	results, err := s.dbClient.Query(QueryGetApprovalRequestByID, requestID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("approval request not found")
	}
	return mapToApprovalRequest(results[0]), nil
}

// GetByIDs retrieves approval requests in bulk, keyed by request ID
func (s *store) GetByIDs(ctx context.Context, requestIDs []string) (map[string]model.ApprovalRequest, error) {
	if len(requestIDs) == 0 {
		return map[string]model.ApprovalRequest{}, nil
	}

	query := dbmodel.DBQuery{
		ID: "GET_APPROVAL_REQUESTS_BY_IDS",
		Query: "SELECT REQUEST_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, REQUEST_TYPE, STATUS, REASON, EXISTING_DATA, PROPOSED_DATA, REQUESTED_BY, REQUESTED_TIME, REVIEWED_BY, REVIEWED_TIME, REVIEW_COMMENTS FROM APPROVAL_REQUEST WHERE REQUEST_ID IN (" +
			dbutils.BuildInClausePlaceholders(len(requestIDs)) + ")",
	}
	args := make([]interface{}, 0, len(requestIDs))
	for _, id := range requestIDs {
		args = append(args, id)
	}

	results, err := s.dbClient.Query(query, args...)
	if err != nil {
		return nil, err
	}

	requests := make(map[string]model.ApprovalRequest, len(results))
	for _, row := range results {
		request := mapToApprovalRequest(row)
		requests[request.RequestID] = *request
	}
	return requests, nil
}

// ListByBatchRecord retrieves all approval requests of a batch record,
// newest first
func (s *store) ListByBatchRecord(ctx context.Context, batchRecordID string) ([]model.ApprovalRequest, error) {
	results, err := s.dbClient.Query(QueryListApprovalRequestsByBatchRecord, batchRecordID)
	if err != nil {
		return nil, err
	}

	requests := make([]model.ApprovalRequest, 0, len(results))
	for _, row := range results {
		requests = append(requests, *mapToApprovalRequest(row))
	}
	return requests, nil
}

// CountPendingBySection counts unresolved requests targeting a section
func (s *store) CountPendingBySection(ctx context.Context, batchRecordID, sectionID string) (int, error) {
	results, err := s.dbClient.Query(QueryCountPendingBySection, batchRecordID, sectionID)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	if count, ok := dbutils.ParseInt64Column(results[0]["COUNT"]); ok {
		return int(count), nil
	}
	return 0, fmt.Errorf("unexpected count column value")
}

// Create inserts a new approval request row
func (s *store) Create(tx dbmodel.TxInterface, request *model.ApprovalRequest) error {
	_, err := tx.Exec(QueryCreateApprovalRequest.Query,
		request.RequestID,
		request.BatchRecordID,
		request.SectionID,
		request.VersionID,
		request.RequestType,
		request.Status,
		request.Reason,
		request.ExistingData,
		request.ProposedData,
		request.RequestedBy,
		request.RequestedTime,
	)
	return err
}

// Resolve moves a PENDING request to its terminal status. Returns
// ErrRequestNotPending when the request was already resolved.
func (s *store) Resolve(tx dbmodel.TxInterface, resolution model.Resolution) error {
	result, err := tx.Exec(QueryResolveApprovalRequest.Query,
		resolution.Status,
		resolution.ReviewedBy,
		resolution.ReviewedTime,
		resolution.ReviewComments,
		resolution.RequestID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrRequestNotPending
	}
	return nil
}

// mapToApprovalRequest converts a database row map to ApprovalRequest
func mapToApprovalRequest(row map[string]interface{}) *model.ApprovalRequest {
	request := &model.ApprovalRequest{}

	if v, ok := row["REQUEST_ID"].(string); ok {
		request.RequestID = v
	}
	if v, ok := row["BATCH_RECORD_ID"].(string); ok {
		request.BatchRecordID = v
	}
	if v, ok := row["SECTION_ID"].(string); ok {
		request.SectionID = v
	}
	if v, ok := row["VERSION_ID"].(string); ok {
		request.VersionID = v
	}
	if v, ok := row["REQUEST_TYPE"].(string); ok {
		request.RequestType = v
	}
	if v, ok := row["STATUS"].(string); ok {
		request.Status = v
	}
	if v, ok := row["REASON"].(string); ok {
		request.Reason = &v
	}
	if v, ok := row["EXISTING_DATA"].(string); ok {
		request.ExistingData = v
	}
	if v, ok := row["PROPOSED_DATA"].(string); ok {
		request.ProposedData = v
	}
	if v, ok := row["REQUESTED_BY"].(string); ok {
		request.RequestedBy = v
	}
	if v, ok := dbutils.ParseInt64Column(row["REQUESTED_TIME"]); ok {
		request.RequestedTime = v
	}
	if v, ok := row["REVIEWED_BY"].(string); ok {
		request.ReviewedBy = &v
	}
	if row["REVIEWED_TIME"] != nil {
		if v, ok := dbutils.ParseInt64Column(row["REVIEWED_TIME"]); ok {
			request.ReviewedTime = &v
		}
	}
	if v, ok := row["REVIEW_COMMENTS"].(string); ok {
		request.ReviewComments = &v
	}

	return request
}

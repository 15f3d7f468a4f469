package section

import (
	"context"
	"fmt"

	"github.com/openmes/batch-record-api/internal/section/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	dbutils "github.com/openmes/batch-record-api/internal/system/database/utils"
)

// DBQuery objects for all section version operations
var (
	QueryGetActiveVersion = dbmodel.DBQuery{
		ID:    "GET_ACTIVE_SECTION_VERSION",
		Query: "SELECT VERSION_ID, BATCH_RECORD_ID, SECTION_ID, PARENT_SECTION_ID, VERSION, DATA, STATUS, IS_ACTIVE, CREATED_TIME, CREATED_BY, COMPLETED_TIME, COMPLETED_BY, LOCKED_AT, LOCKED_BY, PREVIOUS_VERSION_ID, APPROVAL_REQUEST_ID FROM SECTION_VERSION WHERE BATCH_RECORD_ID = ? AND SECTION_ID = ? AND IS_ACTIVE = 1",
	}

	QueryGetActiveVersionsByBatchRecord = dbmodel.DBQuery{
		ID:    "GET_ACTIVE_SECTION_VERSIONS_BY_BATCH_RECORD",
		Query: "SELECT VERSION_ID, BATCH_RECORD_ID, SECTION_ID, PARENT_SECTION_ID, VERSION, DATA, STATUS, IS_ACTIVE, CREATED_TIME, CREATED_BY, COMPLETED_TIME, COMPLETED_BY, LOCKED_AT, LOCKED_BY, PREVIOUS_VERSION_ID, APPROVAL_REQUEST_ID FROM SECTION_VERSION WHERE BATCH_RECORD_ID = ? AND IS_ACTIVE = 1",
	}

	QueryGetSectionHistory = dbmodel.DBQuery{
		ID:    "GET_SECTION_HISTORY",
		Query: "SELECT VERSION_ID, BATCH_RECORD_ID, SECTION_ID, PARENT_SECTION_ID, VERSION, DATA, STATUS, IS_ACTIVE, CREATED_TIME, CREATED_BY, COMPLETED_TIME, COMPLETED_BY, LOCKED_AT, LOCKED_BY, PREVIOUS_VERSION_ID, APPROVAL_REQUEST_ID FROM SECTION_VERSION WHERE BATCH_RECORD_ID = ? AND SECTION_ID = ? ORDER BY VERSION DESC",
	}

	QueryCreateSectionVersion = dbmodel.DBQuery{
		ID:    "CREATE_SECTION_VERSION",
		Query: "INSERT INTO SECTION_VERSION (VERSION_ID, BATCH_RECORD_ID, SECTION_ID, PARENT_SECTION_ID, VERSION, DATA, STATUS, IS_ACTIVE, CREATED_TIME, CREATED_BY, COMPLETED_TIME, COMPLETED_BY, LOCKED_AT, LOCKED_BY, PREVIOUS_VERSION_ID, APPROVAL_REQUEST_ID) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	// The IS_ACTIVE guard is the optimistic lock on the active-version
	// pointer: zero affected rows means another transaction won.
	QueryDeactivateVersion = dbmodel.DBQuery{
		ID:    "DEACTIVATE_SECTION_VERSION",
		Query: "UPDATE SECTION_VERSION SET IS_ACTIVE = 0 WHERE VERSION_ID = ? AND IS_ACTIVE = 1",
	}

	QueryUpdateActiveStatus = dbmodel.DBQuery{
		ID:    "UPDATE_ACTIVE_SECTION_STATUS",
		Query: "UPDATE SECTION_VERSION SET STATUS = ?, LOCKED_AT = ?, LOCKED_BY = ?, APPROVAL_REQUEST_ID = ? WHERE VERSION_ID = ? AND IS_ACTIVE = 1",
	}

	QueryCreateStatusAudit = dbmodel.DBQuery{
		ID:    "CREATE_SECTION_STATUS_AUDIT",
		Query: "INSERT INTO SECTION_STATUS_AUDIT (STATUS_AUDIT_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, CURRENT_STATUS, PREVIOUS_STATUS, ACTION_TIME, ACTION_BY, REASON, SIGNATURE_ID) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetLatestTransitionTo = dbmodel.DBQuery{
		ID:    "GET_LATEST_TRANSITION_TO_STATUS",
		Query: "SELECT STATUS_AUDIT_ID, BATCH_RECORD_ID, SECTION_ID, VERSION_ID, CURRENT_STATUS, PREVIOUS_STATUS, ACTION_TIME, ACTION_BY, REASON, SIGNATURE_ID FROM SECTION_STATUS_AUDIT WHERE BATCH_RECORD_ID = ? AND SECTION_ID = ? AND CURRENT_STATUS = ? ORDER BY ACTION_TIME DESC LIMIT 1",
	}
)

// SectionStore defines the interface for section version data operations
type SectionStore interface {
	GetActiveVersion(ctx context.Context, batchRecordID, sectionID string) (*model.SectionVersion, error)
	GetActiveVersions(ctx context.Context, batchRecordID string) ([]model.SectionVersion, error)
	GetHistory(ctx context.Context, batchRecordID, sectionID string) ([]model.SectionVersion, error)
	GetLatestTransitionTo(ctx context.Context, batchRecordID, sectionID, status string) (*model.SectionStatusAudit, error)
	InsertVersion(tx dbmodel.TxInterface, version *model.SectionVersion) error
	DeactivateVersion(tx dbmodel.TxInterface, versionID string) error
	UpdateActiveStatus(tx dbmodel.TxInterface, change model.StatusChange) error
	InsertStatusAudit(tx dbmodel.TxInterface, audit *model.SectionStatusAudit) error
}

// store implements SectionStore
type store struct {
	dbClient provider.DBClientInterface
}

func newSectionStore(dbClient provider.DBClientInterface) SectionStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetActiveVersion retrieves the single active version of a section
func (s *store) GetActiveVersion(ctx context.Context, batchRecordID, sectionID string) (*model.SectionVersion, error) {
	results, err := s.dbClient.Query(QueryGetActiveVersion, batchRecordID, sectionID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("section not found")
	}
	return mapToSectionVersion(results[0]), nil
}

// GetActiveVersions retrieves all active section versions of a batch record
func (s *store) GetActiveVersions(ctx context.Context, batchRecordID string) ([]model.SectionVersion, error) {
	results, err := s.dbClient.Query(QueryGetActiveVersionsByBatchRecord, batchRecordID)
	if err != nil {
		return nil, err
	}

	versions := make([]model.SectionVersion, 0, len(results))
	for _, row := range results {
		versions = append(versions, *mapToSectionVersion(row))
	}
	return versions, nil
}

// GetHistory retrieves all versions of a section, newest first
func (s *store) GetHistory(ctx context.Context, batchRecordID, sectionID string) ([]model.SectionVersion, error) {
	results, err := s.dbClient.Query(QueryGetSectionHistory, batchRecordID, sectionID)
	if err != nil {
		return nil, err
	}

	versions := make([]model.SectionVersion, 0, len(results))
	for _, row := range results {
		versions = append(versions, *mapToSectionVersion(row))
	}
	return versions, nil
}

// GetLatestTransitionTo returns the most recent audit row that moved the
// section into the given status
func (s *store) GetLatestTransitionTo(ctx context.Context, batchRecordID, sectionID, status string) (*model.SectionStatusAudit, error) {
	results, err := s.dbClient.Query(QueryGetLatestTransitionTo, batchRecordID, sectionID, status)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("status audit not found")
	}
	return mapToStatusAudit(results[0]), nil
}

// InsertVersion inserts a new section version row
func (s *store) InsertVersion(tx dbmodel.TxInterface, version *model.SectionVersion) error {
	isActive := 0
	if version.IsActive {
		isActive = 1
	}
	_, err := tx.Exec(QueryCreateSectionVersion.Query,
		version.VersionID,
		version.BatchRecordID,
		version.SectionID,
		version.ParentSectionID,
		version.Version,
		version.Data,
		version.Status,
		isActive,
		version.CreatedTime,
		version.CreatedBy,
		version.CompletedTime,
		version.CompletedBy,
		version.LockedAt,
		version.LockedBy,
		version.PreviousVersionID,
		version.ApprovalRequestID,
	)
	return err
}

// DeactivateVersion clears the active flag on a version. Returns
// ErrActiveVersionChanged when the row was no longer the active version.
func (s *store) DeactivateVersion(tx dbmodel.TxInterface, versionID string) error {
	result, err := tx.Exec(QueryDeactivateVersion.Query, versionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrActiveVersionChanged
	}
	return nil
}

// UpdateActiveStatus rewrites the status and lock columns of an active
// version in place. Returns ErrActiveVersionChanged when the row was
// superseded concurrently.
func (s *store) UpdateActiveStatus(tx dbmodel.TxInterface, change model.StatusChange) error {
	result, err := tx.Exec(QueryUpdateActiveStatus.Query,
		change.Status,
		change.LockedAt,
		change.LockedBy,
		change.ApprovalRequestID,
		change.VersionID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrActiveVersionChanged
	}
	return nil
}

// InsertStatusAudit inserts a status transition audit row
func (s *store) InsertStatusAudit(tx dbmodel.TxInterface, audit *model.SectionStatusAudit) error {
	_, err := tx.Exec(QueryCreateStatusAudit.Query,
		audit.StatusAuditID,
		audit.BatchRecordID,
		audit.SectionID,
		audit.VersionID,
		audit.CurrentStatus,
		audit.PreviousStatus,
		audit.ActionTime,
		audit.ActionBy,
		audit.Reason,
		audit.SignatureID,
	)
	return err
}

// mapToSectionVersion converts a database row map to SectionVersion
func mapToSectionVersion(row map[string]interface{}) *model.SectionVersion {
	version := &model.SectionVersion{}

	if v, ok := row["VERSION_ID"].(string); ok {
		version.VersionID = v
	}
	if v, ok := row["BATCH_RECORD_ID"].(string); ok {
		version.BatchRecordID = v
	}
	if v, ok := row["SECTION_ID"].(string); ok {
		version.SectionID = v
	}
	if v, ok := row["PARENT_SECTION_ID"].(string); ok {
		version.ParentSectionID = &v
	}
	if v, ok := dbutils.ParseInt64Column(row["VERSION"]); ok {
		version.Version = int(v)
	}
	if v, ok := row["DATA"].(string); ok {
		version.Data = v
	}
	if v, ok := row["STATUS"].(string); ok {
		version.Status = v
	}
	if v, ok := dbutils.ParseBoolColumn(row["IS_ACTIVE"]); ok {
		version.IsActive = v
	}
	if v, ok := dbutils.ParseInt64Column(row["CREATED_TIME"]); ok {
		version.CreatedTime = v
	}
	if v, ok := row["CREATED_BY"].(string); ok {
		version.CreatedBy = v
	}
	if row["COMPLETED_TIME"] != nil {
		if v, ok := dbutils.ParseInt64Column(row["COMPLETED_TIME"]); ok {
			version.CompletedTime = &v
		}
	}
	if v, ok := row["COMPLETED_BY"].(string); ok {
		version.CompletedBy = &v
	}
	if row["LOCKED_AT"] != nil {
		if v, ok := dbutils.ParseInt64Column(row["LOCKED_AT"]); ok {
			version.LockedAt = &v
		}
	}
	if v, ok := row["LOCKED_BY"].(string); ok {
		version.LockedBy = &v
	}
	if v, ok := row["PREVIOUS_VERSION_ID"].(string); ok {
		version.PreviousVersionID = &v
	}
	if v, ok := row["APPROVAL_REQUEST_ID"].(string); ok {
		version.ApprovalRequestID = &v
	}

	return version
}

// mapToStatusAudit converts a database row map to SectionStatusAudit
func mapToStatusAudit(row map[string]interface{}) *model.SectionStatusAudit {
	audit := &model.SectionStatusAudit{}

	if v, ok := row["STATUS_AUDIT_ID"].(string); ok {
		audit.StatusAuditID = v
	}
	if v, ok := row["BATCH_RECORD_ID"].(string); ok {
		audit.BatchRecordID = v
	}
	if v, ok := row["SECTION_ID"].(string); ok {
		audit.SectionID = v
	}
	if v, ok := row["VERSION_ID"].(string); ok {
		audit.VersionID = v
	}
	if v, ok := row["CURRENT_STATUS"].(string); ok {
		audit.CurrentStatus = v
	}
	if v, ok := row["PREVIOUS_STATUS"].(string); ok {
		audit.PreviousStatus = &v
	}
	if v, ok := dbutils.ParseInt64Column(row["ACTION_TIME"]); ok {
		audit.ActionTime = v
	}
	if v, ok := row["ACTION_BY"].(string); ok {
		audit.ActionBy = &v
	}
	if v, ok := row["REASON"].(string); ok {
		audit.Reason = &v
	}
	if v, ok := row["SIGNATURE_ID"].(string); ok {
		audit.SignatureID = &v
	}

	return audit
}

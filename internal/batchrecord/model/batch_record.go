package model

// Batch record statuses. The record-level status tracks overall execution;
// per-section progress lives in the section version rows.
const (
	RecordStatusInProgress = "IN_PROGRESS"
	RecordStatusCompleted  = "COMPLETED"
)

// BatchRecord represents the BATCH_RECORD table.
type BatchRecord struct {
	BatchRecordID string  `db:"BATCH_RECORD_ID" json:"batchRecordId"`
	TemplateID    string  `db:"TEMPLATE_ID" json:"templateId"`
	Name          string  `db:"NAME" json:"name"`
	LotNumber     *string `db:"LOT_NUMBER" json:"lotNumber,omitempty"`
	Status        string  `db:"STATUS" json:"status"`
	CreatedTime   int64   `db:"CREATED_TIME" json:"createdTime"`
	CreatedBy     string  `db:"CREATED_BY" json:"createdBy"`
}

// CreateBatchRecordRequest is the body of POST /batch-records.
type CreateBatchRecordRequest struct {
	TemplateID string  `json:"templateId" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	LotNumber  *string `json:"lotNumber,omitempty"`
	CreatedBy  string  `json:"createdBy" binding:"required"`
}

// BatchRecordListResponse is the paginated list shape.
type BatchRecordListResponse struct {
	TotalResults int           `json:"totalResults"`
	Count        int           `json:"count"`
	BatchRecords []BatchRecord `json:"batchRecords"`
}

package model

// SectionStatusAudit represents the SECTION_STATUS_AUDIT table. One row is
// written in the same transaction as every status transition.
type SectionStatusAudit struct {
	StatusAuditID  string  `db:"STATUS_AUDIT_ID" json:"statusAuditId"`
	BatchRecordID  string  `db:"BATCH_RECORD_ID" json:"batchRecordId"`
	SectionID      string  `db:"SECTION_ID" json:"sectionId"`
	VersionID      string  `db:"VERSION_ID" json:"versionId"`
	CurrentStatus  string  `db:"CURRENT_STATUS" json:"currentStatus"`
	PreviousStatus *string `db:"PREVIOUS_STATUS" json:"previousStatus,omitempty"`
	ActionTime     int64   `db:"ACTION_TIME" json:"actionTime"`
	ActionBy       *string `db:"ACTION_BY" json:"actionBy,omitempty"`
	Reason         *string `db:"REASON" json:"reason,omitempty"`
	SignatureID    *string `db:"SIGNATURE_ID" json:"signatureId,omitempty"`
}

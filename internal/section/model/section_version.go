package model

import (
	"encoding/json"
	"errors"

	approvalmodel "github.com/openmes/batch-record-api/internal/approval/model"
)

// ErrActiveVersionChanged is returned when the CAS on the active-version
// pointer finds that another transaction already superseded or mutated the
// row. Callers surface it as a conflict.
var ErrActiveVersionChanged = errors.New("active section version changed concurrently")

// SectionVersion represents the SECTION_VERSION table. Rows are immutable
// once superseded; the single active row per (batchRecordID, sectionID)
// carries the current state.
type SectionVersion struct {
	VersionID         string  `db:"VERSION_ID" json:"versionId"`
	BatchRecordID     string  `db:"BATCH_RECORD_ID" json:"batchRecordId"`
	SectionID         string  `db:"SECTION_ID" json:"sectionId"`
	ParentSectionID   *string `db:"PARENT_SECTION_ID" json:"parentSectionId,omitempty"`
	Version           int     `db:"VERSION" json:"version"`
	Data              string  `db:"DATA" json:"data"`
	Status            string  `db:"STATUS" json:"status"`
	IsActive          bool    `db:"IS_ACTIVE" json:"isActive"`
	CreatedTime       int64   `db:"CREATED_TIME" json:"createdTime"`
	CreatedBy         string  `db:"CREATED_BY" json:"createdBy"`
	CompletedTime     *int64  `db:"COMPLETED_TIME" json:"completedTime,omitempty"`
	CompletedBy       *string `db:"COMPLETED_BY" json:"completedBy,omitempty"`
	LockedAt          *int64  `db:"LOCKED_AT" json:"lockedAt,omitempty"`
	LockedBy          *string `db:"LOCKED_BY" json:"lockedBy,omitempty"`
	PreviousVersionID *string `db:"PREVIOUS_VERSION_ID" json:"previousVersionId,omitempty"`
	ApprovalRequestID *string `db:"APPROVAL_REQUEST_ID" json:"approvalRequestId,omitempty"`
}

// StatusChange is an in-place status update on an active version row. All
// lock and request-link columns are written as given, so a nil field clears
// its column. The store applies it with a CAS on IS_ACTIVE.
type StatusChange struct {
	VersionID         string
	Status            string
	LockedAt          *int64
	LockedBy          *string
	ApprovalRequestID *string
}

// SaveSectionRequest is the body of PUT /batch-records/{bId}/sections/{sId}.
type SaveSectionRequest struct {
	Data            json.RawMessage `json:"data" binding:"required"`
	UserID          string          `json:"userId" binding:"required"`
	SignatureID     string          `json:"signatureId" binding:"required"`
	ParentSectionID *string         `json:"parentSectionId,omitempty"`
}

// SaveSectionResponse reports the outcome of a save.
type SaveSectionResponse struct {
	BatchRecordID     string  `json:"batchRecordId"`
	SectionID         string  `json:"sectionId"`
	Status            string  `json:"status"`
	Version           int     `json:"version"`
	VersionID         string  `json:"versionId"`
	ApprovalRequestID *string `json:"approvalRequestId,omitempty"`
}

// UnlockSectionRequest is the body of POST .../sections/{sId}/unlock.
type UnlockSectionRequest struct {
	UserID      string  `json:"userId" binding:"required"`
	SignatureID string  `json:"signatureId" binding:"required"`
	Reason      *string `json:"reason,omitempty"`
}

// SectionStatusEntry is one section's aggregated state in the
// section-statuses view.
type SectionStatusEntry struct {
	SectionID string  `json:"sectionId"`
	Status    string  `json:"status"`
	Version   int     `json:"version"`
	VersionID string  `json:"versionId"`
	LockedAt  *int64  `json:"lockedAt,omitempty"`
	LockedBy  *string `json:"lockedBy,omitempty"`
}

// SectionHistoryEntry is one row of the version history, annotated with its
// linked approval request when one exists.
type SectionHistoryEntry struct {
	SectionVersion
	ApprovalRequest *approvalmodel.ApprovalRequest `json:"approvalRequest,omitempty"`
}

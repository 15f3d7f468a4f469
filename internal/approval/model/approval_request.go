package model

import (
	"encoding/json"
	"errors"
)

// Approval request statuses. APPROVED and REJECTED are terminal.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// Request types.
const (
	RequestTypeSectionApproval = "SECTION_APPROVAL"
	RequestTypeChangeRequest   = "CHANGE_REQUEST"
)

// ErrRequestNotPending is returned when the resolve CAS finds the request
// already resolved. Callers surface it as a conflict.
var ErrRequestNotPending = errors.New("approval request is not pending")

// ApprovalRequest represents the APPROVAL_REQUEST table. ExistingData and
// ProposedData are stored verbatim at creation and never recomputed.
type ApprovalRequest struct {
	RequestID      string  `db:"REQUEST_ID" json:"requestId"`
	BatchRecordID  string  `db:"BATCH_RECORD_ID" json:"batchRecordId"`
	SectionID      string  `db:"SECTION_ID" json:"sectionId"`
	VersionID      string  `db:"VERSION_ID" json:"versionId"`
	RequestType    string  `db:"REQUEST_TYPE" json:"requestType"`
	Status         string  `db:"STATUS" json:"status"`
	Reason         *string `db:"REASON" json:"reason,omitempty"`
	ExistingData   string  `db:"EXISTING_DATA" json:"existingData"`
	ProposedData   string  `db:"PROPOSED_DATA" json:"proposedData"`
	RequestedBy    string  `db:"REQUESTED_BY" json:"requestedBy"`
	RequestedTime  int64   `db:"REQUESTED_TIME" json:"requestedTime"`
	ReviewedBy     *string `db:"REVIEWED_BY" json:"reviewedBy,omitempty"`
	ReviewedTime   *int64  `db:"REVIEWED_TIME" json:"reviewedTime,omitempty"`
	ReviewComments *string `db:"REVIEW_COMMENTS" json:"reviewComments,omitempty"`
}

// IsTerminal reports whether the request has been resolved.
func (r *ApprovalRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// Resolution carries the CAS update that moves a PENDING request to a
// terminal status with its review metadata.
type Resolution struct {
	RequestID      string
	Status         string
	ReviewedBy     string
	ReviewedTime   int64
	ReviewComments *string
}

// CreateApprovalRequestRequest is the body of
// POST /batch-records/{bId}/approval-requests.
type CreateApprovalRequestRequest struct {
	SectionID    string          `json:"sectionId" binding:"required"`
	ProposedData json.RawMessage `json:"proposedData" binding:"required"`
	RequestType  *string         `json:"requestType,omitempty"`
	Reason       *string         `json:"reason,omitempty"`
	RequestedBy  string          `json:"requestedBy" binding:"required"`
}

// ReviewRequest is the body of approve/reject calls. SignatureID is
// required for approval only.
type ReviewRequest struct {
	ReviewedBy     string  `json:"reviewedBy" binding:"required"`
	ReviewComments *string `json:"reviewComments,omitempty"`
	SignatureID    string  `json:"signatureId,omitempty"`
}

// ApprovalRequestDetail is the GET /approval-requests/{id} response: the
// stored request plus a computed, read-only diff for reviewer display.
type ApprovalRequestDetail struct {
	ApprovalRequest
	Diff string `json:"diff,omitempty"`
}

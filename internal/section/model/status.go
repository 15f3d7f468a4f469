package model

import "strings"

// Section lifecycle statuses.
const (
	StatusDraft             = "DRAFT"
	StatusCompleted         = "COMPLETED"
	StatusPendingApproval   = "PENDING_APPROVAL"
	StatusApprovedForChange = "APPROVED_FOR_CHANGE"
	StatusApproved          = "APPROVED"
)

var validStatuses = map[string]bool{
	StatusDraft:             true,
	StatusCompleted:         true,
	StatusPendingApproval:   true,
	StatusApprovedForChange: true,
	StatusApproved:          true,
}

// lockedStatuses reject data writes until the section is unlocked or the
// pending request resolves.
var lockedStatuses = map[string]bool{
	StatusCompleted:       true,
	StatusApproved:        true,
	StatusPendingApproval: true,
}

// manualStatuses are set by explicit operations and outrank any status
// derived from children during aggregation.
var manualStatuses = map[string]bool{
	StatusPendingApproval:   true,
	StatusApprovedForChange: true,
	StatusApproved:          true,
}

// IsValidStatus reports whether the value is a known lifecycle status.
func IsValidStatus(status string) bool {
	return validStatuses[strings.ToUpper(strings.TrimSpace(status))]
}

// IsLocked reports whether a section in this status rejects data writes.
func IsLocked(status string) bool {
	return lockedStatuses[strings.ToUpper(strings.TrimSpace(status))]
}

// IsEditable reports whether a section in this status accepts data writes.
func IsEditable(status string) bool {
	s := strings.ToUpper(strings.TrimSpace(status))
	return s == StatusDraft || s == StatusApprovedForChange
}

// IsManual reports whether the status outranks derivation from children.
func IsManual(status string) bool {
	return manualStatuses[strings.ToUpper(strings.TrimSpace(status))]
}

// IsResolved reports whether the status counts as finished for parent
// aggregation.
func IsResolved(status string) bool {
	s := strings.ToUpper(strings.TrimSpace(status))
	return s == StatusCompleted || s == StatusApproved
}

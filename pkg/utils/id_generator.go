package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new UUID for generic identifiers
func GenerateID() string {
	return uuid.New().String()
}

// GenerateBatchRecordID generates a unique batch record ID
func GenerateBatchRecordID() string {
	return "BR-" + uuid.New().String()
}

// GenerateVersionID generates a unique section version ID
func GenerateVersionID() string {
	return "VER-" + uuid.New().String()
}

// GenerateAuditID generates a unique status audit ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// GenerateRequestID generates a unique approval request ID
func GenerateRequestID() string {
	return "REQ-" + uuid.New().String()
}

// GenerateSignatureID generates a unique electronic signature ID
func GenerateSignatureID() string {
	return "SIG-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

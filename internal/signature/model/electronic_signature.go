package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// ErrSignatureConsumed is returned when the consume CAS update finds the
// signature already used by a committed transition.
var ErrSignatureConsumed = errors.New("signature already consumed")

// ErrSignatureNotFound is returned when no signature exists for an ID.
var ErrSignatureNotFound = errors.New("signature not found")

// ElectronicSignature represents the ELECTRONIC_SIGNATURE table. A signature
// binds a user to one action on one entity and is spent by exactly one
// committed transition.
type ElectronicSignature struct {
	SignatureID   string  `db:"SIGNATURE_ID" json:"signatureId"`
	UserID        string  `db:"USER_ID" json:"userId"`
	EntityType    string  `db:"ENTITY_TYPE" json:"entityType"`
	EntityID      string  `db:"ENTITY_ID" json:"entityId"`
	Action        string  `db:"ACTION" json:"action"`
	BatchRecordID *string `db:"BATCH_RECORD_ID" json:"batchRecordId,omitempty"`
	PayloadHash   string  `db:"PAYLOAD_HASH" json:"payloadHash"`
	SignedAt      int64   `db:"SIGNED_AT" json:"signedAt"`
	ConsumedAt    *int64  `db:"CONSUMED_AT" json:"consumedAt,omitempty"`
}

// CreateSignatureRequest is the body of POST /signatures. Payload is the
// exact content being signed; only its hash is stored.
type CreateSignatureRequest struct {
	UserID        string          `json:"userId" binding:"required"`
	EntityType    string          `json:"entityType" binding:"required"`
	EntityID      string          `json:"entityId" binding:"required"`
	Action        string          `json:"action" binding:"required"`
	BatchRecordID *string         `json:"batchRecordId,omitempty"`
	Payload       json.RawMessage `json:"payload" binding:"required"`
}

// Expectation describes what a signature must attest to for one operation.
type Expectation struct {
	UserID        string
	EntityType    string
	EntityID      string
	Action        string
	BatchRecordID string
}

// HashPayload computes the canonical payload hash stored alongside a
// signature.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

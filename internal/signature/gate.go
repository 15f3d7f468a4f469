// Package signature implements the electronic signature gate. Every
// signature-gated transition verifies its signature up front and consumes it
// inside the same transaction that commits the transition.
package signature

import (
	"context"

	"github.com/openmes/batch-record-api/internal/signature/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/metrics"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// Verify checks that the signature exists, is unconsumed, and attests to
// exactly the expected user, action and entity. Any failure maps to
// SignatureError; the caller aborts before touching state.
func Verify(ctx context.Context, store SignatureStore, signatureID string, expected model.Expectation) (*model.ElectronicSignature, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SignatureGate"))

	if signatureID == "" {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature ID is required"))
	}

	sig, err := store.GetByID(ctx, signatureID)
	if err != nil {
		if err == model.ErrSignatureNotFound {
			return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature not found"))
		}
		logger.Error("Failed to load signature", log.String("signatureId", signatureID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	if sig.ConsumedAt != nil {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature has already been used"))
	}
	if expected.UserID != "" && sig.UserID != expected.UserID {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature belongs to a different user"))
	}
	if sig.Action != expected.Action {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature was issued for a different action"))
	}
	if sig.EntityType != expected.EntityType || sig.EntityID != expected.EntityID {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature was issued for a different entity"))
	}
	if expected.BatchRecordID != "" && sig.BatchRecordID != nil && *sig.BatchRecordID != expected.BatchRecordID {
		return nil, reject(serviceerror.CustomServiceError(serviceerror.SignatureError, "signature was issued for a different batch record"))
	}

	return sig, nil
}

// ConsumeOp returns a transactional operation that spends the signature.
// Composed into the same transaction as the transition it authorizes; the
// CAS inside Consume guarantees at most one winner.
func ConsumeOp(store SignatureStore, signatureID string) func(tx dbmodel.TxInterface) error {
	return func(tx dbmodel.TxInterface) error {
		return store.Consume(tx, signatureID, utils.GetCurrentTimeMillis())
	}
}

func reject(err *serviceerror.ServiceError) *serviceerror.ServiceError {
	metrics.Get().SignatureRejections.Inc()
	return err
}

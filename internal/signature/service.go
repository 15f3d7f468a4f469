package signature

import (
	"context"

	"github.com/openmes/batch-record-api/internal/signature/model"
	"github.com/openmes/batch-record-api/internal/system/constants"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// SignatureService defines the exported service interface
type SignatureService interface {
	CreateSignature(ctx context.Context, req model.CreateSignatureRequest) (*model.ElectronicSignature, *serviceerror.ServiceError)
	GetSignature(ctx context.Context, signatureID string) (*model.ElectronicSignature, *serviceerror.ServiceError)
}

// signatureService implements the SignatureService interface
type signatureService struct {
	stores *stores.StoreRegistry
}

// newSignatureService creates a new signature service
func newSignatureService(registry *stores.StoreRegistry) SignatureService {
	return &signatureService{
		stores: registry,
	}
}

// CreateSignature records a new electronic signature. The signature stores
// the hash of the signed payload and stays spendable until the transition
// it authorizes commits.
func (svc *signatureService) CreateSignature(ctx context.Context,
	req model.CreateSignatureRequest) (*model.ElectronicSignature, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SignatureService"))

	if err := utils.ValidateRequired("userId", req.UserID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("entityId", req.EntityID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if !validAction(req.Action) {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"action must be one of COMPLETE_SECTION, APPROVE_CHANGE_REQUEST, UNLOCK_SECTION")
	}
	if !validEntityType(req.EntityType) {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"entityType must be SECTION or APPROVAL_REQUEST")
	}
	if len(req.Payload) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "payload is required")
	}

	signatureStore := svc.stores.Signature.(SignatureStore)

	sig := &model.ElectronicSignature{
		SignatureID:   utils.GenerateSignatureID(),
		UserID:        req.UserID,
		EntityType:    utils.NormalizeStatus(req.EntityType),
		EntityID:      req.EntityID,
		Action:        utils.NormalizeStatus(req.Action),
		BatchRecordID: req.BatchRecordID,
		PayloadHash:   model.HashPayload(req.Payload),
		SignedAt:      utils.GetCurrentTimeMillis(),
	}

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return signatureStore.Create(tx, sig)
		},
	}
	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		logger.Error("Failed to create signature", log.String("userId", req.UserID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	logger.Info("Signature recorded",
		log.String("signatureId", sig.SignatureID),
		log.String("action", sig.Action),
		log.String("entityType", sig.EntityType),
	)
	return sig, nil
}

// GetSignature returns a signature by its ID.
func (svc *signatureService) GetSignature(ctx context.Context, signatureID string) (*model.ElectronicSignature, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SignatureService"))

	signatureStore := svc.stores.Signature.(SignatureStore)

	sig, err := signatureStore.GetByID(ctx, signatureID)
	if err != nil {
		if err == model.ErrSignatureNotFound {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Signature not found")
		}
		logger.Error("Failed to load signature", log.String("signatureId", signatureID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return sig, nil
}

func validAction(action string) bool {
	switch utils.NormalizeStatus(action) {
	case constants.ActionCompleteSection, constants.ActionApproveRequest, constants.ActionUnlockSection:
		return true
	}
	return false
}

func validEntityType(entityType string) bool {
	switch utils.NormalizeStatus(entityType) {
	case constants.EntityTypeSection, constants.EntityTypeApprovalRequest:
		return true
	}
	return false
}

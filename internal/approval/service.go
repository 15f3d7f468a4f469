package approval

import (
	"context"
	"errors"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/openmes/batch-record-api/internal/approval/model"
	"github.com/openmes/batch-record-api/internal/section/aggregate"
	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	"github.com/openmes/batch-record-api/internal/signature"
	signaturemodel "github.com/openmes/batch-record-api/internal/signature/model"
	"github.com/openmes/batch-record-api/internal/system/config"
	"github.com/openmes/batch-record-api/internal/system/constants"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/metrics"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/internal/template"
	templatemodel "github.com/openmes/batch-record-api/internal/template/model"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// sectionVersionStore is the slice of the section store this service
// consumes. Kept local to avoid an import cycle with the section package.
type sectionVersionStore interface {
	GetActiveVersion(ctx context.Context, batchRecordID, sectionID string) (*sectionmodel.SectionVersion, error)
	GetActiveVersions(ctx context.Context, batchRecordID string) ([]sectionmodel.SectionVersion, error)
	GetLatestTransitionTo(ctx context.Context, batchRecordID, sectionID, status string) (*sectionmodel.SectionStatusAudit, error)
	InsertVersion(tx dbmodel.TxInterface, version *sectionmodel.SectionVersion) error
	DeactivateVersion(tx dbmodel.TxInterface, versionID string) error
	UpdateActiveStatus(tx dbmodel.TxInterface, change sectionmodel.StatusChange) error
	InsertStatusAudit(tx dbmodel.TxInterface, audit *sectionmodel.SectionStatusAudit) error
}

// batchRecordReader is the slice of the batch record store this service
// consumes.
type batchRecordReader interface {
	GetTemplateID(ctx context.Context, batchRecordID string) (string, error)
}

// ApprovalService defines the exported service interface
type ApprovalService interface {
	CreateRequest(ctx context.Context, batchRecordID string, req model.CreateApprovalRequestRequest) (*model.ApprovalRequest, *serviceerror.ServiceError)
	ApproveRequest(ctx context.Context, requestID string, req model.ReviewRequest) (*model.ApprovalRequest, *serviceerror.ServiceError)
	RejectRequest(ctx context.Context, requestID string, req model.ReviewRequest) (*model.ApprovalRequest, *serviceerror.ServiceError)
	GetRequest(ctx context.Context, requestID string) (*model.ApprovalRequestDetail, *serviceerror.ServiceError)
	ListRequests(ctx context.Context, batchRecordID string) ([]model.ApprovalRequest, *serviceerror.ServiceError)
}

// approvalService implements the ApprovalService interface
type approvalService struct {
	stores *stores.StoreRegistry
}

// newApprovalService creates a new approval service
func newApprovalService(registry *stores.StoreRegistry) ApprovalService {
	return &approvalService{
		stores: registry,
	}
}

// CreateRequest opens a change request against a locked section. The
// section's active version moves to PENDING_APPROVAL in the same
// transaction, freezing it until the request is resolved.
func (svc *approvalService) CreateRequest(ctx context.Context, batchRecordID string,
	req model.CreateApprovalRequestRequest) (*model.ApprovalRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	if err := utils.ValidateRequired("sectionId", req.SectionID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("requestedBy", req.RequestedBy); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if len(req.ProposedData) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "proposedData is required")
	}

	approvalStore := svc.stores.Approval.(ApprovalStore)
	sectionStore := svc.stores.Section.(sectionVersionStore)
	batchRecordStore := svc.stores.BatchRecord.(batchRecordReader)

	if _, err := batchRecordStore.GetTemplateID(ctx, batchRecordID); err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Batch record not found")
		}
		logger.Error("Failed to load batch record", log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	current, err := sectionStore.GetActiveVersion(ctx, batchRecordID, req.SectionID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Section not found")
		}
		logger.Error("Failed to load active section version", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	status := utils.NormalizeStatus(current.Status)
	if status == sectionmodel.StatusPendingApproval {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Section already has a pending approval request")
	}
	if !sectionmodel.IsLocked(status) {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"Section is "+status+"; editable sections are changed by saving them directly")
	}

	if singlePendingRequest() {
		pending, err := approvalStore.CountPendingBySection(ctx, batchRecordID, req.SectionID)
		if err != nil {
			logger.Error("Failed to count pending requests", log.Error(err))
			return nil, &serviceerror.DatabaseError
		}
		if pending > 0 {
			return nil, serviceerror.CustomServiceError(serviceerror.ConflictError,
				"Section already has a pending approval request")
		}
	}

	now := utils.GetCurrentTimeMillis()
	request := &model.ApprovalRequest{
		RequestID:     utils.GenerateRequestID(),
		BatchRecordID: batchRecordID,
		SectionID:     req.SectionID,
		VersionID:     current.VersionID,
		RequestType:   model.RequestTypeChangeRequest,
		Status:        model.RequestStatusPending,
		Reason:        req.Reason,
		ExistingData:  current.Data,
		ProposedData:  string(req.ProposedData),
		RequestedBy:   req.RequestedBy,
		RequestedTime: now,
	}
	if req.RequestType != nil && *req.RequestType != "" {
		request.RequestType = utils.NormalizeStatus(*req.RequestType)
	}

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return approvalStore.Create(tx, request)
		},
		func(tx dbmodel.TxInterface) error {
			return sectionStore.UpdateActiveStatus(tx, sectionmodel.StatusChange{
				VersionID:         current.VersionID,
				Status:            sectionmodel.StatusPendingApproval,
				LockedAt:          current.LockedAt,
				LockedBy:          current.LockedBy,
				ApprovalRequestID: &request.RequestID,
			})
		},
		func(tx dbmodel.TxInterface) error {
			previous := current.Status
			return sectionStore.InsertStatusAudit(tx, &sectionmodel.SectionStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				BatchRecordID:  batchRecordID,
				SectionID:      req.SectionID,
				VersionID:      current.VersionID,
				CurrentStatus:  sectionmodel.StatusPendingApproval,
				PreviousStatus: &previous,
				ActionTime:     now,
				ActionBy:       &req.RequestedBy,
				Reason:         req.Reason,
			})
		},
	}

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		return nil, svc.mapTransactionError(logger, err, request.RequestID)
	}

	metrics.Get().ApprovalRequests.WithLabelValues(request.RequestType).Inc()
	logger.Info("Approval request created",
		log.String("requestId", request.RequestID),
		log.String("batchRecordId", batchRecordID),
		log.String("sectionId", req.SectionID),
		log.String("requestType", request.RequestType),
	)
	return request, nil
}

// ApproveRequest resolves a pending request as approved. The proposed data
// becomes a new APPROVED active version of the section; the approval is
// signature-gated and the reviewer must differ from the requester.
func (svc *approvalService) ApproveRequest(ctx context.Context, requestID string,
	req model.ReviewRequest) (*model.ApprovalRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	if err := utils.ValidateRequired("reviewedBy", req.ReviewedBy); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	approvalStore := svc.stores.Approval.(ApprovalStore)
	sectionStore := svc.stores.Section.(sectionVersionStore)
	signatureStore := svc.stores.Signature.(signature.SignatureStore)

	request, svcErr := svc.loadPendingRequest(ctx, approvalStore, requestID)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.RequestedBy == req.ReviewedBy {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"Reviewer cannot approve their own request")
	}

	if _, svcErr := signature.Verify(ctx, signatureStore, req.SignatureID, signaturemodel.Expectation{
		UserID:        req.ReviewedBy,
		EntityType:    constants.EntityTypeApprovalRequest,
		EntityID:      requestID,
		Action:        constants.ActionApproveRequest,
		BatchRecordID: request.BatchRecordID,
	}); svcErr != nil {
		return nil, svcErr
	}

	current, err := sectionStore.GetActiveVersion(ctx, request.BatchRecordID, request.SectionID)
	if err != nil {
		logger.Error("Failed to load active section version", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	sections, svcErr := svc.loadTemplateSections(ctx, request.BatchRecordID)
	if svcErr != nil {
		return nil, svcErr
	}
	activeVersions, err := sectionStore.GetActiveVersions(ctx, request.BatchRecordID)
	if err != nil {
		logger.Error("Failed to load active section versions", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	now := utils.GetCurrentTimeMillis()
	approved := &sectionmodel.SectionVersion{
		VersionID:         utils.GenerateVersionID(),
		BatchRecordID:     request.BatchRecordID,
		SectionID:         request.SectionID,
		ParentSectionID:   current.ParentSectionID,
		Version:           current.Version + 1,
		Data:              request.ProposedData,
		Status:            sectionmodel.StatusApproved,
		IsActive:          true,
		CreatedTime:       now,
		CreatedBy:         req.ReviewedBy,
		CompletedTime:     &now,
		CompletedBy:       &req.ReviewedBy,
		LockedAt:          &now,
		LockedBy:          &req.ReviewedBy,
		PreviousVersionID: &current.VersionID,
		ApprovalRequestID: &request.RequestID,
	}

	entries := aggregate.Entries(activeVersions)
	entries[request.SectionID] = aggregate.Entry{
		Status:    sectionmodel.StatusApproved,
		Version:   approved.Version,
		VersionID: approved.VersionID,
		LockedAt:  approved.LockedAt,
		LockedBy:  approved.LockedBy,
	}
	parentChanges := aggregate.Changes(sections, entries, aggregate.Derive(sections, entries))

	resolution := model.Resolution{
		RequestID:      requestID,
		Status:         model.RequestStatusApproved,
		ReviewedBy:     req.ReviewedBy,
		ReviewedTime:   now,
		ReviewComments: req.ReviewComments,
	}

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return approvalStore.Resolve(tx, resolution)
		},
		signature.ConsumeOp(signatureStore, req.SignatureID),
		func(tx dbmodel.TxInterface) error {
			return sectionStore.DeactivateVersion(tx, current.VersionID)
		},
		func(tx dbmodel.TxInterface) error {
			return sectionStore.InsertVersion(tx, approved)
		},
		func(tx dbmodel.TxInterface) error {
			previous := current.Status
			return sectionStore.InsertStatusAudit(tx, &sectionmodel.SectionStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				BatchRecordID:  request.BatchRecordID,
				SectionID:      request.SectionID,
				VersionID:      approved.VersionID,
				CurrentStatus:  sectionmodel.StatusApproved,
				PreviousStatus: &previous,
				ActionTime:     now,
				ActionBy:       &req.ReviewedBy,
				Reason:         req.ReviewComments,
				SignatureID:    &req.SignatureID,
			})
		},
	}
	ops = append(ops, svc.parentChangeOps(sectionStore, request.BatchRecordID, entries, parentChanges, req.ReviewedBy, now)...)

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		return nil, svc.mapTransactionError(logger, err, requestID)
	}

	metrics.Get().ApprovalResolutions.WithLabelValues("approved").Inc()
	logger.Info("Approval request approved",
		log.String("requestId", requestID),
		log.String("sectionId", request.SectionID),
		log.String("reviewedBy", req.ReviewedBy),
	)

	resolved := *request
	resolved.Status = model.RequestStatusApproved
	resolved.ReviewedBy = &req.ReviewedBy
	resolved.ReviewedTime = &now
	resolved.ReviewComments = req.ReviewComments
	return &resolved, nil
}

// RejectRequest resolves a pending request as rejected. The section's
// active version keeps its data and reverts to the status it held before
// entering PENDING_APPROVAL; no new version is created.
func (svc *approvalService) RejectRequest(ctx context.Context, requestID string,
	req model.ReviewRequest) (*model.ApprovalRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	if err := utils.ValidateRequired("reviewedBy", req.ReviewedBy); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	approvalStore := svc.stores.Approval.(ApprovalStore)
	sectionStore := svc.stores.Section.(sectionVersionStore)

	request, svcErr := svc.loadPendingRequest(ctx, approvalStore, requestID)
	if svcErr != nil {
		return nil, svcErr
	}

	current, err := sectionStore.GetActiveVersion(ctx, request.BatchRecordID, request.SectionID)
	if err != nil {
		logger.Error("Failed to load active section version", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	revertTo := svc.revertStatus(ctx, sectionStore, request)

	sections, svcErr := svc.loadTemplateSections(ctx, request.BatchRecordID)
	if svcErr != nil {
		return nil, svcErr
	}
	activeVersions, err := sectionStore.GetActiveVersions(ctx, request.BatchRecordID)
	if err != nil {
		logger.Error("Failed to load active section versions", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	now := utils.GetCurrentTimeMillis()

	change := sectionmodel.StatusChange{
		VersionID: current.VersionID,
		Status:    revertTo,
	}
	// A reverted COMPLETED section keeps its lock; reverting to an editable
	// status clears it together with the request link.
	if sectionmodel.IsLocked(revertTo) {
		change.LockedAt = current.LockedAt
		change.LockedBy = current.LockedBy
	}

	entries := aggregate.Entries(activeVersions)
	entries[request.SectionID] = aggregate.Entry{
		Status:    revertTo,
		Version:   current.Version,
		VersionID: current.VersionID,
		LockedAt:  change.LockedAt,
		LockedBy:  change.LockedBy,
	}
	parentChanges := aggregate.Changes(sections, entries, aggregate.Derive(sections, entries))

	resolution := model.Resolution{
		RequestID:      requestID,
		Status:         model.RequestStatusRejected,
		ReviewedBy:     req.ReviewedBy,
		ReviewedTime:   now,
		ReviewComments: req.ReviewComments,
	}

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return approvalStore.Resolve(tx, resolution)
		},
		func(tx dbmodel.TxInterface) error {
			return sectionStore.UpdateActiveStatus(tx, change)
		},
		func(tx dbmodel.TxInterface) error {
			previous := current.Status
			return sectionStore.InsertStatusAudit(tx, &sectionmodel.SectionStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				BatchRecordID:  request.BatchRecordID,
				SectionID:      request.SectionID,
				VersionID:      current.VersionID,
				CurrentStatus:  revertTo,
				PreviousStatus: &previous,
				ActionTime:     now,
				ActionBy:       &req.ReviewedBy,
				Reason:         req.ReviewComments,
			})
		},
	}
	ops = append(ops, svc.parentChangeOps(sectionStore, request.BatchRecordID, entries, parentChanges, req.ReviewedBy, now)...)

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		return nil, svc.mapTransactionError(logger, err, requestID)
	}

	metrics.Get().ApprovalResolutions.WithLabelValues("rejected").Inc()
	logger.Info("Approval request rejected",
		log.String("requestId", requestID),
		log.String("sectionId", request.SectionID),
		log.String("revertedTo", revertTo),
	)

	resolved := *request
	resolved.Status = model.RequestStatusRejected
	resolved.ReviewedBy = &req.ReviewedBy
	resolved.ReviewedTime = &now
	resolved.ReviewComments = req.ReviewComments
	return &resolved, nil
}

// GetRequest returns the stored request together with a line diff of the
// proposed change for reviewer display.
func (svc *approvalService) GetRequest(ctx context.Context, requestID string) (*model.ApprovalRequestDetail, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	approvalStore := svc.stores.Approval.(ApprovalStore)

	request, err := approvalStore.GetByID(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Approval request not found")
		}
		logger.Error("Failed to load approval request", log.String("requestId", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return &model.ApprovalRequestDetail{
		ApprovalRequest: *request,
		Diff:            renderDiff(request.ExistingData, request.ProposedData),
	}, nil
}

// ListRequests returns all approval requests of a batch record, newest
// first.
func (svc *approvalService) ListRequests(ctx context.Context, batchRecordID string) ([]model.ApprovalRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	approvalStore := svc.stores.Approval.(ApprovalStore)
	batchRecordStore := svc.stores.BatchRecord.(batchRecordReader)

	if _, err := batchRecordStore.GetTemplateID(ctx, batchRecordID); err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Batch record not found")
		}
		logger.Error("Failed to load batch record", log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	requests, err := approvalStore.ListByBatchRecord(ctx, batchRecordID)
	if err != nil {
		logger.Error("Failed to list approval requests", log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return requests, nil
}

func (svc *approvalService) loadPendingRequest(ctx context.Context, approvalStore ApprovalStore,
	requestID string) (*model.ApprovalRequest, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	request, err := approvalStore.GetByID(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Approval request not found")
		}
		logger.Error("Failed to load approval request", log.String("requestId", requestID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if request.IsTerminal() {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Approval request has already been "+strings.ToLower(request.Status))
	}
	return request, nil
}

// revertStatus determines the status the section held before the request
// froze it. The status audit trail is authoritative; DRAFT is the fallback
// when no transition was recorded.
func (svc *approvalService) revertStatus(ctx context.Context, sectionStore sectionVersionStore,
	request *model.ApprovalRequest) string {
	audit, err := sectionStore.GetLatestTransitionTo(ctx, request.BatchRecordID, request.SectionID,
		sectionmodel.StatusPendingApproval)
	if err != nil || audit.PreviousStatus == nil {
		return sectionmodel.StatusDraft
	}
	return *audit.PreviousStatus
}

func (svc *approvalService) loadTemplateSections(ctx context.Context, batchRecordID string) ([]templatemodel.Section, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApprovalService"))

	batchRecordStore := svc.stores.BatchRecord.(batchRecordReader)
	templateStore := svc.stores.Template.(template.TemplateStore)

	templateID, err := batchRecordStore.GetTemplateID(ctx, batchRecordID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Batch record not found")
		}
		logger.Error("Failed to load batch record", log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	sections, err := templateStore.GetSectionsByTemplateID(ctx, templateID)
	if err != nil {
		logger.Error("Failed to load template sections", log.String("templateId", templateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return sections, nil
}

// parentChangeOps turns derived parent status moves into status updates and
// audit rows.
func (svc *approvalService) parentChangeOps(sectionStore sectionVersionStore, batchRecordID string,
	entries map[string]aggregate.Entry, changes []aggregate.Change, actionBy string, now int64) []func(tx dbmodel.TxInterface) error {

	var ops []func(tx dbmodel.TxInterface) error
	for _, change := range changes {
		c := change
		previous := entries[c.SectionID].Status
		ops = append(ops, func(tx dbmodel.TxInterface) error {
			update := sectionmodel.StatusChange{
				VersionID: c.VersionID,
				Status:    c.Status,
			}
			if c.SetLock {
				lockedAt := now
				lockedBy := actionBy
				update.LockedAt = &lockedAt
				update.LockedBy = &lockedBy
			}
			if err := sectionStore.UpdateActiveStatus(tx, update); err != nil {
				return err
			}
			p := previous
			return sectionStore.InsertStatusAudit(tx, &sectionmodel.SectionStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				BatchRecordID:  batchRecordID,
				SectionID:      c.SectionID,
				VersionID:      c.VersionID,
				CurrentStatus:  c.Status,
				PreviousStatus: &p,
				ActionTime:     now,
				ActionBy:       &actionBy,
			})
		})
	}
	return ops
}

// mapTransactionError translates store sentinels into service errors.
func (svc *approvalService) mapTransactionError(logger *log.Logger, err error, requestID string) *serviceerror.ServiceError {
	switch {
	case errors.Is(err, model.ErrRequestNotPending):
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Approval request has already been resolved")
	case errors.Is(err, sectionmodel.ErrActiveVersionChanged):
		metrics.Get().VersionConflicts.Inc()
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Section was modified concurrently, retry with the latest version")
	case errors.Is(err, signaturemodel.ErrSignatureConsumed):
		return serviceerror.CustomServiceError(serviceerror.SignatureError,
			"signature has already been used")
	default:
		logger.Error("Approval transaction failed", log.String("requestId", requestID), log.Error(err))
		return &serviceerror.DatabaseError
	}
}

// renderDiff produces a plain-text line diff between the stored and
// proposed payloads.
func renderDiff(existing, proposed string) string {
	if existing == proposed {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(existing, proposed, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("-")
			b.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			b.WriteString("+")
			b.WriteString(d.Text)
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func singlePendingRequest() bool {
	if cfg := config.Get(); cfg != nil {
		return cfg.Workflow.SinglePendingRequest
	}
	return true
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

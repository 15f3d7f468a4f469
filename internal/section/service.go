package section

import (
	"context"
	"errors"
	"strings"

	approvalmodel "github.com/openmes/batch-record-api/internal/approval/model"
	"github.com/openmes/batch-record-api/internal/section/aggregate"
	"github.com/openmes/batch-record-api/internal/section/model"
	"github.com/openmes/batch-record-api/internal/section/validator"
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

// batchRecordReader is the slice of the batch record store this service
// consumes. Kept local to avoid an import cycle with the batchrecord package.
type batchRecordReader interface {
	GetTemplateID(ctx context.Context, batchRecordID string) (string, error)
}

// approvalRequestStore is the slice of the approval store this service
// consumes.
type approvalRequestStore interface {
	Create(tx dbmodel.TxInterface, request *approvalmodel.ApprovalRequest) error
	GetByIDs(ctx context.Context, requestIDs []string) (map[string]approvalmodel.ApprovalRequest, error)
}

// SectionService defines the exported service interface
type SectionService interface {
	SaveSection(ctx context.Context, batchRecordID, sectionID string, req model.SaveSectionRequest) (*model.SaveSectionResponse, *serviceerror.ServiceError)
	UnlockSection(ctx context.Context, batchRecordID, sectionID string, req model.UnlockSectionRequest) (*model.SectionVersion, *serviceerror.ServiceError)
	GetSection(ctx context.Context, batchRecordID, sectionID string) (*model.SectionVersion, *serviceerror.ServiceError)
	GetSectionHistory(ctx context.Context, batchRecordID, sectionID string) ([]model.SectionHistoryEntry, *serviceerror.ServiceError)
	GetSectionStatuses(ctx context.Context, batchRecordID string) ([]model.SectionStatusEntry, *serviceerror.ServiceError)
}

// sectionService implements the SectionService interface
type sectionService struct {
	stores *stores.StoreRegistry
}

// newSectionService creates a new section service
func newSectionService(registry *stores.StoreRegistry) SectionService {
	return &sectionService{
		stores: registry,
	}
}

// SaveSection records new data for a section as a new immutable version.
// The save is signature-gated, checked against the template's dependency
// and field validation rules, and committed in a single transaction
// together with signature consumption, audit rows and any parent status
// moves it triggers.
func (svc *sectionService) SaveSection(ctx context.Context, batchRecordID, sectionID string,
	req model.SaveSectionRequest) (*model.SaveSectionResponse, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	if err := validator.ValidateSaveRequest(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	fields, err := validator.DecodeData(req.Data)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	sectionStore := svc.stores.Section.(SectionStore)
	signatureStore := svc.stores.Signature.(signature.SignatureStore)

	templateID, svcErr := svc.resolveTemplateID(ctx, batchRecordID)
	if svcErr != nil {
		return nil, svcErr
	}

	sig, svcErr := signature.Verify(ctx, signatureStore, req.SignatureID, signaturemodel.Expectation{
		UserID:        req.UserID,
		EntityType:    constants.EntityTypeSection,
		EntityID:      sectionID,
		Action:        constants.ActionCompleteSection,
		BatchRecordID: batchRecordID,
	})
	if svcErr != nil {
		return nil, svcErr
	}

	sections, rules, svcErr := svc.loadTemplate(ctx, templateID)
	if svcErr != nil {
		return nil, svcErr
	}
	templateSection := findSection(sections, sectionID)
	if templateSection == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Section not found in template")
	}

	activeVersions, err := sectionStore.GetActiveVersions(ctx, batchRecordID)
	if err != nil {
		logger.Error("Failed to load active section versions",
			log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	current := findActiveVersion(activeVersions, sectionID)

	if current != nil && model.IsLocked(current.Status) {
		return nil, serviceerror.CustomServiceError(serviceerror.SectionLockedError,
			"Section is "+current.Status+" and cannot be modified")
	}

	entries := aggregate.Entries(activeVersions)
	derived := aggregate.Derive(sections, entries)
	if failure := template.EvaluateDependencies(sectionID, rules, derived); failure != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DependencyUnsatisfiedError, failure.Error())
	}

	if err := validator.ValidateFields(fields, template.FieldValidationRules(sectionID, rules)); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	now := utils.GetCurrentTimeMillis()
	newVersion := buildNextVersion(batchRecordID, sectionID, templateSection, current, req, now)

	approvalRule := template.RequiresApproval(sectionID, rules)
	changeRequested := current != nil && utils.NormalizeStatus(current.Status) == model.StatusApprovedForChange
	var request *approvalmodel.ApprovalRequest
	if approvalRule != nil || changeRequested {
		request = buildApprovalRequest(newVersion, current, approvalRule, changeRequested, req.UserID, now)
		newVersion.Status = model.StatusPendingApproval
		newVersion.ApprovalRequestID = &request.RequestID
	}

	// Recompute the aggregation as if the save already landed, so parent
	// moves commit in the same transaction.
	entries[sectionID] = aggregate.Entry{
		Status:    newVersion.Status,
		Version:   newVersion.Version,
		VersionID: newVersion.VersionID,
		LockedAt:  newVersion.LockedAt,
		LockedBy:  newVersion.LockedBy,
	}
	parentChanges := aggregate.Changes(sections, entries, aggregate.Derive(sections, entries))

	ops := svc.buildSaveOps(sectionStore, signatureStore, current, newVersion, request, req, parentChanges, entries, now)

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		return nil, svc.mapTransactionError(logger, err, batchRecordID, sectionID)
	}

	metrics.Get().SectionSaves.WithLabelValues(newVersion.Status).Inc()
	if request != nil {
		metrics.Get().ApprovalRequests.WithLabelValues(request.RequestType).Inc()
	}
	logger.Info("Section saved",
		log.String("batchRecordId", batchRecordID),
		log.String("sectionId", sectionID),
		log.String("status", newVersion.Status),
		log.Int("version", newVersion.Version),
		log.String("signedBy", sig.UserID),
	)

	return &model.SaveSectionResponse{
		BatchRecordID:     batchRecordID,
		SectionID:         sectionID,
		Status:            newVersion.Status,
		Version:           newVersion.Version,
		VersionID:         newVersion.VersionID,
		ApprovalRequestID: newVersion.ApprovalRequestID,
	}, nil
}

// UnlockSection moves a completed or approved section to
// APPROVED_FOR_CHANGE so it can be edited again. The unlock is
// signature-gated and re-aggregates parent statuses, since the section no
// longer counts as resolved.
func (svc *sectionService) UnlockSection(ctx context.Context, batchRecordID, sectionID string,
	req model.UnlockSectionRequest) (*model.SectionVersion, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	if err := utils.ValidateRequired("userId", req.UserID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("signatureId", req.SignatureID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	sectionStore := svc.stores.Section.(SectionStore)
	signatureStore := svc.stores.Signature.(signature.SignatureStore)

	templateID, svcErr := svc.resolveTemplateID(ctx, batchRecordID)
	if svcErr != nil {
		return nil, svcErr
	}

	current, err := sectionStore.GetActiveVersion(ctx, batchRecordID, sectionID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Section not found")
		}
		logger.Error("Failed to load active section version", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	status := utils.NormalizeStatus(current.Status)
	if status == model.StatusPendingApproval {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Section has a pending approval request that must be resolved first")
	}
	if !model.IsLocked(status) {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"Section is "+status+" and does not need unlocking")
	}

	if _, svcErr := signature.Verify(ctx, signatureStore, req.SignatureID, signaturemodel.Expectation{
		UserID:        req.UserID,
		EntityType:    constants.EntityTypeSection,
		EntityID:      sectionID,
		Action:        constants.ActionUnlockSection,
		BatchRecordID: batchRecordID,
	}); svcErr != nil {
		return nil, svcErr
	}

	sections, _, svcErr := svc.loadTemplate(ctx, templateID)
	if svcErr != nil {
		return nil, svcErr
	}
	activeVersions, err := sectionStore.GetActiveVersions(ctx, batchRecordID)
	if err != nil {
		logger.Error("Failed to load active section versions", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	now := utils.GetCurrentTimeMillis()
	entries := aggregate.Entries(activeVersions)
	entries[sectionID] = aggregate.Entry{
		Status:    model.StatusApprovedForChange,
		Version:   current.Version,
		VersionID: current.VersionID,
	}
	parentChanges := aggregate.Changes(sections, entries, aggregate.Derive(sections, entries))

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return sectionStore.UpdateActiveStatus(tx, model.StatusChange{
				VersionID:         current.VersionID,
				Status:            model.StatusApprovedForChange,
				ApprovalRequestID: current.ApprovalRequestID,
			})
		},
		signature.ConsumeOp(signatureStore, req.SignatureID),
		func(tx dbmodel.TxInterface) error {
			previous := current.Status
			return sectionStore.InsertStatusAudit(tx, &model.SectionStatusAudit{
				StatusAuditID:  utils.GenerateAuditID(),
				BatchRecordID:  batchRecordID,
				SectionID:      sectionID,
				VersionID:      current.VersionID,
				CurrentStatus:  model.StatusApprovedForChange,
				PreviousStatus: &previous,
				ActionTime:     now,
				ActionBy:       &req.UserID,
				Reason:         req.Reason,
				SignatureID:    &req.SignatureID,
			})
		},
	}
	ops = append(ops, svc.parentChangeOps(sectionStore, batchRecordID, entries, parentChanges, req.UserID, now)...)

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		return nil, svc.mapTransactionError(logger, err, batchRecordID, sectionID)
	}

	logger.Info("Section unlocked",
		log.String("batchRecordId", batchRecordID),
		log.String("sectionId", sectionID),
		log.String("previousStatus", current.Status),
	)

	unlocked := *current
	unlocked.Status = model.StatusApprovedForChange
	unlocked.LockedAt = nil
	unlocked.LockedBy = nil
	return &unlocked, nil
}

// GetSection returns the active version of a section.
func (svc *sectionService) GetSection(ctx context.Context, batchRecordID, sectionID string) (*model.SectionVersion, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	sectionStore := svc.stores.Section.(SectionStore)

	version, err := sectionStore.GetActiveVersion(ctx, batchRecordID, sectionID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Section not found")
		}
		logger.Error("Failed to load active section version", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return version, nil
}

// GetSectionHistory returns every version of a section, newest first, each
// annotated with its linked approval request when one exists.
func (svc *sectionService) GetSectionHistory(ctx context.Context, batchRecordID, sectionID string) ([]model.SectionHistoryEntry, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	sectionStore := svc.stores.Section.(SectionStore)
	approvalStore := svc.stores.Approval.(approvalRequestStore)

	versions, err := sectionStore.GetHistory(ctx, batchRecordID, sectionID)
	if err != nil {
		logger.Error("Failed to load section history", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if len(versions) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Section not found")
	}

	var requestIDs []string
	for _, v := range versions {
		if v.ApprovalRequestID != nil {
			requestIDs = append(requestIDs, *v.ApprovalRequestID)
		}
	}

	requests := map[string]approvalmodel.ApprovalRequest{}
	if len(requestIDs) > 0 {
		requests, err = approvalStore.GetByIDs(ctx, requestIDs)
		if err != nil {
			logger.Error("Failed to load approval requests for history", log.Error(err))
			return nil, &serviceerror.DatabaseError
		}
	}

	history := make([]model.SectionHistoryEntry, 0, len(versions))
	for _, v := range versions {
		entry := model.SectionHistoryEntry{SectionVersion: v}
		if v.ApprovalRequestID != nil {
			if request, ok := requests[*v.ApprovalRequestID]; ok {
				r := request
				entry.ApprovalRequest = &r
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

// GetSectionStatuses returns the aggregated status of every section of the
// batch record's template, in template order. Parent statuses are derived
// from their children on every read.
func (svc *sectionService) GetSectionStatuses(ctx context.Context, batchRecordID string) ([]model.SectionStatusEntry, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	sectionStore := svc.stores.Section.(SectionStore)

	templateID, svcErr := svc.resolveTemplateID(ctx, batchRecordID)
	if svcErr != nil {
		return nil, svcErr
	}
	sections, _, svcErr := svc.loadTemplate(ctx, templateID)
	if svcErr != nil {
		return nil, svcErr
	}

	activeVersions, err := sectionStore.GetActiveVersions(ctx, batchRecordID)
	if err != nil {
		logger.Error("Failed to load active section versions", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	entries := aggregate.Entries(activeVersions)
	derived := aggregate.Derive(sections, entries)

	statuses := make([]model.SectionStatusEntry, 0, len(sections))
	for _, s := range sections {
		entry := entries[s.SectionID]
		statuses = append(statuses, model.SectionStatusEntry{
			SectionID: s.SectionID,
			Status:    derived[s.SectionID],
			Version:   entry.Version,
			VersionID: entry.VersionID,
			LockedAt:  entry.LockedAt,
			LockedBy:  entry.LockedBy,
		})
	}
	return statuses, nil
}

// resolveTemplateID loads the template ID of a batch record.
func (svc *sectionService) resolveTemplateID(ctx context.Context, batchRecordID string) (string, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	batchRecordStore := svc.stores.BatchRecord.(batchRecordReader)
	templateID, err := batchRecordStore.GetTemplateID(ctx, batchRecordID)
	if err != nil {
		if isNotFound(err) {
			return "", serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Batch record not found")
		}
		logger.Error("Failed to load batch record", log.String("batchRecordId", batchRecordID), log.Error(err))
		return "", &serviceerror.DatabaseError
	}
	return templateID, nil
}

// loadTemplate loads the section layout and rules of a template.
func (svc *sectionService) loadTemplate(ctx context.Context, templateID string) ([]templatemodel.Section, []templatemodel.TemplateRule, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SectionService"))

	templateStore := svc.stores.Template.(template.TemplateStore)

	sections, err := templateStore.GetSectionsByTemplateID(ctx, templateID)
	if err != nil {
		logger.Error("Failed to load template sections", log.String("templateId", templateID), log.Error(err))
		return nil, nil, &serviceerror.DatabaseError
	}
	rules, err := templateStore.GetRulesByTemplateID(ctx, templateID)
	if err != nil {
		logger.Error("Failed to load template rules", log.String("templateId", templateID), log.Error(err))
		return nil, nil, &serviceerror.DatabaseError
	}
	return sections, rules, nil
}

// buildSaveOps composes the transactional operations of a save: supersede
// the old version, insert the new one, create the approval request when one
// is needed, consume the signature, write the audit row and apply parent
// moves.
func (svc *sectionService) buildSaveOps(sectionStore SectionStore, signatureStore signature.SignatureStore,
	current *model.SectionVersion, newVersion *model.SectionVersion, request *approvalmodel.ApprovalRequest,
	req model.SaveSectionRequest, parentChanges []aggregate.Change, entries map[string]aggregate.Entry,
	now int64) []func(tx dbmodel.TxInterface) error {

	var ops []func(tx dbmodel.TxInterface) error

	if current != nil {
		ops = append(ops, func(tx dbmodel.TxInterface) error {
			return sectionStore.DeactivateVersion(tx, current.VersionID)
		})
	}
	ops = append(ops, func(tx dbmodel.TxInterface) error {
		return sectionStore.InsertVersion(tx, newVersion)
	})
	if request != nil {
		approvalStore := svc.stores.Approval.(approvalRequestStore)
		ops = append(ops, func(tx dbmodel.TxInterface) error {
			return approvalStore.Create(tx, request)
		})
	}
	ops = append(ops, signature.ConsumeOp(signatureStore, req.SignatureID))
	ops = append(ops, func(tx dbmodel.TxInterface) error {
		var previous *string
		if current != nil {
			p := current.Status
			previous = &p
		}
		return sectionStore.InsertStatusAudit(tx, &model.SectionStatusAudit{
			StatusAuditID:  utils.GenerateAuditID(),
			BatchRecordID:  newVersion.BatchRecordID,
			SectionID:      newVersion.SectionID,
			VersionID:      newVersion.VersionID,
			CurrentStatus:  newVersion.Status,
			PreviousStatus: previous,
			ActionTime:     now,
			ActionBy:       &req.UserID,
			SignatureID:    &req.SignatureID,
		})
	})
	ops = append(ops, svc.parentChangeOps(sectionStore, newVersion.BatchRecordID, entries, parentChanges, req.UserID, now)...)
	return ops
}

// parentChangeOps turns derived parent status moves into status updates and
// audit rows.
func (svc *sectionService) parentChangeOps(sectionStore SectionStore, batchRecordID string,
	entries map[string]aggregate.Entry, changes []aggregate.Change, actionBy string, now int64) []func(tx dbmodel.TxInterface) error {

	var ops []func(tx dbmodel.TxInterface) error
	for _, change := range changes {
		c := change
		previous := entries[c.SectionID].Status
		ops = append(ops, func(tx dbmodel.TxInterface) error {
			update := model.StatusChange{
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
			return sectionStore.InsertStatusAudit(tx, &model.SectionStatusAudit{
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
func (svc *sectionService) mapTransactionError(logger *log.Logger, err error, batchRecordID, sectionID string) *serviceerror.ServiceError {
	switch {
	case errors.Is(err, model.ErrActiveVersionChanged):
		metrics.Get().VersionConflicts.Inc()
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			"Section was modified concurrently, retry with the latest version")
	case errors.Is(err, signaturemodel.ErrSignatureConsumed):
		return serviceerror.CustomServiceError(serviceerror.SignatureError,
			"signature has already been used")
	default:
		logger.Error("Section transaction failed",
			log.String("batchRecordId", batchRecordID),
			log.String("sectionId", sectionID),
			log.Error(err))
		return &serviceerror.DatabaseError
	}
}

func buildNextVersion(batchRecordID, sectionID string, templateSection *templatemodel.Section,
	current *model.SectionVersion, req model.SaveSectionRequest, now int64) *model.SectionVersion {

	version := &model.SectionVersion{
		VersionID:       utils.GenerateVersionID(),
		BatchRecordID:   batchRecordID,
		SectionID:       sectionID,
		ParentSectionID: templateSection.ParentSectionID,
		Version:         1,
		Data:            string(req.Data),
		Status:          model.StatusCompleted,
		IsActive:        true,
		CreatedTime:     now,
		CreatedBy:       req.UserID,
		CompletedTime:   &now,
		CompletedBy:     &req.UserID,
		LockedAt:        &now,
		LockedBy:        &req.UserID,
	}
	if current != nil {
		version.Version = current.Version + 1
		previousID := current.VersionID
		version.PreviousVersionID = &previousID
	}
	return version
}

func buildApprovalRequest(newVersion *model.SectionVersion, current *model.SectionVersion,
	rule *templatemodel.ApprovalRequirementRule, changeRequested bool, requestedBy string, now int64) *approvalmodel.ApprovalRequest {

	requestType := approvalmodel.RequestTypeSectionApproval
	if changeRequested {
		requestType = approvalmodel.RequestTypeChangeRequest
	} else if rule != nil && rule.RequestType != nil && *rule.RequestType != "" {
		requestType = *rule.RequestType
	}

	var workflow config.WorkflowConfig
	if cfg := config.Get(); cfg != nil {
		workflow = cfg.Workflow
	}
	reason := workflow.GetDefaultApprovalReason()
	if rule != nil && rule.Reason != nil && *rule.Reason != "" {
		reason = *rule.Reason
	}

	existingData := "{}"
	if current != nil {
		existingData = current.Data
	}

	return &approvalmodel.ApprovalRequest{
		RequestID:     utils.GenerateRequestID(),
		BatchRecordID: newVersion.BatchRecordID,
		SectionID:     newVersion.SectionID,
		VersionID:     newVersion.VersionID,
		RequestType:   requestType,
		Status:        approvalmodel.RequestStatusPending,
		Reason:        &reason,
		ExistingData:  existingData,
		ProposedData:  newVersion.Data,
		RequestedBy:   requestedBy,
		RequestedTime: now,
	}
}

func findSection(sections []templatemodel.Section, sectionID string) *templatemodel.Section {
	for i := range sections {
		if sections[i].SectionID == sectionID {
			return &sections[i]
		}
	}
	return nil
}

func findActiveVersion(versions []model.SectionVersion, sectionID string) *model.SectionVersion {
	for i := range versions {
		if versions[i].SectionID == sectionID {
			return &versions[i]
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

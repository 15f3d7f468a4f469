package batchrecord

import (
	"context"
	"strings"

	"github.com/openmes/batch-record-api/internal/batchrecord/model"
	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/internal/template"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// sectionVersionWriter is the slice of the section store this service
// consumes. Kept local to avoid an import cycle with the section package.
type sectionVersionWriter interface {
	InsertVersion(tx dbmodel.TxInterface, version *sectionmodel.SectionVersion) error
	InsertStatusAudit(tx dbmodel.TxInterface, audit *sectionmodel.SectionStatusAudit) error
}

// BatchRecordService defines the exported service interface
type BatchRecordService interface {
	CreateBatchRecord(ctx context.Context, req model.CreateBatchRecordRequest) (*model.BatchRecord, *serviceerror.ServiceError)
	GetBatchRecord(ctx context.Context, batchRecordID string) (*model.BatchRecord, *serviceerror.ServiceError)
	ListBatchRecords(ctx context.Context, limit, offset int) (*model.BatchRecordListResponse, *serviceerror.ServiceError)
}

// batchRecordService implements the BatchRecordService interface
type batchRecordService struct {
	stores *stores.StoreRegistry
}

// newBatchRecordService creates a new batch record service
func newBatchRecordService(registry *stores.StoreRegistry) BatchRecordService {
	return &batchRecordService{
		stores: registry,
	}
}

// CreateBatchRecord instantiates a template as a new batch record. Every
// template section gets a version-1 DRAFT row so the record starts with a
// complete, consistent section state.
func (svc *batchRecordService) CreateBatchRecord(ctx context.Context,
	req model.CreateBatchRecordRequest) (*model.BatchRecord, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "BatchRecordService"))

	if err := utils.ValidateRequired("templateId", req.TemplateID); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("name", req.Name); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if err := utils.ValidateRequired("createdBy", req.CreatedBy); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	batchRecordStore := svc.stores.BatchRecord.(BatchRecordStore)
	sectionStore := svc.stores.Section.(sectionVersionWriter)
	templateStore := svc.stores.Template.(template.TemplateStore)

	if _, err := templateStore.GetTemplateByID(ctx, req.TemplateID); err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Template not found")
		}
		logger.Error("Failed to load template", log.String("templateId", req.TemplateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	sections, err := templateStore.GetSectionsByTemplateID(ctx, req.TemplateID)
	if err != nil {
		logger.Error("Failed to load template sections", log.String("templateId", req.TemplateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	now := utils.GetCurrentTimeMillis()
	record := &model.BatchRecord{
		BatchRecordID: utils.GenerateBatchRecordID(),
		TemplateID:    req.TemplateID,
		Name:          utils.SanitizeString(req.Name),
		LotNumber:     req.LotNumber,
		Status:        model.RecordStatusInProgress,
		CreatedTime:   now,
		CreatedBy:     req.CreatedBy,
	}

	ops := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return batchRecordStore.Create(tx, record)
		},
	}
	for _, s := range sections {
		section := s
		ops = append(ops, func(tx dbmodel.TxInterface) error {
			version := &sectionmodel.SectionVersion{
				VersionID:       utils.GenerateVersionID(),
				BatchRecordID:   record.BatchRecordID,
				SectionID:       section.SectionID,
				ParentSectionID: section.ParentSectionID,
				Version:         1,
				Data:            "{}",
				Status:          sectionmodel.StatusDraft,
				IsActive:        true,
				CreatedTime:     now,
				CreatedBy:       req.CreatedBy,
			}
			if err := sectionStore.InsertVersion(tx, version); err != nil {
				return err
			}
			return sectionStore.InsertStatusAudit(tx, &sectionmodel.SectionStatusAudit{
				StatusAuditID: utils.GenerateAuditID(),
				BatchRecordID: record.BatchRecordID,
				SectionID:     section.SectionID,
				VersionID:     version.VersionID,
				CurrentStatus: sectionmodel.StatusDraft,
				ActionTime:    now,
				ActionBy:      &req.CreatedBy,
			})
		})
	}

	if err := svc.stores.ExecuteTransaction(ops); err != nil {
		logger.Error("Failed to create batch record", log.String("templateId", req.TemplateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	logger.Info("Batch record created",
		log.String("batchRecordId", record.BatchRecordID),
		log.String("templateId", req.TemplateID),
		log.Int("sections", len(sections)),
	)
	return record, nil
}

// GetBatchRecord returns a batch record by its ID.
func (svc *batchRecordService) GetBatchRecord(ctx context.Context, batchRecordID string) (*model.BatchRecord, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "BatchRecordService"))

	batchRecordStore := svc.stores.BatchRecord.(BatchRecordStore)

	record, err := batchRecordStore.GetByID(ctx, batchRecordID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Batch record not found")
		}
		logger.Error("Failed to load batch record", log.String("batchRecordId", batchRecordID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return record, nil
}

// ListBatchRecords returns a page of batch records, newest first.
func (svc *batchRecordService) ListBatchRecords(ctx context.Context, limit, offset int) (*model.BatchRecordListResponse, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "BatchRecordService"))

	batchRecordStore := svc.stores.BatchRecord.(BatchRecordStore)

	limit = utils.ValidateLimit(limit)
	offset = utils.ValidateOffset(offset)

	records, total, err := batchRecordStore.List(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list batch records", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return &model.BatchRecordListResponse{
		TotalResults: total,
		Count:        len(records),
		BatchRecords: records,
	}, nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

package template

import (
	"context"
	"strings"

	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/log"
	"github.com/openmes/batch-record-api/internal/system/stores"
	"github.com/openmes/batch-record-api/internal/template/model"
)

// TemplateService defines the exported service interface
type TemplateService interface {
	GetTemplate(ctx context.Context, templateID string) (*model.TemplateResponse, *serviceerror.ServiceError)
	GetRules(ctx context.Context, templateID string) ([]model.TemplateRule, *serviceerror.ServiceError)
}

// templateService implements the TemplateService interface
type templateService struct {
	stores *stores.StoreRegistry
}

// newTemplateService creates a new template service
func newTemplateService(registry *stores.StoreRegistry) TemplateService {
	return &templateService{
		stores: registry,
	}
}

// GetTemplate returns the template definition with its section tree
func (svc *templateService) GetTemplate(ctx context.Context, templateID string) (*model.TemplateResponse, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TemplateService"))

	templateStore := svc.stores.Template.(TemplateStore)

	template, err := templateStore.GetTemplateByID(ctx, templateID)
	if err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Template not found")
		}
		logger.Error("Failed to load template", log.String("templateId", templateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	sections, err := templateStore.GetSectionsByTemplateID(ctx, templateID)
	if err != nil {
		logger.Error("Failed to load template sections", log.String("templateId", templateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return &model.TemplateResponse{
		Template: *template,
		Sections: BuildSectionTree(sections),
	}, nil
}

// GetRules returns the decoded rules of a template
func (svc *templateService) GetRules(ctx context.Context, templateID string) ([]model.TemplateRule, *serviceerror.ServiceError) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TemplateService"))

	templateStore := svc.stores.Template.(TemplateStore)

	if _, err := templateStore.GetTemplateByID(ctx, templateID); err != nil {
		if isNotFound(err) {
			return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Template not found")
		}
		logger.Error("Failed to load template", log.String("templateId", templateID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	rules, err := templateStore.GetRulesByTemplateID(ctx, templateID)
	if err != nil {
		logger.Error("Failed to load template rules", log.String("templateId", templateID), log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, err.Error())
	}
	return rules, nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

package template

import (
	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/stores"
)

// NewStore creates and returns a new template store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) TemplateStore {
	return newTemplateStore(dbClient)
}

// Initialize sets up the template module and registers routes
func Initialize(rg *gin.RouterGroup, registry *stores.StoreRegistry) TemplateService {
	service := newTemplateService(registry)
	handler := newTemplateHandler(service)

	rg.GET("/templates/:templateId", handler.getTemplate)
	rg.GET("/templates/:templateId/rules", handler.getTemplateRules)

	return service
}

package section

import (
	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/stores"
)

// NewStore creates and returns a new section store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) SectionStore {
	return newSectionStore(dbClient)
}

// Initialize sets up the section module and registers routes
func Initialize(rg *gin.RouterGroup, registry *stores.StoreRegistry) SectionService {
	service := newSectionService(registry)
	handler := newSectionHandler(service)

	rg.PUT("/batch-records/:batchRecordId/sections/:sectionId", handler.saveSection)
	rg.POST("/batch-records/:batchRecordId/sections/:sectionId/unlock", handler.unlockSection)
	rg.GET("/batch-records/:batchRecordId/sections/:sectionId", handler.getSection)
	rg.GET("/batch-records/:batchRecordId/sections/:sectionId/history", handler.getSectionHistory)
	rg.GET("/batch-records/:batchRecordId/section-statuses", handler.getSectionStatuses)

	return service
}

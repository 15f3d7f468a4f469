package batchrecord

import (
	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/stores"
)

// NewStore creates and returns a new batch record store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) BatchRecordStore {
	return newBatchRecordStore(dbClient)
}

// Initialize sets up the batch record module and registers routes
func Initialize(rg *gin.RouterGroup, registry *stores.StoreRegistry) BatchRecordService {
	service := newBatchRecordService(registry)
	handler := newBatchRecordHandler(service)

	rg.POST("/batch-records", handler.createBatchRecord)
	rg.GET("/batch-records", handler.listBatchRecords)
	rg.GET("/batch-records/:batchRecordId", handler.getBatchRecord)

	return service
}

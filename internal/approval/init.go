package approval

import (
	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/stores"
)

// NewStore creates and returns a new approval store (exported for registry)
func NewStore(dbClient provider.DBClientInterface) ApprovalStore {
	return newApprovalStore(dbClient)
}

// Initialize sets up the approval module and registers routes
func Initialize(rg *gin.RouterGroup, registry *stores.StoreRegistry) ApprovalService {
	service := newApprovalService(registry)
	handler := newApprovalHandler(service)

	rg.POST("/batch-records/:batchRecordId/approval-requests", handler.createRequest)
	rg.GET("/batch-records/:batchRecordId/approval-requests", handler.listRequests)
	rg.GET("/approval-requests/:requestId", handler.getRequest)
	rg.POST("/approval-requests/:requestId/approve", handler.approveRequest)
	rg.POST("/approval-requests/:requestId/reject", handler.rejectRequest)

	return service
}

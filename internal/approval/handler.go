package approval

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/approval/model"
	"github.com/openmes/batch-record-api/internal/system/utils"
)

type approvalHandler struct {
	service ApprovalService
}

func newApprovalHandler(service ApprovalService) *approvalHandler {
	return &approvalHandler{
		service: service,
	}
}

// createRequest handles POST /batch-records/{batchRecordId}/approval-requests
func (h *approvalHandler) createRequest(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	if batchRecordID == "" {
		utils.SendValidationError(c, "batch record ID is required")
		return
	}

	var req model.CreateApprovalRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	request, serviceErr := h.service.CreateRequest(c.Request.Context(), batchRecordID, req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// listRequests handles GET /batch-records/{batchRecordId}/approval-requests
func (h *approvalHandler) listRequests(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	if batchRecordID == "" {
		utils.SendValidationError(c, "batch record ID is required")
		return
	}

	requests, serviceErr := h.service.ListRequests(c.Request.Context(), batchRecordID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approvalRequests": requests})
}

// getRequest handles GET /approval-requests/{requestId}
func (h *approvalHandler) getRequest(c *gin.Context) {
	requestID := c.Param("requestId")
	if requestID == "" {
		utils.SendValidationError(c, "request ID is required")
		return
	}

	detail, serviceErr := h.service.GetRequest(c.Request.Context(), requestID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// approveRequest handles POST /approval-requests/{requestId}/approve
func (h *approvalHandler) approveRequest(c *gin.Context) {
	requestID := c.Param("requestId")
	if requestID == "" {
		utils.SendValidationError(c, "request ID is required")
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	request, serviceErr := h.service.ApproveRequest(c.Request.Context(), requestID, req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, request)
}

// rejectRequest handles POST /approval-requests/{requestId}/reject
func (h *approvalHandler) rejectRequest(c *gin.Context) {
	requestID := c.Param("requestId")
	if requestID == "" {
		utils.SendValidationError(c, "request ID is required")
		return
	}

	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	request, serviceErr := h.service.RejectRequest(c.Request.Context(), requestID, req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, request)
}

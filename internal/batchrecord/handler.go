package batchrecord

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/batchrecord/model"
	"github.com/openmes/batch-record-api/internal/system/utils"
)

type batchRecordHandler struct {
	service BatchRecordService
}

func newBatchRecordHandler(service BatchRecordService) *batchRecordHandler {
	return &batchRecordHandler{
		service: service,
	}
}

// createBatchRecord handles POST /batch-records
func (h *batchRecordHandler) createBatchRecord(c *gin.Context) {
	var req model.CreateBatchRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	record, serviceErr := h.service.CreateBatchRecord(c.Request.Context(), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// getBatchRecord handles GET /batch-records/{batchRecordId}
func (h *batchRecordHandler) getBatchRecord(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	if batchRecordID == "" {
		utils.SendValidationError(c, "batch record ID is required")
		return
	}

	record, serviceErr := h.service.GetBatchRecord(c.Request.Context(), batchRecordID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, record)
}

// listBatchRecords handles GET /batch-records
func (h *batchRecordHandler) listBatchRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	response, serviceErr := h.service.ListBatchRecords(c.Request.Context(), limit, offset)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, response)
}

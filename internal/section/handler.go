package section

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/section/model"
	"github.com/openmes/batch-record-api/internal/system/utils"
)

type sectionHandler struct {
	service SectionService
}

func newSectionHandler(service SectionService) *sectionHandler {
	return &sectionHandler{
		service: service,
	}
}

// saveSection handles PUT /batch-records/{batchRecordId}/sections/{sectionId}
func (h *sectionHandler) saveSection(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	sectionID := c.Param("sectionId")
	if batchRecordID == "" || sectionID == "" {
		utils.SendValidationError(c, "batch record ID and section ID are required")
		return
	}

	var req model.SaveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	response, serviceErr := h.service.SaveSection(c.Request.Context(), batchRecordID, sectionID, req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, response)
}

// unlockSection handles POST /batch-records/{batchRecordId}/sections/{sectionId}/unlock
func (h *sectionHandler) unlockSection(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	sectionID := c.Param("sectionId")
	if batchRecordID == "" || sectionID == "" {
		utils.SendValidationError(c, "batch record ID and section ID are required")
		return
	}

	var req model.UnlockSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	version, serviceErr := h.service.UnlockSection(c.Request.Context(), batchRecordID, sectionID, req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, version)
}

// getSection handles GET /batch-records/{batchRecordId}/sections/{sectionId}
func (h *sectionHandler) getSection(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	sectionID := c.Param("sectionId")
	if batchRecordID == "" || sectionID == "" {
		utils.SendValidationError(c, "batch record ID and section ID are required")
		return
	}

	version, serviceErr := h.service.GetSection(c.Request.Context(), batchRecordID, sectionID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, version)
}

// getSectionHistory handles GET /batch-records/{batchRecordId}/sections/{sectionId}/history
func (h *sectionHandler) getSectionHistory(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	sectionID := c.Param("sectionId")
	if batchRecordID == "" || sectionID == "" {
		utils.SendValidationError(c, "batch record ID and section ID are required")
		return
	}

	history, serviceErr := h.service.GetSectionHistory(c.Request.Context(), batchRecordID, sectionID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// getSectionStatuses handles GET /batch-records/{batchRecordId}/section-statuses
func (h *sectionHandler) getSectionStatuses(c *gin.Context) {
	batchRecordID := c.Param("batchRecordId")
	if batchRecordID == "" {
		utils.SendValidationError(c, "batch record ID is required")
		return
	}

	statuses, serviceErr := h.service.GetSectionStatuses(c.Request.Context(), batchRecordID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sectionStatuses": statuses})
}

package signature

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/signature/model"
	"github.com/openmes/batch-record-api/internal/system/utils"
)

type signatureHandler struct {
	service SignatureService
}

func newSignatureHandler(service SignatureService) *signatureHandler {
	return &signatureHandler{
		service: service,
	}
}

// createSignature handles POST /signatures
func (h *signatureHandler) createSignature(c *gin.Context) {
	var req model.CreateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body: "+err.Error())
		return
	}

	sig, serviceErr := h.service.CreateSignature(c.Request.Context(), req)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, sig)
}

// getSignature handles GET /signatures/{signatureId}
func (h *signatureHandler) getSignature(c *gin.Context) {
	signatureID := c.Param("signatureId")
	if signatureID == "" {
		utils.SendValidationError(c, "signature ID is required")
		return
	}

	sig, serviceErr := h.service.GetSignature(c.Request.Context(), signatureID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, sig)
}

package template

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/utils"
)

type templateHandler struct {
	service TemplateService
}

func newTemplateHandler(service TemplateService) *templateHandler {
	return &templateHandler{
		service: service,
	}
}

// getTemplate handles GET /templates/{templateId}
func (h *templateHandler) getTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		utils.SendValidationError(c, "template ID is required")
		return
	}

	response, serviceErr := h.service.GetTemplate(c.Request.Context(), templateID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getTemplateRules handles GET /templates/{templateId}/rules
func (h *templateHandler) getTemplateRules(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		utils.SendValidationError(c, "template ID is required")
		return
	}

	rules, serviceErr := h.service.GetRules(c.Request.Context(), templateID)
	if serviceErr != nil {
		utils.SendError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

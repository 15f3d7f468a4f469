package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmes/batch-record-api/internal/system/error/apierror"
	"github.com/openmes/batch-record-api/internal/system/error/serviceerror"
	"github.com/openmes/batch-record-api/internal/system/middleware"
)

// statusCodeFor maps a service error to its HTTP status. Workflow errors
// carry dedicated statuses: locked sections are 423, unmet dependencies 412,
// signature failures 403.
func statusCodeFor(err *serviceerror.ServiceError) int {
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}

	switch err.Code {
	case serviceerror.ResourceNotFoundError.Code:
		return http.StatusNotFound
	case serviceerror.ConflictError.Code:
		return http.StatusConflict
	case serviceerror.SectionLockedError.Code:
		return http.StatusLocked
	case serviceerror.DependencyUnsatisfiedError.Code:
		return http.StatusPreconditionFailed
	case serviceerror.SignatureError.Code:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// SendError writes a ServiceError as a JSON error response with the
// appropriate status code and the request correlation ID.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	response := apierror.NewErrorResponse(err.Error, err.ErrorDescription)
	if correlationID := c.GetString(middleware.ContextKeyCorrelationID); correlationID != "" {
		response.WithCorrelationID(correlationID)
	}
	c.JSON(statusCodeFor(err), response)
}

// SendValidationError is a shorthand for a 400 with a specific description.
func SendValidationError(c *gin.Context, description string) {
	SendError(c, serviceerror.CustomServiceError(serviceerror.ValidationError, description))
}

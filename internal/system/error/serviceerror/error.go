package serviceerror

import "github.com/openmes/batch-record-api/internal/system/error/codes"

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.InternalServerError,
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.DatabaseError,
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidRequest,
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ValidationError,
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ResourceNotFound,
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConflictError,
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	// SectionLockedError maps to 423 Locked: the targeted section version is
	// in a locked status and cannot accept data writes.
	SectionLockedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.SectionLocked,
		Error:            "section_locked",
		ErrorDescription: "Section is locked and cannot be modified",
	}

	// DependencyUnsatisfiedError maps to 412 Precondition Failed: a
	// dependency rule on the section is not satisfied.
	DependencyUnsatisfiedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.DependencyFailed,
		Error:            "dependency_unsatisfied",
		ErrorDescription: "Section dependency conditions are not satisfied",
	}

	// SignatureError maps to 403 Forbidden: the electronic signature is
	// missing, already consumed, or bound to a different action or entity.
	SignatureError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.SignatureInvalid,
		Error:            "invalid_signature",
		ErrorDescription: "Electronic signature verification failed",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

package apierror

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Code          string `json:"error"`
	Description   string `json:"error_description"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func NewErrorResponse(code, description string) *ErrorResponse {
	return &ErrorResponse{
		Code:        code,
		Description: description,
	}
}

// WithCorrelationID attaches the request correlation ID to the response.
func (e *ErrorResponse) WithCorrelationID(id string) *ErrorResponse {
	e.CorrelationID = id
	return e
}

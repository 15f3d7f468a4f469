package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	ActorHeaderName         = "X-Actor-ID"
	ContentTypeJSON         = "application/json"
	DefaultPageSize         = 30
	MaxPageSize             = 100

	// APIBasePath is the prefix for all versioned API routes.
	APIBasePath = "/api/v1"
)

// Signature-gated actions. Every state transition that needs an electronic
// signature names one of these as its required action.
const (
	ActionCompleteSection = "COMPLETE_SECTION"
	ActionApproveRequest  = "APPROVE_CHANGE_REQUEST"
	ActionUnlockSection   = "UNLOCK_SECTION"
)

// Entity types referenced by signatures and audit rows.
const (
	EntityTypeSection         = "SECTION"
	EntityTypeApprovalRequest = "APPROVAL_REQUEST"
)

package codes

// Error codes for the Batch Record Service
const (
	// General errors
	InternalServerError = "BRE-5000"
	DatabaseError       = "BRE-5001"
	InvalidRequest      = "BRE-4000"
	ValidationError     = "BRE-4001"
	ResourceNotFound    = "BRE-4040"
	ConflictError       = "BRE-4090"
	SectionLocked       = "BRE-4230"
	DependencyFailed    = "BRE-4120"
	SignatureInvalid    = "BRE-4030"

	// Template-specific errors
	TemplateNotFound         = "BRE-4041"
	TemplateSectionNotFound  = "BRE-4042"
	TemplateRuleInvalid      = "BRE-4002"
	TemplateValidationFailed = "BRE-4003"

	// Batch record-specific errors
	BatchRecordNotFound       = "BRE-4043"
	BatchRecordCreationFailed = "BRE-5010"

	// Section-specific errors
	SectionNotFound        = "BRE-4044"
	SectionSaveFailed      = "BRE-5011"
	SectionUnlockFailed    = "BRE-5012"
	SectionVersionConflict = "BRE-4091"
	FieldValidationFailed  = "BRE-4004"

	// Approval request-specific errors
	ApprovalRequestNotFound = "BRE-4045"
	ApprovalCreationFailed  = "BRE-5020"
	ApprovalResolveFailed   = "BRE-5021"
	ApprovalAlreadyResolved = "BRE-4092"
	ApprovalPendingExists   = "BRE-4093"

	// Signature-specific errors
	SignatureNotFound    = "BRE-4046"
	SignatureConsumed    = "BRE-4031"
	SignatureActionWrong = "BRE-4032"
	SignatureEntityWrong = "BRE-4033"
)

package model

import (
	"encoding/json"
	"fmt"
)

// Rule types stored in TEMPLATE_RULE.RULE_TYPE.
const (
	RuleTypeSectionDependency   = "SECTION_DEPENDENCY"
	RuleTypeFieldValidation     = "FIELD_VALIDATION"
	RuleTypeApprovalRequirement = "APPROVAL_REQUIREMENT"
	RuleTypeBusinessRule        = "BUSINESS_RULE"
)

// SectionDependencyRule requires another section to have reached a status
// before the target section may be saved.
type SectionDependencyRule struct {
	SourceSectionID string `json:"sourceSectionId"`
	Condition       string `json:"condition"`
}

// FieldValidationRule constrains one field of the target section's data.
type FieldValidationRule struct {
	FieldID   string  `json:"fieldId"`
	Required  bool    `json:"required"`
	Pattern   *string `json:"pattern,omitempty"`
	MinLength *int    `json:"minLength,omitempty"`
	MaxLength *int    `json:"maxLength,omitempty"`
}

// ApprovalRequirementRule forces completion of the target section through
// an approval request.
type ApprovalRequirementRule struct {
	RequestType *string `json:"requestType,omitempty"`
	Reason      *string `json:"reason,omitempty"`
}

// TemplateRule represents the TEMPLATE_RULE table. The payload column is
// decoded once at load into the typed field matching RuleType. BUSINESS_RULE
// payloads are recognized but carry no typed payload; the engine does not
// act on them.
type TemplateRule struct {
	RuleID          string `db:"RULE_ID" json:"ruleId"`
	TemplateID      string `db:"TEMPLATE_ID" json:"templateId"`
	RuleType        string `db:"RULE_TYPE" json:"ruleType"`
	TargetSectionID string `db:"TARGET_SECTION_ID" json:"targetSectionId"`

	Dependency      *SectionDependencyRule   `json:"dependency,omitempty"`
	FieldValidation *FieldValidationRule     `json:"fieldValidation,omitempty"`
	Approval        *ApprovalRequirementRule `json:"approvalRequirement,omitempty"`
}

// DecodePayload fills the typed payload field for the rule's type.
func (r *TemplateRule) DecodePayload(payload string) error {
	switch r.RuleType {
	case RuleTypeSectionDependency:
		var dep SectionDependencyRule
		if err := json.Unmarshal([]byte(payload), &dep); err != nil {
			return fmt.Errorf("rule %s: invalid dependency payload: %w", r.RuleID, err)
		}
		if dep.SourceSectionID == "" || dep.Condition == "" {
			return fmt.Errorf("rule %s: dependency payload missing sourceSectionId or condition", r.RuleID)
		}
		r.Dependency = &dep
	case RuleTypeFieldValidation:
		var fv FieldValidationRule
		if err := json.Unmarshal([]byte(payload), &fv); err != nil {
			return fmt.Errorf("rule %s: invalid field validation payload: %w", r.RuleID, err)
		}
		if fv.FieldID == "" {
			return fmt.Errorf("rule %s: field validation payload missing fieldId", r.RuleID)
		}
		r.FieldValidation = &fv
	case RuleTypeApprovalRequirement:
		var ar ApprovalRequirementRule
		if err := json.Unmarshal([]byte(payload), &ar); err != nil {
			return fmt.Errorf("rule %s: invalid approval requirement payload: %w", r.RuleID, err)
		}
		r.Approval = &ar
	case RuleTypeBusinessRule:
		// Validated as JSON but otherwise ignored by the engine.
		if !json.Valid([]byte(payload)) {
			return fmt.Errorf("rule %s: invalid business rule payload", r.RuleID)
		}
	default:
		return fmt.Errorf("rule %s: unknown rule type %q", r.RuleID, r.RuleType)
	}
	return nil
}

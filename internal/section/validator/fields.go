// Package validator validates section save input against the template's
// field validation rules.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"

	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	templatemodel "github.com/openmes/batch-record-api/internal/template/model"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// ValidateSaveRequest checks the structural parts of a save request before
// any state is read.
func ValidateSaveRequest(req sectionmodel.SaveSectionRequest) error {
	if err := utils.ValidateRequired("userId", req.UserID); err != nil {
		return err
	}
	if err := utils.ValidateRequired("signatureId", req.SignatureID); err != nil {
		return err
	}
	if _, err := DecodeData(req.Data); err != nil {
		return err
	}
	return nil
}

// DecodeData parses the section data payload, which must be a JSON object.
func DecodeData(data json.RawMessage) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is required")
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("data must be a JSON object")
	}
	return fields, nil
}

// ValidateFields applies the template's field validation rules to the
// decoded section data. Returns the first violation.
func ValidateFields(fields map[string]interface{}, rules []templatemodel.FieldValidationRule) error {
	for _, rule := range rules {
		value, present := fields[rule.FieldID]

		if rule.Required && (!present || isEmpty(value)) {
			return fmt.Errorf("field %s is required", rule.FieldID)
		}
		if !present {
			continue
		}

		text, isString := value.(string)
		if !isString {
			continue
		}

		if rule.MinLength != nil && len(text) < *rule.MinLength {
			return fmt.Errorf("field %s must be at least %d characters", rule.FieldID, *rule.MinLength)
		}
		if rule.MaxLength != nil && len(text) > *rule.MaxLength {
			return fmt.Errorf("field %s exceeds maximum length of %d characters", rule.FieldID, *rule.MaxLength)
		}
		if rule.Pattern != nil && *rule.Pattern != "" {
			re, err := regexp.Compile(*rule.Pattern)
			if err != nil {
				return fmt.Errorf("field %s has an invalid validation pattern", rule.FieldID)
			}
			if !re.MatchString(text) {
				return fmt.Errorf("field %s does not match the required format", rule.FieldID)
			}
		}
	}
	return nil
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		return text == ""
	}
	return false
}

package template

import (
	"fmt"

	"github.com/openmes/batch-record-api/internal/template/model"
	"github.com/openmes/batch-record-api/pkg/utils"
)

// Dependency condition semantics. A condition names the minimum progress the
// source section must have made, not its literal status: a section that was
// completed and later unlocked or sent for approval still counts as having
// been completed.
var (
	satisfiesCompleted = map[string]bool{
		"PENDING_APPROVAL":    true,
		"APPROVED_FOR_CHANGE": true,
		"COMPLETED":           true,
		"APPROVED":            true,
	}
	satisfiesApproved = map[string]bool{
		"APPROVED_FOR_CHANGE": true,
		"APPROVED":            true,
	}
)

// DependencyFailure identifies the first dependency rule that blocked a save.
type DependencyFailure struct {
	SourceSectionID string
	Condition       string
	ActualStatus    string
}

func (f *DependencyFailure) Error() string {
	return fmt.Sprintf("section %s must reach %s (currently %s)", f.SourceSectionID, f.Condition, f.ActualStatus)
}

// EvaluateDependencies checks every SECTION_DEPENDENCY rule targeting the
// given section against the aggregated status snapshot. Returns the first
// unsatisfied rule, or nil when all pass. Sections absent from the snapshot
// count as DRAFT.
func EvaluateDependencies(targetSectionID string, rules []model.TemplateRule, statuses map[string]string) *DependencyFailure {
	for _, rule := range rules {
		if rule.RuleType != model.RuleTypeSectionDependency || rule.TargetSectionID != targetSectionID {
			continue
		}
		dep := rule.Dependency
		if dep == nil {
			continue
		}

		actual := utils.NormalizeStatus(statuses[dep.SourceSectionID])
		if actual == "" {
			actual = "DRAFT"
		}

		if !conditionSatisfied(utils.NormalizeStatus(dep.Condition), actual) {
			return &DependencyFailure{
				SourceSectionID: dep.SourceSectionID,
				Condition:       utils.NormalizeStatus(dep.Condition),
				ActualStatus:    actual,
			}
		}
	}
	return nil
}

// conditionSatisfied reports whether a source status meets a dependency
// condition. Unknown conditions are never satisfied.
func conditionSatisfied(condition, status string) bool {
	switch condition {
	case "COMPLETED":
		return satisfiesCompleted[status]
	case "APPROVED":
		return satisfiesApproved[status]
	default:
		return false
	}
}

// RequiresApproval returns the APPROVAL_REQUIREMENT rule targeting the
// section, or nil when completion does not need approval.
func RequiresApproval(targetSectionID string, rules []model.TemplateRule) *model.ApprovalRequirementRule {
	for _, rule := range rules {
		if rule.RuleType == model.RuleTypeApprovalRequirement && rule.TargetSectionID == targetSectionID {
			if rule.Approval != nil {
				return rule.Approval
			}
			return &model.ApprovalRequirementRule{}
		}
	}
	return nil
}

// FieldValidationRules returns the FIELD_VALIDATION rules targeting the section.
func FieldValidationRules(targetSectionID string, rules []model.TemplateRule) []model.FieldValidationRule {
	var fieldRules []model.FieldValidationRule
	for _, rule := range rules {
		if rule.RuleType == model.RuleTypeFieldValidation && rule.TargetSectionID == targetSectionID && rule.FieldValidation != nil {
			fieldRules = append(fieldRules, *rule.FieldValidation)
		}
	}
	return fieldRules
}

// BuildSectionTree links sections into parent/child form and returns the
// roots. Sections referencing a missing parent are treated as roots so a
// malformed template cannot hide sections.
func BuildSectionTree(sections []model.Section) []*model.Section {
	nodes := make(map[string]*model.Section, len(sections))
	ordered := make([]*model.Section, 0, len(sections))
	for i := range sections {
		node := sections[i]
		node.Subsections = nil
		nodes[node.SectionID] = &node
		ordered = append(ordered, &node)
	}

	var roots []*model.Section
	for _, node := range ordered {
		if node.ParentSectionID != nil {
			if parent, ok := nodes[*node.ParentSectionID]; ok && parent != node {
				parent.Subsections = append(parent.Subsections, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

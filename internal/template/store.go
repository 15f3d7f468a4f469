package template

import (
	"context"
	"encoding/json"
	"fmt"

	dbmodel "github.com/openmes/batch-record-api/internal/system/database/model"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	dbutils "github.com/openmes/batch-record-api/internal/system/database/utils"
	"github.com/openmes/batch-record-api/internal/template/model"
)

// DBQuery objects for all template operations
var (
	QueryGetTemplateByID = dbmodel.DBQuery{
		ID:    "GET_TEMPLATE_BY_ID",
		Query: "SELECT TEMPLATE_ID, NAME, DESCRIPTION, VERSION, CREATED_TIME FROM TEMPLATE WHERE TEMPLATE_ID = ?",
	}

	QueryGetSectionsByTemplateID = dbmodel.DBQuery{
		ID:    "GET_SECTIONS_BY_TEMPLATE_ID",
		Query: "SELECT SECTION_ID, TEMPLATE_ID, NAME, PARENT_SECTION_ID, ORDER_INDEX, FIELDS FROM TEMPLATE_SECTION WHERE TEMPLATE_ID = ? ORDER BY ORDER_INDEX ASC",
	}

	QueryGetRulesByTemplateID = dbmodel.DBQuery{
		ID:    "GET_RULES_BY_TEMPLATE_ID",
		Query: "SELECT RULE_ID, TEMPLATE_ID, RULE_TYPE, TARGET_SECTION_ID, PAYLOAD FROM TEMPLATE_RULE WHERE TEMPLATE_ID = ?",
	}
)

// TemplateStore defines the interface for template definition reads.
// Templates are authored outside this service; the engine only reads them.
type TemplateStore interface {
	GetTemplateByID(ctx context.Context, templateID string) (*model.Template, error)
	GetSectionsByTemplateID(ctx context.Context, templateID string) ([]model.Section, error)
	GetRulesByTemplateID(ctx context.Context, templateID string) ([]model.TemplateRule, error)
}

// store implements TemplateStore
type store struct {
	dbClient provider.DBClientInterface
}

// newTemplateStore creates a new template store
func newTemplateStore(dbClient provider.DBClientInterface) TemplateStore {
	return &store{
		dbClient: dbClient,
	}
}

// GetTemplateByID retrieves a template definition by ID
func (s *store) GetTemplateByID(ctx context.Context, templateID string) (*model.Template, error) {
	results, err := s.dbClient.Query(QueryGetTemplateByID, templateID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("template not found")
	}
	return mapToTemplate(results[0]), nil
}

// GetSectionsByTemplateID retrieves all section definitions of a template
// in authoring order
func (s *store) GetSectionsByTemplateID(ctx context.Context, templateID string) ([]model.Section, error) {
	results, err := s.dbClient.Query(QueryGetSectionsByTemplateID, templateID)
	if err != nil {
		return nil, err
	}

	sections := make([]model.Section, 0, len(results))
	for _, row := range results {
		section, err := mapToSection(row)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *section)
	}
	return sections, nil
}

// GetRulesByTemplateID retrieves all rules of a template with payloads decoded
func (s *store) GetRulesByTemplateID(ctx context.Context, templateID string) ([]model.TemplateRule, error) {
	results, err := s.dbClient.Query(QueryGetRulesByTemplateID, templateID)
	if err != nil {
		return nil, err
	}

	rules := make([]model.TemplateRule, 0, len(results))
	for _, row := range results {
		rule, err := mapToRule(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// mapToTemplate converts a database row map to Template
func mapToTemplate(row map[string]interface{}) *model.Template {
	template := &model.Template{}

	if v, ok := row["TEMPLATE_ID"].(string); ok {
		template.TemplateID = v
	}
	if v, ok := row["NAME"].(string); ok {
		template.Name = v
	}
	if v, ok := row["DESCRIPTION"].(string); ok {
		template.Description = &v
	}
	if v, ok := dbutils.ParseInt64Column(row["VERSION"]); ok {
		template.Version = int(v)
	}
	if v, ok := dbutils.ParseInt64Column(row["CREATED_TIME"]); ok {
		template.CreatedTime = v
	}

	return template
}

// mapToSection converts a database row map to Section, decoding the FIELDS
// JSON column
func mapToSection(row map[string]interface{}) (*model.Section, error) {
	section := &model.Section{}

	if v, ok := row["SECTION_ID"].(string); ok {
		section.SectionID = v
	}
	if v, ok := row["TEMPLATE_ID"].(string); ok {
		section.TemplateID = v
	}
	if v, ok := row["NAME"].(string); ok {
		section.Name = v
	}
	if v, ok := row["PARENT_SECTION_ID"].(string); ok {
		section.ParentSectionID = &v
	}
	if v, ok := dbutils.ParseInt64Column(row["ORDER_INDEX"]); ok {
		section.OrderIndex = int(v)
	}
	if v, ok := row["FIELDS"].(string); ok && v != "" {
		if err := json.Unmarshal([]byte(v), &section.Fields); err != nil {
			return nil, fmt.Errorf("section %s: invalid fields definition: %w", section.SectionID, err)
		}
	}

	return section, nil
}

// mapToRule converts a database row map to TemplateRule with the payload
// decoded into its typed form
func mapToRule(row map[string]interface{}) (*model.TemplateRule, error) {
	rule := &model.TemplateRule{}

	if v, ok := row["RULE_ID"].(string); ok {
		rule.RuleID = v
	}
	if v, ok := row["TEMPLATE_ID"].(string); ok {
		rule.TemplateID = v
	}
	if v, ok := row["RULE_TYPE"].(string); ok {
		rule.RuleType = v
	}
	if v, ok := row["TARGET_SECTION_ID"].(string); ok {
		rule.TargetSectionID = v
	}

	payload := "{}"
	if v, ok := row["PAYLOAD"].(string); ok && v != "" {
		payload = v
	}
	if err := rule.DecodePayload(payload); err != nil {
		return nil, err
	}

	return rule, nil
}

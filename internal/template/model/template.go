package model

// Template represents the TEMPLATE table
type Template struct {
	TemplateID  string  `db:"TEMPLATE_ID" json:"templateId"`
	Name        string  `db:"NAME" json:"name"`
	Description *string `db:"DESCRIPTION" json:"description,omitempty"`
	Version     int     `db:"VERSION" json:"version"`
	CreatedTime int64   `db:"CREATED_TIME" json:"createdTime"`
}

// FieldDefinition describes one data field of a section. Definitions are
// stored as a JSON array in the TEMPLATE_SECTION row.
type FieldDefinition struct {
	FieldID  string `json:"fieldId"`
	Label    string `json:"label"`
	DataType string `json:"dataType"`
}

// Section represents the TEMPLATE_SECTION table. Subsections is populated
// in memory from parent back-references, never persisted.
type Section struct {
	SectionID       string            `db:"SECTION_ID" json:"sectionId"`
	TemplateID      string            `db:"TEMPLATE_ID" json:"templateId"`
	Name            string            `db:"NAME" json:"name"`
	ParentSectionID *string           `db:"PARENT_SECTION_ID" json:"parentSectionId,omitempty"`
	OrderIndex      int               `db:"ORDER_INDEX" json:"orderIndex"`
	Fields          []FieldDefinition `json:"fields,omitempty"`
	Subsections     []*Section        `json:"subsections,omitempty"`
}

// TemplateResponse is the API shape for GET /templates/{templateId}.
type TemplateResponse struct {
	Template
	Sections []*Section `json:"sections"`
}

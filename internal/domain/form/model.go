package form

import (
	"time"

	"github.com/google/uuid"
)

// FieldType enumerates the input types a form field can take.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldTextarea  FieldType = "textarea"
	FieldNumber    FieldType = "number"
	FieldEmail     FieldType = "email"
	FieldDate      FieldType = "date"
	FieldSelect    FieldType = "select"
	FieldRadio     FieldType = "radio"
	FieldAggregate FieldType = "aggregate"
)

// ValidFieldType reports whether t is a known field type.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldEmail, FieldDate,
		FieldSelect, FieldRadio, FieldAggregate:
		return true
	}
	return false
}

// Form maps to the form table.
type Form struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FieldSchema describes a single field of a form. A field is either a plain
// input or, when it carries sub-headers, a pure grouping node whose leaf
// descendants hold the actual inputs. Sub-header fields are themselves
// FieldSchemas, so the type is recursive; the portal's product limit of two
// grouping levels is enforced by ValidateSchema, not by the type.
type FieldSchema struct {
	FieldName         string      `json:"field_name"`
	FieldLabel        string      `json:"field_label"`
	FieldType         FieldType   `json:"field_type"`
	IsRequired        bool        `json:"is_required"`
	IsPrimaryColumn   bool        `json:"is_primary_column"`
	IsSecondaryColumn bool        `json:"is_secondary_column"`
	ReferenceDataName *string     `json:"reference_data_name,omitempty"`
	PlaceholderText   *string     `json:"placeholder_text,omitempty"`
	AggregateFields   []string    `json:"aggregate_fields,omitempty"`
	FieldOrder        int         `json:"field_order"`
	HasSubHeaders     bool        `json:"has_sub_headers"`
	SubHeaders        []SubHeader `json:"sub_headers,omitempty"`
}

// IsGroup reports whether the field is a grouping node rather than an input.
func (f FieldSchema) IsGroup() bool {
	return f.HasSubHeaders && len(f.SubHeaders) > 0
}

// SubHeader is a named, labeled group of fields nested under a parent field.
type SubHeader struct {
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Fields []FieldSchema `json:"fields"`
}

package form

import "testing"

func aggFixture() []FieldSchema {
	fields := []FieldSchema{
		{FieldLabel: "Male", FieldType: FieldNumber},
		{FieldLabel: "Female", FieldType: FieldNumber},
		{FieldLabel: "Total", FieldType: FieldAggregate, AggregateFields: []string{"male", "female"}},
	}
	Normalize(fields)
	return fields
}

func TestEvaluateAggregates_Sum(t *testing.T) {
	data := map[string]any{"male": "3", "female": float64(4)}
	EvaluateAggregates(aggFixture(), data)
	if data["total"] != "7" {
		t.Errorf("total = %v, want 7", data["total"])
	}
}

func TestEvaluateAggregates_SkipsUnparseable(t *testing.T) {
	// value 3, then unparseable, then 4: skip the bad one, total 7
	fields := []FieldSchema{
		{FieldLabel: "A", FieldType: FieldNumber},
		{FieldLabel: "B", FieldType: FieldNumber},
		{FieldLabel: "C", FieldType: FieldNumber},
		{FieldLabel: "Total", FieldType: FieldAggregate, AggregateFields: []string{"a", "b", "c"}},
	}
	Normalize(fields)
	data := map[string]any{"a": "3", "b": "n/a", "c": "4"}
	EvaluateAggregates(fields, data)
	if data["total"] != "7" {
		t.Errorf("total = %v, want 7", data["total"])
	}
}

func TestEvaluateAggregates_NoneParseableIsEmpty(t *testing.T) {
	data := map[string]any{"male": "unknown", "female": ""}
	EvaluateAggregates(aggFixture(), data)
	if data["total"] != "" {
		t.Errorf(`total = %v, want "" (never "0")`, data["total"])
	}
}

func TestEvaluateAggregates_OverwritesClientValue(t *testing.T) {
	data := map[string]any{"male": "2", "female": "2", "total": "999"}
	EvaluateAggregates(aggFixture(), data)
	if data["total"] != "4" {
		t.Errorf("total = %v, want recomputed 4", data["total"])
	}
}

func TestEvaluateAggregates_InsideSubHeader(t *testing.T) {
	fields := []FieldSchema{{
		FieldLabel: "Staff", FieldType: FieldText,
		IsSecondaryColumn: true, HasSubHeaders: true,
		SubHeaders: []SubHeader{{
			Label: "Doctors",
			Fields: []FieldSchema{
				{FieldLabel: "Male", FieldType: FieldNumber},
				{FieldLabel: "Female", FieldType: FieldNumber},
				{FieldLabel: "Total", FieldType: FieldAggregate, AggregateFields: []string{"male", "female"}},
			},
		}},
	}}
	Normalize(fields)
	data := map[string]any{
		"field_staff_doctors_male":   "5",
		"field_staff_doctors_female": "6",
	}
	EvaluateAggregates(fields, data)
	if data["field_staff_doctors_total"] != "11" {
		t.Errorf("nested total = %v, want 11", data["field_staff_doctors_total"])
	}
}

func TestEvaluateAggregates_DecimalFormatting(t *testing.T) {
	data := map[string]any{"male": "1.25", "female": "2.25"}
	EvaluateAggregates(aggFixture(), data)
	if data["total"] != "3.5" {
		t.Errorf("total = %v, want 3.5", data["total"])
	}
}

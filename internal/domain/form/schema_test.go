package form

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

// twoLevelFixture: a secondary column "Specialists" with sub-header
// "Medical" containing a nested group "Surgeons" with sub-headers.
func twoLevelFixture() []FieldSchema {
	return []FieldSchema{
		{FieldLabel: "Hospital", FieldType: FieldText, IsPrimaryColumn: true},
		{
			FieldLabel: "Specialists", FieldType: FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []SubHeader{{
				Label: "Medical",
				Fields: []FieldSchema{
					{FieldLabel: "Total", FieldType: FieldNumber},
					{
						FieldLabel: "Surgeons", FieldType: FieldText, HasSubHeaders: true,
						SubHeaders: []SubHeader{{
							Label: "Senior",
							Fields: []FieldSchema{
								{FieldLabel: "Count", FieldType: FieldNumber},
							},
						}},
					},
				},
			}},
		},
	}
}

func TestLeaves_PathKeys(t *testing.T) {
	fields := twoLevelFixture()
	Normalize(fields)
	leaves := Leaves(fields)

	want := []string{
		"hospital",
		"field_specialists_medical_total",
		"field_specialists_medical_surgeons_senior_count",
	}
	if len(leaves) != len(want) {
		t.Fatalf("got %d leaves, want %d", len(leaves), len(want))
	}
	for i, key := range want {
		if leaves[i].Key != key {
			t.Errorf("leaf %d key = %q, want %q", i, leaves[i].Key, key)
		}
	}
	if leaves[2].Category != "Medical" || leaves[2].SubCategory != "Senior" {
		t.Errorf("nested leaf grouping = (%q, %q), want (Medical, Senior)",
			leaves[2].Category, leaves[2].SubCategory)
	}
}

func TestNormalize_RegeneratesNamesAndOrder(t *testing.T) {
	fields := []FieldSchema{
		{FieldLabel: "Ward Name", FieldName: "client_supplied_junk", FieldOrder: 99},
		{FieldLabel: "Bed Count", FieldType: FieldNumber, FieldOrder: 3},
	}
	Normalize(fields)
	if fields[0].FieldName != "ward_name" || fields[1].FieldName != "bed_count" {
		t.Errorf("names = %q, %q", fields[0].FieldName, fields[1].FieldName)
	}
	if fields[0].FieldOrder != 0 || fields[1].FieldOrder != 1 {
		t.Errorf("orders = %d, %d", fields[0].FieldOrder, fields[1].FieldOrder)
	}
}

func TestValidateSchema_DuplicateNames(t *testing.T) {
	fields := []FieldSchema{
		{FieldLabel: "Ward Name", FieldType: FieldText},
		{FieldLabel: "ward name", FieldType: FieldText},
	}
	Normalize(fields)
	err := ValidateSchema(fields, nil)
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	if !strings.Contains(err.Error(), "ward_name") {
		t.Errorf("error should name the duplicate, got %v", err)
	}
}

func TestValidateSchema_SelectRequiresBank(t *testing.T) {
	fields := []FieldSchema{
		{FieldLabel: "District", FieldType: FieldSelect},
	}
	Normalize(fields)
	if ValidateSchema(fields, map[string]bool{}) == nil {
		t.Error("select without reference_data_name should fail")
	}

	fields[0].ReferenceDataName = strPtr("districts")
	if ValidateSchema(fields, map[string]bool{}) == nil {
		t.Error("unknown bank should fail")
	}
	if err := ValidateSchema(fields, map[string]bool{"districts": true}); err != nil {
		t.Errorf("known bank should pass, got %v", err)
	}
}

func TestValidateSchema_AggregateSources(t *testing.T) {
	fields := []FieldSchema{
		{FieldLabel: "Male", FieldType: FieldNumber},
		{FieldLabel: "Female", FieldType: FieldNumber},
		{FieldLabel: "Notes", FieldType: FieldText},
		{FieldLabel: "Total", FieldType: FieldAggregate, AggregateFields: []string{"male", "female"}},
	}
	Normalize(fields)
	if err := ValidateSchema(fields, nil); err != nil {
		t.Errorf("valid aggregate should pass, got %v", err)
	}

	fields[3].AggregateFields = []string{"notes"}
	if ValidateSchema(fields, nil) == nil {
		t.Error("aggregate over a text sibling should fail")
	}

	fields[3].AggregateFields = nil
	if ValidateSchema(fields, nil) == nil {
		t.Error("aggregate with no sources should fail")
	}
}

func TestValidateSchema_DepthLimit(t *testing.T) {
	fields := twoLevelFixture()
	// push a third level under the nested sub-header
	deep := &fields[1].SubHeaders[0].Fields[1].SubHeaders[0].Fields[0]
	deep.HasSubHeaders = true
	deep.SubHeaders = []SubHeader{{
		Label:  "Too Deep",
		Fields: []FieldSchema{{FieldLabel: "X", FieldType: FieldText}},
	}}
	Normalize(fields)
	err := ValidateSchema(fields, nil)
	if err == nil || !strings.Contains(err.Error(), "two levels") {
		t.Errorf("expected depth error, got %v", err)
	}
}

func TestValidateSchema_SubHeadersNeedSecondaryColumn(t *testing.T) {
	fields := []FieldSchema{{
		FieldLabel: "Doctors", FieldType: FieldText, HasSubHeaders: true,
		SubHeaders: []SubHeader{{
			Label:  "Male",
			Fields: []FieldSchema{{FieldLabel: "Count", FieldType: FieldNumber}},
		}},
	}}
	Normalize(fields)
	if ValidateSchema(fields, nil) == nil {
		t.Error("top-level sub-headers without is_secondary_column should fail")
	}
}

func TestValidateSchema_SinglePrimary(t *testing.T) {
	fields := []FieldSchema{
		{FieldLabel: "A", FieldType: FieldText, IsPrimaryColumn: true},
		{FieldLabel: "B", FieldType: FieldText, IsPrimaryColumn: true},
	}
	Normalize(fields)
	if ValidateSchema(fields, nil) == nil {
		t.Error("two primary columns should fail")
	}
}

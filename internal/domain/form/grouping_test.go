package form

import (
	"reflect"
	"testing"
)

// reportFixture mirrors a staffing report: a primary column, one
// secondary-column field with two plain sub-headers, and a second
// secondary-column field whose sub-headers nest one more level.
func reportFixture() []FieldSchema {
	fields := []FieldSchema{
		{FieldLabel: "Facility", FieldType: FieldText, IsPrimaryColumn: true},
		{
			FieldLabel: "Doctors", FieldType: FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []SubHeader{
				{Label: "Doctors", Fields: []FieldSchema{
					{FieldLabel: "Male", FieldType: FieldNumber},
					{FieldLabel: "Female", FieldType: FieldNumber},
				}},
			},
		},
		{
			FieldLabel: "Specialists", FieldType: FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []SubHeader{
				{Label: "Specialists", Fields: []FieldSchema{
					{
						FieldLabel: "Medical", FieldType: FieldText, HasSubHeaders: true,
						SubHeaders: []SubHeader{{Label: "Medical", Fields: []FieldSchema{
							{FieldLabel: "Total", FieldType: FieldNumber},
						}}},
					},
					{
						FieldLabel: "Dental", FieldType: FieldText, HasSubHeaders: true,
						SubHeaders: []SubHeader{{Label: "Dental", Fields: []FieldSchema{
							{FieldLabel: "Total", FieldType: FieldNumber},
						}}},
					},
				}},
			},
		},
	}
	Normalize(fields)
	return fields
}

func TestDeriveTableStructure_GroupedHeader(t *testing.T) {
	st := DeriveTableStructure(reportFixture())

	if st.Primary == nil || st.Primary.Label != "Facility" {
		t.Fatalf("primary = %+v, want Facility", st.Primary)
	}
	if len(st.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(st.Categories))
	}

	var spans []int
	for _, c := range st.Categories {
		spans = append(spans, c.ColSpan())
	}
	if !reflect.DeepEqual(spans, []int{2, 2}) {
		t.Errorf("colSpans = %v, want [2 2]", spans)
	}

	sub := st.SubRowLabels()
	if !reflect.DeepEqual(sub, []string{"", "", "Medical", "Dental"}) {
		t.Errorf("sub-row labels = %v", sub)
	}

	leaves := st.LeafColumns()
	if len(leaves) != 5 { // primary + 4 category leaves
		t.Fatalf("got %d leaf columns, want 5", len(leaves))
	}
	wantKeys := []string{
		"facility",
		"field_doctors_doctors_male",
		"field_doctors_doctors_female",
		"field_specialists_specialists_medical_medical_total",
		"field_specialists_specialists_dental_dental_total",
	}
	for i, k := range wantKeys {
		if leaves[i].Key != k {
			t.Errorf("leaf %d key = %q, want %q", i, leaves[i].Key, k)
		}
	}
}

func TestDeriveTableStructure_MergesCategoriesByLabel(t *testing.T) {
	fields := []FieldSchema{
		{
			FieldLabel: "Morning Shift", FieldType: FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []SubHeader{{Label: "Staff", Fields: []FieldSchema{
				{FieldLabel: "Nurses", FieldType: FieldNumber},
			}}},
		},
		{
			FieldLabel: "Night Shift", FieldType: FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []SubHeader{{Label: "Staff", Fields: []FieldSchema{
				{FieldLabel: "Guards", FieldType: FieldNumber},
			}}},
		},
	}
	Normalize(fields)
	st := DeriveTableStructure(fields)
	if len(st.Categories) != 1 {
		t.Fatalf("got %d categories, want merged 1", len(st.Categories))
	}
	if st.Categories[0].ColSpan() != 2 {
		t.Errorf("merged colSpan = %d, want 2", st.Categories[0].ColSpan())
	}
}

func TestProjectRow(t *testing.T) {
	st := DeriveTableStructure(reportFixture())
	row := st.ProjectRow(map[string]any{
		"facility":                   "District Hospital",
		"field_doctors_doctors_male": float64(12),
		"field_specialists_specialists_medical_medical_total": "4",
	})
	want := []string{"District Hospital", "12", "", "4", ""}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}
}

func TestCellString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(3.5), "3.5"},
		{float64(7), "7"},
		{0, "0"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := CellString(tc.in); got != tc.want {
			t.Errorf("CellString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

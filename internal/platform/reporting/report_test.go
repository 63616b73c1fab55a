package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dcportal/dcportal/internal/domain/form"
	"github.com/dcportal/dcportal/internal/domain/schedule"
	"github.com/dcportal/dcportal/internal/domain/submission"
)

// staffingFields mirrors a facility staffing report: a primary column and
// one secondary-column field with two sub-headers.
func staffingFields() []form.FieldSchema {
	fields := []form.FieldSchema{
		{FieldLabel: "Facility", FieldType: form.FieldText, IsPrimaryColumn: true},
		{
			FieldLabel: "Doctors", FieldType: form.FieldText,
			IsSecondaryColumn: true, HasSubHeaders: true,
			SubHeaders: []form.SubHeader{
				{Label: "Doctors", Fields: []form.FieldSchema{
					{FieldLabel: "Male", FieldType: form.FieldNumber},
					{FieldLabel: "Female", FieldType: form.FieldNumber},
				}},
			},
		},
	}
	form.Normalize(fields)
	return fields
}

type mockForms struct {
	form   *form.Form
	fields []form.FieldSchema
}

func (m *mockForms) GetForm(_ context.Context, _ uuid.UUID) (*form.Form, error) {
	return m.form, nil
}
func (m *mockForms) GetFields(_ context.Context, _ uuid.UUID) ([]form.FieldSchema, error) {
	return m.fields, nil
}

type mockSchedules struct{ sc *schedule.Schedule }

func (m *mockSchedules) Get(_ context.Context, _ uuid.UUID) (*schedule.Schedule, error) {
	return m.sc, nil
}

type mockRows struct{ subs []*submission.Submission }

func (m *mockRows) Rows(_ context.Context, _, _ uuid.UUID) ([]*submission.Submission, error) {
	return m.subs, nil
}

func testService(subs []*submission.Submission) *Service {
	return NewService(
		&mockForms{
			form:   &form.Form{ID: uuid.New(), Name: "Facility Staffing"},
			fields: staffingFields(),
		},
		&mockSchedules{sc: &schedule.Schedule{
			ID:        uuid.New(),
			Name:      "Q3 2026",
			StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
			Status:    schedule.StatusPublished,
		}},
		&mockRows{subs: subs},
	)
}

func sub(data map[string]any) *submission.Submission {
	return &submission.Submission{ID: uuid.New(), Data: data}
}

func TestService_Build(t *testing.T) {
	svc := testService([]*submission.Submission{
		sub(map[string]any{"facility": "District Hospital", "field_doctors_doctors_male": "12", "field_doctors_doctors_female": "9"}),
		sub(map[string]any{"facility": "Rural Clinic", "field_doctors_doctors_male": "2"}),
	})

	rep, err := svc.Build(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rep.Rows))
	}
	want := []string{"District Hospital", "12", "9"}
	for i, cell := range want {
		if rep.Rows[0][i] != cell {
			t.Errorf("row 0 col %d = %q, want %q", i, rep.Rows[0][i], cell)
		}
	}
	if rep.Rows[1][2] != "" {
		t.Errorf("missing cell rendered %q, want empty", rep.Rows[1][2])
	}
}

func TestService_Build_DropsBlankPrimaryRows(t *testing.T) {
	svc := testService([]*submission.Submission{
		sub(map[string]any{"facility": "District Hospital"}),
		sub(map[string]any{"field_doctors_doctors_male": "3"}),
	})

	rep, err := svc.Build(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 (blank-primary row dropped)", len(rep.Rows))
	}
}

func TestHeaderRows(t *testing.T) {
	st := form.DeriveTableStructure(staffingFields())
	top, mid, leaf := headerRows(st)

	if len(top) != 3 || len(mid) != 3 || len(leaf) != 3 {
		t.Fatalf("header widths = %d/%d/%d, want 3/3/3", len(top), len(mid), len(leaf))
	}
	if top[0] != "Facility" || top[1] != "Doctors" || top[2] != "Doctors" {
		t.Errorf("top row = %v", top)
	}
	if leaf[1] != "Male" || leaf[2] != "Female" {
		t.Errorf("leaf row = %v", leaf)
	}
}

func TestWriteCSV(t *testing.T) {
	svc := testService([]*submission.Submission{
		sub(map[string]any{"facility": "St. Mary's, Annex", "field_doctors_doctors_male": "5"}),
	})
	rep, err := svc.Build(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 3 header rows + 1 data row", len(records))
	}
	if records[0][0] != "Facility" {
		t.Errorf("header cell = %q", records[0][0])
	}
	if records[3][0] != "St. Mary's, Annex" {
		t.Errorf("comma in value not preserved: %q", records[3][0])
	}
}

func TestWritePDF(t *testing.T) {
	svc := testService([]*submission.Submission{
		sub(map[string]any{"facility": "District Hospital", "field_doctors_doctors_male": "12"}),
	})
	rep, err := svc.Build(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, rep); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", buf.Bytes()[:8])
	}
}

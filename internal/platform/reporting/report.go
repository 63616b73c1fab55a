// Package reporting renders collected data as tables. One Report is built
// per schedule and form, and every output format (JSON, CSV, PDF) is a
// projection of the same Report so columns can never disagree between
// formats.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dcportal/dcportal/internal/domain/form"
	"github.com/dcportal/dcportal/internal/domain/schedule"
	"github.com/dcportal/dcportal/internal/domain/submission"
)

// FormSource supplies form metadata and the derived table layout.
// form.Service satisfies it.
type FormSource interface {
	GetForm(ctx context.Context, id uuid.UUID) (*form.Form, error)
	GetFields(ctx context.Context, formID uuid.UUID) ([]form.FieldSchema, error)
}

// ScheduleSource supplies schedule metadata. schedule.Service satisfies it.
type ScheduleSource interface {
	Get(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error)
}

// RowSource supplies the stored submissions. submission.Service satisfies it.
type RowSource interface {
	Rows(ctx context.Context, scheduleID, formID uuid.UUID) ([]*submission.Submission, error)
}

// Report is a fully rendered table for one form within one schedule.
type Report struct {
	Schedule    *schedule.Schedule  `json:"schedule"`
	Form        *form.Form          `json:"form"`
	Structure   form.TableStructure `json:"structure"`
	Rows        [][]string          `json:"rows"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type Service struct {
	forms     FormSource
	schedules ScheduleSource
	rows      RowSource
}

func NewService(forms FormSource, schedules ScheduleSource, rows RowSource) *Service {
	return &Service{forms: forms, schedules: schedules, rows: rows}
}

// Build assembles the report. Rows whose primary column is empty are
// dropped: they are blank lines a user submitted by accident and render as
// noise in every format.
func (s *Service) Build(ctx context.Context, scheduleID, formID uuid.UUID) (*Report, error) {
	sc, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	f, err := s.forms.GetForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	fields, err := s.forms.GetFields(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load form schema: %w", err)
	}
	st := form.DeriveTableStructure(fields)

	subs, err := s.rows.Rows(ctx, scheduleID, formID)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		row := st.ProjectRow(sub.Data)
		if st.Primary != nil && len(row) > 0 && row[0] == "" {
			continue
		}
		rows = append(rows, row)
	}

	return &Report{
		Schedule:    sc,
		Form:        f,
		Structure:   st,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// headerRows builds the three header lines shared by CSV and PDF: category
// labels spanning their columns, sub-category labels, then leaf labels.
func headerRows(st form.TableStructure) (top, mid, leaf []string) {
	if st.Primary != nil {
		top = append(top, st.Primary.Label)
		mid = append(mid, "")
		leaf = append(leaf, st.Primary.Label)
	}
	for _, c := range st.Standalone {
		top = append(top, c.Label)
		mid = append(mid, "")
		leaf = append(leaf, c.Label)
	}
	subLabels := st.SubRowLabels()
	i := 0
	for _, cat := range st.Categories {
		for n := 0; n < cat.ColSpan(); n++ {
			top = append(top, cat.Label)
			mid = append(mid, subLabels[i])
			i++
		}
		for _, col := range cat.Columns {
			leaf = append(leaf, col.Label)
		}
		for _, sc := range cat.SubCategories {
			for _, col := range sc.Columns {
				leaf = append(leaf, col.Label)
			}
		}
	}
	return top, mid, leaf
}

package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dcportal/dcportal/internal/domain/form"
)

var (
	// ErrNotCollecting rejects submissions outside the collection window.
	ErrNotCollecting = fmt.Errorf("schedule is not collecting")
	// ErrNotAttached rejects submissions for forms the schedule doesn't carry.
	ErrNotAttached = fmt.Errorf("form is not attached to this schedule")
	// ErrFormCompleted rejects submissions after the user marked the form done.
	ErrFormCompleted = fmt.Errorf("form already marked complete; submissions are closed")
	// ErrPrimaryValueUsed rejects a second row for the same primary value.
	ErrPrimaryValueUsed = fmt.Errorf("a submission for this primary value already exists")
)

// FormSource exposes the form schemas the service validates against.
// form.Service satisfies it.
type FormSource interface {
	GetFields(ctx context.Context, formID uuid.UUID) ([]form.FieldSchema, error)
}

// ScheduleSource exposes schedule state. schedule.Service satisfies it.
type ScheduleSource interface {
	Status(ctx context.Context, scheduleID uuid.UUID) (string, error)
	FormAttached(ctx context.Context, scheduleID, formID uuid.UUID) (bool, error)
}

// CompletionSource answers whether a user has closed out a form.
// schedule.Service satisfies it.
type CompletionSource interface {
	IsComplete(ctx context.Context, scheduleID, formID, userID uuid.UUID) (bool, error)
}

const statusCollection = "collection"

type Service struct {
	repo        Repository
	forms       FormSource
	schedules   ScheduleSource
	completions CompletionSource
}

func NewService(repo Repository, forms FormSource, schedules ScheduleSource, completions CompletionSource) *Service {
	return &Service{repo: repo, forms: forms, schedules: schedules, completions: completions}
}

// Submit validates and stores one data row. The row is checked against the
// current form schema: unknown keys are dropped, required leaves must hold a
// non-empty value, and every aggregate is recomputed server-side so a client
// can never store a stale or forged total.
func (s *Service) Submit(ctx context.Context, scheduleID, formID, userID uuid.UUID, data map[string]any) (*Submission, error) {
	status, err := s.schedules.Status(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if status != statusCollection {
		return nil, ErrNotCollecting
	}
	attached, err := s.schedules.FormAttached(ctx, scheduleID, formID)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, ErrNotAttached
	}
	done, err := s.completions.IsComplete(ctx, scheduleID, formID, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrFormCompleted
	}

	fields, err := s.forms.GetFields(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load form schema: %w", err)
	}
	leaves := form.Leaves(fields)

	if data == nil {
		data = map[string]any{}
	}
	known := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		known[l.Key] = true
	}
	for k := range data {
		if !known[k] {
			delete(data, k)
		}
	}

	if missing := missingRequired(leaves, data); len(missing) > 0 {
		return nil, fmt.Errorf("required fields missing: %s", strings.Join(missing, ", "))
	}

	if err := s.checkPrimaryUnused(ctx, scheduleID, formID, leaves, data); err != nil {
		return nil, err
	}

	form.EvaluateAggregates(fields, data)

	sub := &Submission{
		ScheduleID:  scheduleID,
		FormID:      formID,
		SubmittedBy: userID,
		Data:        data,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// checkPrimaryUnused enforces one row per primary value within a collection
// period. The entry UI already hides used options, but this is the line a
// stale or hostile client cannot cross.
func (s *Service) checkPrimaryUnused(ctx context.Context, scheduleID, formID uuid.UUID, leaves []form.Leaf, data map[string]any) error {
	for _, l := range leaves {
		if !l.Field.IsPrimaryColumn || l.Category != "" {
			continue
		}
		value := form.CellString(data[l.Key])
		if value == "" {
			return nil
		}
		used, err := s.repo.DistinctValues(ctx, scheduleID, formID, l.Key)
		if err != nil {
			return err
		}
		for _, u := range used {
			if u == value {
				return ErrPrimaryValueUsed
			}
		}
		return nil
	}
	return nil
}

// missingRequired checks required leaves only; grouping nodes carry no value
// and aggregates are computed, so neither participates.
func missingRequired(leaves []form.Leaf, data map[string]any) []string {
	var missing []string
	for _, l := range leaves {
		if !l.Field.IsRequired || l.Field.FieldType == form.FieldAggregate {
			continue
		}
		if form.CellString(data[l.Key]) == "" {
			missing = append(missing, l.Field.FieldLabel)
		}
	}
	return missing
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, scheduleID, formID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	return s.repo.ListByScheduleForm(ctx, scheduleID, formID, limit, offset)
}

func (s *Service) ListMine(ctx context.Context, scheduleID, formID, userID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	return s.repo.ListByUser(ctx, scheduleID, formID, userID, limit, offset)
}

// CountForUser returns how many rows the user submitted for the pair.
func (s *Service) CountForUser(ctx context.Context, scheduleID, formID, userID uuid.UUID) (int, error) {
	_, count, err := s.repo.ListByUser(ctx, scheduleID, formID, userID, 1, 0)
	return count, err
}

// Rows returns every stored row for report rendering.
func (s *Service) Rows(ctx context.Context, scheduleID, formID uuid.UUID) ([]*Submission, error) {
	return s.repo.AllRows(ctx, scheduleID, formID)
}

// UsedPrimaryValues returns the distinct primary-column values already
// submitted this period, so entry clients can hide options that are done.
func (s *Service) UsedPrimaryValues(ctx context.Context, scheduleID, formID uuid.UUID) ([]string, error) {
	fields, err := s.forms.GetFields(ctx, formID)
	if err != nil {
		return nil, err
	}
	for _, l := range form.Leaves(fields) {
		if l.Field.IsPrimaryColumn && l.Category == "" {
			return s.repo.DistinctValues(ctx, scheduleID, formID, l.Key)
		}
	}
	return nil, fmt.Errorf("form has no primary column")
}

package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Schedule, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Schedule, int, error)
	// Attached forms
	AddForm(ctx context.Context, sf *ScheduleForm) error
	RemoveForm(ctx context.Context, scheduleID, formID uuid.UUID) error
	ListForms(ctx context.Context, scheduleID uuid.UUID) ([]*ScheduleForm, error)
	GetScheduleForm(ctx context.Context, scheduleID, formID uuid.UUID) (*ScheduleForm, error)
	// Completions
	CreateCompletion(ctx context.Context, c *Completion) error
	ListCompletions(ctx context.Context, scheduleFormID uuid.UUID) ([]*Completion, error)
	HasCompletion(ctx context.Context, scheduleFormID, userID uuid.UUID) (bool, error)
	CountCompletions(ctx context.Context, scheduleFormID uuid.UUID) (int, error)
}

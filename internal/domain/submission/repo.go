package submission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	ListByScheduleForm(ctx context.Context, scheduleID, formID uuid.UUID, limit, offset int) ([]*Submission, int, error)
	ListByUser(ctx context.Context, scheduleID, formID, userID uuid.UUID, limit, offset int) ([]*Submission, int, error)
	// AllRows returns every submission for a schedule and form in submission
	// order, for report rendering.
	AllRows(ctx context.Context, scheduleID, formID uuid.UUID) ([]*Submission, error)
	// DistinctValues returns the distinct non-empty values stored under one
	// data key across a schedule and form.
	DistinctValues(ctx context.Context, scheduleID, formID uuid.UUID, key string) ([]string, error)
}

package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTransition rejects any status change outside the
	// open -> collection -> published -> open cycle.
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	// ErrScheduleLocked rejects form membership changes once collection
	// has started.
	ErrScheduleLocked = fmt.Errorf("schedule is locked; forms can only be changed while open")
	// ErrAlreadyComplete rejects a duplicate completion.
	ErrAlreadyComplete = fmt.Errorf("form already marked complete for this user")
)

// Transitions are explicit admin actions. There is no clock involved:
// start_date and end_date are advisory display values only.
var validTransitions = map[string]string{
	StatusOpen:       StatusCollection,
	StatusCollection: StatusPublished,
	StatusPublished:  StatusOpen,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, sc *Schedule) error {
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if sc.EndDate.Before(sc.StartDate) {
		return fmt.Errorf("end_date must not precede start_date")
	}
	sc.Status = StatusOpen
	return s.repo.Create(ctx, sc)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, sc *Schedule) error {
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if sc.EndDate.Before(sc.StartDate) {
		return fmt.Errorf("end_date must not precede start_date")
	}
	return s.repo.Update(ctx, sc)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Schedule, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Schedule, int, error) {
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// Transition advances a schedule to the requested status, enforcing the
// cycle. The updated schedule is returned.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Schedule, error) {
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if validTransitions[sc.Status] != to {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sc.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	sc.Status = to
	return sc, nil
}

// AddForm attaches a form to a schedule. Membership is mutable only while
// the schedule is open.
func (s *Service) AddForm(ctx context.Context, sf *ScheduleForm) error {
	sc, err := s.repo.GetByID(ctx, sf.ScheduleID)
	if err != nil {
		return err
	}
	if sc.Status != StatusOpen {
		return ErrScheduleLocked
	}
	return s.repo.AddForm(ctx, sf)
}

func (s *Service) RemoveForm(ctx context.Context, scheduleID, formID uuid.UUID) error {
	sc, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sc.Status != StatusOpen {
		return ErrScheduleLocked
	}
	return s.repo.RemoveForm(ctx, scheduleID, formID)
}

func (s *Service) ListForms(ctx context.Context, scheduleID uuid.UUID) ([]*ScheduleForm, error) {
	return s.repo.ListForms(ctx, scheduleID)
}

// MarkComplete records that a user finished a form within a schedule.
// Completing is only meaningful during collection, and completing with zero
// submitted rows is allowed: it means "nothing to report this period".
func (s *Service) MarkComplete(ctx context.Context, scheduleID, formID, userID uuid.UUID) (*Completion, error) {
	sc, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sc.Status != StatusCollection {
		return nil, fmt.Errorf("schedule is not collecting")
	}
	sf, err := s.repo.GetScheduleForm(ctx, scheduleID, formID)
	if err != nil {
		return nil, fmt.Errorf("form is not attached to this schedule")
	}
	done, err := s.repo.HasCompletion(ctx, sf.ID, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyComplete
	}
	c := &Completion{ScheduleFormID: sf.ID, UserID: userID}
	if err := s.repo.CreateCompletion(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Completions(ctx context.Context, scheduleID, formID uuid.UUID) ([]*Completion, int, error) {
	sf, err := s.repo.GetScheduleForm(ctx, scheduleID, formID)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.repo.ListCompletions(ctx, sf.ID)
	if err != nil {
		return nil, 0, err
	}
	return list, len(list), nil
}

// Status returns the current status of a schedule. Satisfies the submission
// package's ScheduleSource.
func (s *Service) Status(ctx context.Context, scheduleID uuid.UUID) (string, error) {
	sc, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return "", err
	}
	return sc.Status, nil
}

// FormAttached reports whether a form is part of a schedule.
func (s *Service) FormAttached(ctx context.Context, scheduleID, formID uuid.UUID) (bool, error) {
	if _, err := s.repo.GetScheduleForm(ctx, scheduleID, formID); err != nil {
		return false, nil
	}
	return true, nil
}

// IsComplete reports whether a user has marked a form complete within a
// schedule. Satisfies the submission package's CompletionSource.
func (s *Service) IsComplete(ctx context.Context, scheduleID, formID, userID uuid.UUID) (bool, error) {
	sf, err := s.repo.GetScheduleForm(ctx, scheduleID, formID)
	if err != nil {
		return false, nil
	}
	return s.repo.HasCompletion(ctx, sf.ID, userID)
}

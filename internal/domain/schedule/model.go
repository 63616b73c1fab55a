package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule statuses. A schedule cycles open -> collection -> published and
// back to open for the next period; no other transition is legal and no
// transition ever happens on a timer.
const (
	StatusOpen       = "open"
	StatusCollection = "collection"
	StatusPublished  = "published"
)

// Schedule is a time-boxed collection period.
type Schedule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleForm attaches a form to a schedule.
type ScheduleForm struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ScheduleID uuid.UUID  `db:"schedule_id" json:"schedule_id"`
	FormID     uuid.UUID  `db:"form_id" json:"form_id"`
	IsRequired bool       `db:"is_required" json:"is_required"`
	DueDate    *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Completion records that a user finished entering data for one attached
// form. Once present, that user can no longer submit rows for the form in
// this schedule.
type Completion struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ScheduleFormID uuid.UUID `db:"schedule_form_id" json:"schedule_form_id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	CompletedAt    time.Time `db:"completed_at" json:"completed_at"`
}

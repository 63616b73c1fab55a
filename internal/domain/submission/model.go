package submission

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one immutable row of collected data. The store is
// append-only: rows are never updated or deleted through the API, and a
// user corrects mistakes by submitting a replacement row.
type Submission struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	ScheduleID  uuid.UUID      `db:"schedule_id" json:"schedule_id"`
	FormID      uuid.UUID      `db:"form_id" json:"form_id"`
	SubmittedBy uuid.UUID      `db:"submitted_by" json:"submitted_by"`
	Data        map[string]any `db:"data" json:"data"`
	SubmittedAt time.Time      `db:"submitted_at" json:"submitted_at"`
}

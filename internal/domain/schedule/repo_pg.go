package schedule

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcportal/dcportal/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const schedCols = `id, name, start_date, end_date, status, created_at, updated_at`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO schedule (id, name, start_date, end_date, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		s.ID, s.Name, s.StartDate, s.EndDate, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return scanSchedule(r.conn(ctx).QueryRow(ctx, `SELECT `+schedCols+` FROM schedule WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Schedule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule SET name=$2, start_date=$3, end_date=$4, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.StartDate, s.EndDate)
	return err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE schedule SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Schedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM schedule`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+schedCols+` FROM schedule ORDER BY start_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectSchedules(rows, total)
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Schedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM schedule WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+schedCols+` FROM schedule WHERE status = $1
		ORDER BY start_date DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectSchedules(rows, total)
}

func collectSchedules(rows pgx.Rows, total int) ([]*Schedule, int, error) {
	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

const sfCols = `id, schedule_id, form_id, is_required, due_date, created_at`

func scanScheduleForm(row pgx.Row) (*ScheduleForm, error) {
	var sf ScheduleForm
	err := row.Scan(&sf.ID, &sf.ScheduleID, &sf.FormID, &sf.IsRequired, &sf.DueDate, &sf.CreatedAt)
	return &sf, err
}

func (r *repoPG) AddForm(ctx context.Context, sf *ScheduleForm) error {
	sf.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO schedule_form (id, schedule_id, form_id, is_required, due_date)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		sf.ID, sf.ScheduleID, sf.FormID, sf.IsRequired, sf.DueDate).Scan(&sf.CreatedAt)
}

func (r *repoPG) RemoveForm(ctx context.Context, scheduleID, formID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM schedule_form WHERE schedule_id = $1 AND form_id = $2`, scheduleID, formID)
	return err
}

func (r *repoPG) ListForms(ctx context.Context, scheduleID uuid.UUID) ([]*ScheduleForm, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sfCols+` FROM schedule_form WHERE schedule_id = $1 ORDER BY created_at`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ScheduleForm
	for rows.Next() {
		sf, err := scanScheduleForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, rows.Err()
}

func (r *repoPG) GetScheduleForm(ctx context.Context, scheduleID, formID uuid.UUID) (*ScheduleForm, error) {
	return scanScheduleForm(r.conn(ctx).QueryRow(ctx, `
		SELECT `+sfCols+` FROM schedule_form WHERE schedule_id = $1 AND form_id = $2`,
		scheduleID, formID))
}

func (r *repoPG) CreateCompletion(ctx context.Context, c *Completion) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO schedule_form_completion (id, schedule_form_id, user_id)
		VALUES ($1,$2,$3)
		RETURNING completed_at`,
		c.ID, c.ScheduleFormID, c.UserID).Scan(&c.CompletedAt)
}

func (r *repoPG) ListCompletions(ctx context.Context, scheduleFormID uuid.UUID) ([]*Completion, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, schedule_form_id, user_id, completed_at
		FROM schedule_form_completion WHERE schedule_form_id = $1 ORDER BY completed_at`, scheduleFormID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.ID, &c.ScheduleFormID, &c.UserID, &c.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *repoPG) HasCompletion(ctx context.Context, scheduleFormID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM schedule_form_completion
			WHERE schedule_form_id = $1 AND user_id = $2)`, scheduleFormID, userID).Scan(&exists)
	return exists, err
}

func (r *repoPG) CountCompletions(ctx context.Context, scheduleFormID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM schedule_form_completion WHERE schedule_form_id = $1`,
		scheduleFormID).Scan(&n)
	return n, err
}

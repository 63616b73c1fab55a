package submission

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

const cols = `id, schedule_id, form_id, submitted_by, data, submitted_at`

func scan(row pgx.Row) (*Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.ScheduleID, &s.FormID, &s.SubmittedBy, &s.Data, &s.SubmittedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Submission) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO form_submission (id, schedule_id, form_id, submitted_by, data)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING submitted_at`,
		s.ID, s.ScheduleID, s.FormID, s.SubmittedBy, s.Data).Scan(&s.SubmittedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM form_submission WHERE id = $1`, id))
}

func (r *repoPG) ListByScheduleForm(ctx context.Context, scheduleID, formID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM form_submission WHERE schedule_id = $1 AND form_id = $2`,
		scheduleID, formID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM form_submission
		WHERE schedule_id = $1 AND form_id = $2
		ORDER BY submitted_at LIMIT $3 OFFSET $4`, scheduleID, formID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListByUser(ctx context.Context, scheduleID, formID, userID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM form_submission
		WHERE schedule_id = $1 AND form_id = $2 AND submitted_by = $3`,
		scheduleID, formID, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM form_submission
		WHERE schedule_id = $1 AND form_id = $2 AND submitted_by = $3
		ORDER BY submitted_at LIMIT $4 OFFSET $5`, scheduleID, formID, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Submission, int, error) {
	var out []*Submission
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) AllRows(ctx context.Context, scheduleID, formID uuid.UUID) ([]*Submission, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM form_submission
		WHERE schedule_id = $1 AND form_id = $2
		ORDER BY submitted_at`, scheduleID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Submission
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) DistinctValues(ctx context.Context, scheduleID, formID uuid.UUID, key string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT data->>$3 FROM form_submission
		WHERE schedule_id = $1 AND form_id = $2
			AND data->>$3 IS NOT NULL AND data->>$3 <> ''
		ORDER BY 1`, scheduleID, formID, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

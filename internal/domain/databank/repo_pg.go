package databank

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

const cols = `id, name, description, department_id, entries, created_at, updated_at`

func scan(row pgx.Row) (*DataBank, error) {
	var b DataBank
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.DepartmentID, &b.Entries, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *DataBank) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO data_bank (id, name, description, department_id, entries)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		b.ID, b.Name, b.Description, b.DepartmentID, b.Entries).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DataBank, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM data_bank WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*DataBank, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM data_bank WHERE name = $1`, name))
}

func (r *repoPG) Update(ctx context.Context, b *DataBank) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE data_bank SET name=$2, description=$3, department_id=$4, entries=$5, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Name, b.Description, b.DepartmentID, b.Entries)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM data_bank WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*DataBank, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM data_bank`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM data_bank ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*DataBank, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM data_bank WHERE department_id = $1`, departmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM data_bank WHERE department_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`, departmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*DataBank, int, error) {
	var out []*DataBank
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repoPG) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM data_bank WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

package form

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

const formCols = `id, name, description, department_id, created_at, updated_at`

func scanForm(row pgx.Row) (*Form, error) {
	var f Form
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.DepartmentID, &f.CreatedAt, &f.UpdatedAt)
	return &f, err
}

func (r *repoPG) Create(ctx context.Context, f *Form) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO form (id, name, description, department_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		f.ID, f.Name, f.Description, f.DepartmentID).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Form, error) {
	return scanForm(r.conn(ctx).QueryRow(ctx, `SELECT `+formCols+` FROM form WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, f *Form) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE form SET name=$2, description=$3, department_id=$4, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.Name, f.Description, f.DepartmentID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM form WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Form, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM form`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+formCols+` FROM form ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectForms(rows, total)
}

func (r *repoPG) ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*Form, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM form WHERE department_id = $1`, departmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+formCols+` FROM form WHERE department_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`, departmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectForms(rows, total)
}

func collectForms(rows pgx.Rows, total int) ([]*Form, int, error) {
	var out []*Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

const fieldCols = `field_name, field_label, field_type, is_required, is_primary_column,
	is_secondary_column, reference_data_name, placeholder_text,
	COALESCE(aggregate_fields, '[]'::jsonb), field_order, has_sub_headers,
	COALESCE(sub_headers, '[]'::jsonb)`

func (r *repoPG) GetFields(ctx context.Context, formID uuid.UUID) ([]FieldSchema, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fieldCols+` FROM form_field WHERE form_id = $1 ORDER BY field_order`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FieldSchema
	for rows.Next() {
		var f FieldSchema
		if err := rows.Scan(&f.FieldName, &f.FieldLabel, &f.FieldType, &f.IsRequired,
			&f.IsPrimaryColumn, &f.IsSecondaryColumn, &f.ReferenceDataName, &f.PlaceholderText,
			&f.AggregateFields, &f.FieldOrder, &f.HasSubHeaders, &f.SubHeaders); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceFields swaps the full field schema of a form in one transaction so
// readers never observe a half-saved schema.
func (r *repoPG) ReplaceFields(ctx context.Context, formID uuid.UUID, fields []FieldSchema) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		if _, err := q.Exec(ctx, `DELETE FROM form_field WHERE form_id = $1`, formID); err != nil {
			return err
		}
		for _, f := range fields {
			if _, err := q.Exec(ctx, `
				INSERT INTO form_field (form_id, field_name, field_label, field_type,
					is_required, is_primary_column, is_secondary_column,
					reference_data_name, placeholder_text, aggregate_fields,
					field_order, has_sub_headers, sub_headers)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
				formID, f.FieldName, f.FieldLabel, f.FieldType,
				f.IsRequired, f.IsPrimaryColumn, f.IsSecondaryColumn,
				f.ReferenceDataName, f.PlaceholderText, f.AggregateFields,
				f.FieldOrder, f.HasSubHeaders, f.SubHeaders); err != nil {
				return err
			}
		}
		if _, err := q.Exec(ctx, `UPDATE form SET updated_at = NOW() WHERE id = $1`, formID); err != nil {
			return err
		}
		return nil
	})
}

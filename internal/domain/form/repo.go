package form

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*Form, error)
	Update(ctx context.Context, f *Form) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Form, int, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*Form, int, error)
	// Fields
	GetFields(ctx context.Context, formID uuid.UUID) ([]FieldSchema, error)
	ReplaceFields(ctx context.Context, formID uuid.UUID, fields []FieldSchema) error
}

package databank

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *DataBank) error
	GetByID(ctx context.Context, id uuid.UUID) (*DataBank, error)
	GetByName(ctx context.Context, name string) (*DataBank, error)
	Update(ctx context.Context, b *DataBank) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*DataBank, int, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*DataBank, int, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

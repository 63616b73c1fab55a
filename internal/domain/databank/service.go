package databank

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(b *DataBank) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return fmt.Errorf("data bank name is required")
	}
	cleaned := make([]string, 0, len(b.Entries))
	seen := make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if seen[e] {
			return fmt.Errorf("duplicate entry %q", e)
		}
		seen[e] = true
		cleaned = append(cleaned, e)
	}
	b.Entries = cleaned
	return nil
}

func (s *Service) Create(ctx context.Context, b *DataBank) error {
	if err := validate(b); err != nil {
		return err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DataBank, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*DataBank, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, b *DataBank) error {
	if err := validate(b); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*DataBank, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*DataBank, int, error) {
	return s.repo.ListByDepartment(ctx, departmentID, limit, offset)
}

// Exists satisfies the form package's DataBankSource.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, name)
}

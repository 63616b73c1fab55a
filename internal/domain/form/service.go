package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DataBankSource answers whether a named reference data bank exists. The
// databank service satisfies it; tests supply a map-backed fake.
type DataBankSource interface {
	Exists(ctx context.Context, name string) (bool, error)
}

type Service struct {
	repo  Repository
	banks DataBankSource
}

func NewService(repo Repository, banks DataBankSource) *Service {
	return &Service{repo: repo, banks: banks}
}

func (s *Service) CreateForm(ctx context.Context, f *Form) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("form name is required")
	}
	return s.repo.Create(ctx, f)
}

func (s *Service) GetForm(ctx context.Context, id uuid.UUID) (*Form, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateForm(ctx context.Context, f *Form) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("form name is required")
	}
	return s.repo.Update(ctx, f)
}

func (s *Service) DeleteForm(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForms(ctx context.Context, limit, offset int) ([]*Form, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListFormsByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*Form, int, error) {
	return s.repo.ListByDepartment(ctx, departmentID, limit, offset)
}

func (s *Service) GetFields(ctx context.Context, formID uuid.UUID) ([]FieldSchema, error) {
	return s.repo.GetFields(ctx, formID)
}

// SaveFields normalizes, validates and persists a full field schema for a
// form, replacing whatever was there. The normalized schema is returned so
// callers see the server-generated field names.
func (s *Service) SaveFields(ctx context.Context, formID uuid.UUID, fields []FieldSchema) ([]FieldSchema, error) {
	if _, err := s.repo.GetByID(ctx, formID); err != nil {
		return nil, err
	}

	Normalize(fields)

	banks := make(map[string]bool)
	if err := s.resolveBanks(ctx, fields, banks); err != nil {
		return nil, err
	}
	if err := ValidateSchema(fields, banks); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceFields(ctx, formID, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Service) resolveBanks(ctx context.Context, fields []FieldSchema, banks map[string]bool) error {
	for _, f := range fields {
		if f.ReferenceDataName != nil && *f.ReferenceDataName != "" {
			name := *f.ReferenceDataName
			if _, done := banks[name]; !done {
				ok, err := s.banks.Exists(ctx, name)
				if err != nil {
					return fmt.Errorf("look up data bank %q: %w", name, err)
				}
				banks[name] = ok
			}
		}
		for _, sh := range f.SubHeaders {
			if err := s.resolveBanks(ctx, sh.Fields, banks); err != nil {
				return err
			}
		}
	}
	return nil
}

// Structure loads a form's schema and derives its report table layout.
func (s *Service) Structure(ctx context.Context, formID uuid.UUID) (TableStructure, error) {
	fields, err := s.repo.GetFields(ctx, formID)
	if err != nil {
		return TableStructure{}, err
	}
	return DeriveTableStructure(fields), nil
}

package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dcportal/dcportal/internal/platform/auth"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures don't reveal which accounts exist.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role != auth.RoleAdmin && in.DepartmentID == nil {
		return nil, fmt.Errorf("%s users must belong to a department", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Profile{
		Email:        in.Email,
		FullName:     in.FullName,
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role != auth.RoleAdmin && in.DepartmentID == nil {
		return nil, fmt.Errorf("%s users must belong to a department", in.Role)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Email = in.Email
	p.FullName = in.FullName
	p.Role = in.Role
	p.DepartmentID = in.DepartmentID
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		p.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Profile, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByDepartment(ctx context.Context, departmentID uuid.UUID, limit, offset int) ([]*Profile, int, error) {
	return s.repo.ListByDepartment(ctx, departmentID, limit, offset)
}

// Authenticate verifies a credential pair and returns the matching profile.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Profile, error) {
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := s.validate.Struct(creds); err != nil {
		return nil, ErrInvalidCredentials
	}
	p, err := s.repo.GetByEmail(ctx, creds.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile maps to the profile table. PasswordHash never leaves the API.
type Profile struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateUserInput is the payload for provisioning a user.
type CreateUserInput struct {
	Email        string     `json:"email" validate:"required,email"`
	FullName     string     `json:"full_name" validate:"required"`
	Role         string     `json:"role" validate:"required,oneof=admin department_user data_entry_user"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Password     string     `json:"password" validate:"required,min=8"`
}

// UpdateUserInput is the payload for editing a user. A nil Password leaves
// the current credential in place.
type UpdateUserInput struct {
	Email        string     `json:"email" validate:"required,email"`
	FullName     string     `json:"full_name" validate:"required"`
	Role         string     `json:"role" validate:"required,oneof=admin department_user data_entry_user"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Password     *string    `json:"password" validate:"omitempty,min=8"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

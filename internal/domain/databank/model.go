package databank

import (
	"time"

	"github.com/google/uuid"
)

// DataBank is a named, reusable list of option values. Select and radio
// fields reference a bank by name instead of embedding their options, so
// editing the bank updates every form that uses it.
type DataBank struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	Entries      []string   `db:"entries" json:"entries"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

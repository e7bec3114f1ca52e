package core

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the user directory contract. Create must be safe under
// concurrent first-logins for the same subject id: the store enforces
// uniqueness and reports ErrAlreadyExists to the losing caller, which then
// re-reads. Lookups are side-effect-free.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	FindBySubjectID(ctx context.Context, subjectID string) (*User, error)

	Create(ctx context.Context, user *User) error
}

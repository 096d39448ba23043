package candidate

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors used by repository/use cases
var (
	ErrNotFound       = errors.New("candidate not found")
	ErrDuplicateEmail = errors.New("candidate email already exists")
)

// Repository abstracts persistence concerns from the domain layer.
type Repository interface {
	Create(ctx context.Context, c Candidate) error
	Update(ctx context.Context, c Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (Candidate, error)
	GetByEmail(ctx context.Context, email string) (Candidate, error)
	List(ctx context.Context, limit, offset int) ([]Candidate, error)
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a recruiter account. Admins additionally review identity documents.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

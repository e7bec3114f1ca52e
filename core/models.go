package core

import (
	"time"

	"github.com/google/uuid"
)

// User is the local record for an authenticated identity. Exactly one
// record exists per provider subject id; it is created on first login and
// reused on every later login and protected request.
type User struct {
	ID        uuid.UUID
	SubjectID string // stable id assigned by the identity provider
	Email     string
	Name      string
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

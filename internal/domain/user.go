package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated actor
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Company      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated identity performing an operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Product is the catalog entry an offer references. The catalog itself is
// maintained elsewhere; lifecycle code only checks existence and reads the name.
type Product struct {
	ID        uuid.UUID
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

package staff

import (
	"errors"
	"time"
)

// Member is a hotel staff account.
type Member struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrNotFound indicates no staff member matches.
	ErrNotFound = errors.New("staff: not found")
	// ErrInvalidCredentials indicates a failed authentication attempt.
	ErrInvalidCredentials = errors.New("staff: invalid credentials")
	// ErrInactive indicates the account is disabled.
	ErrInactive = errors.New("staff: account inactive")
)

package staff

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for staff accounts.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (Member, error)
}

// Service authenticates staff members.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies a username/password pair against the stored bcrypt
// hash and returns the active member.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Member, error) {
	if username == "" || password == "" {
		return Member{}, ErrInvalidCredentials
	}
	member, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Member{}, ErrInvalidCredentials
		}
		return Member{}, err
	}
	if !member.Active {
		return Member{}, ErrInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return Member{}, ErrInvalidCredentials
	}
	return member, nil
}

// HashPassword produces a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Package identity implements user signup and lookup.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/martecommerce/backend/internal/domain"
)

// Password length bounds enforced before hashing.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
)

// SignupInput carries the fields required to create a user.
type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// Service implements the signup use case.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// CreateUser creates a user inside the caller-supplied transaction. The
// existence check, password hashing and insert run strictly in that order,
// and no insert is attempted when the check finds a conflict. The
// transaction boundary belongs to the caller: this never commits or rolls
// back, so a failure at any step leaves no row once the caller rolls back.
func (s *Service) CreateUser(ctx context.Context, tx pgx.Tx, input SignupInput) (*domain.User, error) {
	_, err := s.repo.GetUserByEmailTx(ctx, tx, input.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	if n := len(input.Password); n < MinPasswordLength || n > MaxPasswordLength {
		return nil, ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	// Signups racing outside this transaction's isolation can both pass the
	// existence check; the store's UNIQUE constraint is the backstop, and the
	// repository maps that violation back to ErrEmailExists.
	if err := s.repo.CreateUserTx(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetUserByID returns the user with the given id. An id that is not a
// valid UUID cannot match any row, so it is reported as not found without
// touching the store.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.GetUserByID(ctx, id)
}

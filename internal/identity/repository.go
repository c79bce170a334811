package identity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/martecommerce/backend/internal/domain"
)

// Repository defines the interface for user data operations.
type Repository interface {
	// BeginTx starts a transaction. The caller owns the handle and must
	// finish it with exactly one Commit or Rollback.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Transaction-scoped operations used by the signup flow.
	CreateUserTx(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetUserByEmailTx(ctx context.Context, tx pgx.Tx, email string) (*domain.User, error)

	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Package postgres provides the PostgreSQL implementation of the identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/martecommerce/backend/internal/domain"
	"github.com/martecommerce/backend/internal/identity"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository implements the identity.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BeginTx starts a new transaction on the pool.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// CreateUserTx inserts a new user within the given transaction. The store
// assigns id and timestamps; a unique violation on email is reported as
// identity.ErrEmailExists so constraint races surface as the same conflict
// as the existence check.
func (r *Repository) CreateUserTx(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	query := `
		INSERT INTO users (full_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, role, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.Role, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmailTx retrieves a user by email within the given transaction,
// so the lookup is consistent with writes inside the same transaction.
func (r *Repository) GetUserByEmailTx(ctx context.Context, tx pgx.Tx, email string) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx, selectUserQuery+` WHERE email = $1`, email), "email")
}

// GetUserByID retrieves a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUserQuery+` WHERE id = $1`, id), "id")
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUserQuery+` WHERE email = $1`, email), "email")
}

const selectUserQuery = `
	SELECT id, full_name, email, password_hash,
	       reset_password_token, reset_password_expires,
	       role, last_login, created_at, updated_at
	FROM users
`

func scanUser(row pgx.Row, by string) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.Role,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", by, err)
	}
	return &user, nil
}

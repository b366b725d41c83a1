package accesscontrol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mogges/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// Store reads and writes the role column of user accounts.
type Store interface {
	GetRole(ctx context.Context, userID int64) (RoleName, error)
	SetRole(ctx context.Context, userID int64, role RoleName) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const queryTimeout = 5 * time.Second

func (r *Repository) GetRole(ctx context.Context, userID int64) (RoleName, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return RoleName(role), nil
}

// SetRole updates a user's role. Unknown users are reported with ErrUserNotFound.
func (r *Repository) SetRole(ctx context.Context, userID int64, role RoleName) error {
	if !role.Valid() {
		return fmt.Errorf("set role: invalid role %q", role)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), userID)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

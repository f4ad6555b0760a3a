package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
// Stateless: every method receives the DBExecutor it should run against.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	err := q.QueryRowContext(ctx, queryInsertUser,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.FullName,
		user.CreatedOn,
		user.IsAdmin,
		user.FailedAttempts,
		user.LastLogin,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID using the provided DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	err := q.GetContext(ctx, &user, queryGetUserByID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username using the provided DBExecutor.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	err := q.GetContext(ctx, &user, queryGetUserByUsername, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}

// UpdateField updates a single profile field. The field name is taken from
// the closed repository.UserField set, never from caller input directly.
func (r *UserRepository) UpdateField(ctx context.Context, q repository.DBExecutor, userID int64, field repository.UserField, value string) error {
	var query string
	switch field {
	case repository.UserFieldUsername:
		query = `UPDATE users SET username = $1 WHERE user_id = $2`
	case repository.UserFieldEmail:
		query = `UPDATE users SET email = $1 WHERE user_id = $2`
	case repository.UserFieldFullName:
		query = `UPDATE users SET fullname = $1 WHERE user_id = $2`
	default:
		return fmt.Errorf("%w: unknown user field %q", util.ErrInvalidInput, field)
	}

	result, err := q.ExecContext(ctx, query, value, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateUser
		}
		return fmt.Errorf("failed to update %s for user %d: %w", field, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// SetFailedAttempts stores the wrong-password counter.
func (r *UserRepository) SetFailedAttempts(ctx context.Context, q repository.DBExecutor, userID int64, attempts int) error {
	if _, err := q.ExecContext(ctx, querySetFailedAttempts, attempts, userID); err != nil {
		return fmt.Errorf("failed to set failed attempts for user %d: %w", userID, err)
	}
	return nil
}

// RecordLogin resets the counter and stamps last_login in one update.
func (r *UserRepository) RecordLogin(ctx context.Context, q repository.DBExecutor, userID int64, at time.Time) error {
	if _, err := q.ExecContext(ctx, queryRecordLogin, at, userID); err != nil {
		return fmt.Errorf("failed to record login for user %d: %w", userID, err)
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"ledgerbank/internal/domain"
)

// UserField is the closed set of profile fields an administrator may update.
type UserField string

const (
	UserFieldUsername UserField = "username"
	UserFieldEmail    UserField = "email"
	UserFieldFullName UserField = "fullname"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user, filling in the generated ID.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByUsername retrieves a user by their username.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// UpdateField updates a single profile field.
	UpdateField(ctx context.Context, q DBExecutor, userID int64, field UserField, value string) error
	// SetFailedAttempts stores the wrong-password counter.
	SetFailedAttempts(ctx context.Context, q DBExecutor, userID int64, attempts int) error
	// RecordLogin resets the counter and stamps last_login in one update.
	RecordLogin(ctx context.Context, q DBExecutor, userID int64, at time.Time) error
}

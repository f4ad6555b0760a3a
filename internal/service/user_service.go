package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerbank/internal/auth"
	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"
)

// UserService is the identity and authentication surface: profile creation,
// credential verification with lockout, and the admin-only profile updates.
type UserService interface {
	CreateUser(ctx context.Context, username, password, email, fullName string) (*domain.User, error)
	VerifyLogin(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, session domain.Session, userID int64) (*domain.User, error)
	UpdateUserField(ctx context.Context, session domain.Session, userID int64, field repository.UserField, value string) error
	ResetFailedAttempts(ctx context.Context, session domain.Session, username string) error
}

type userService struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
) UserService {
	return &userService{
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		hasher:     hasher,
	}
}

// CreateUser registers a new user profile. Username and email uniqueness is
// enforced by the store, so concurrent registrations cannot both succeed.
func (s *userService) CreateUser(ctx context.Context, username, password, email, fullName string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", util.ErrInvalidInput)
	}
	if !domain.ValidEmail(email) {
		return nil, fmt.Errorf("%w: malformed email %q", util.ErrInvalidInput, email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("create user: failed to hash password: %w", err)
	}

	user := domain.NewUser(username, hash, email, fullName)
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifyLogin checks credentials and drives the lockout state machine:
// a wrong password increments the counter; once it reaches the limit every
// attempt returns ErrAccountLocked, correct password included, until an
// administrator resets the counter. Success resets the counter and stamps
// last_login.
func (s *userService) VerifyLogin(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("verify login: %w", err)
	}

	if user.Locked() {
		return nil, util.ErrAccountLocked
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		// The increment persists even though the login fails; it is the
		// lockout counter, not part of any ledger mutation.
		if err := s.userRepo.SetFailedAttempts(ctx, s.dbExecutor, user.ID, user.FailedAttempts+1); err != nil {
			return nil, fmt.Errorf("verify login: %w", err)
		}
		return nil, util.ErrWrongPassword
	}

	now := time.Now().UTC()
	if err := s.userRepo.RecordLogin(ctx, s.dbExecutor, user.ID, now); err != nil {
		return nil, fmt.Errorf("verify login: %w", err)
	}
	user.FailedAttempts = 0
	user.LastLogin = &now
	return user, nil
}

// GetUser returns a user profile. Callers may read their own profile;
// reading someone else's requires the admin capability.
func (s *userService) GetUser(ctx context.Context, session domain.Session, userID int64) (*domain.User, error) {
	if session.UserID != userID && !session.IsAdmin {
		return nil, util.ErrNotAdmin
	}
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUserField updates one profile field. The capability check happens
// once here, at the boundary, not at the call sites.
func (s *userService) UpdateUserField(ctx context.Context, session domain.Session, userID int64, field repository.UserField, value string) error {
	if !session.IsAdmin {
		return util.ErrNotAdmin
	}
	if field == repository.UserFieldEmail && !domain.ValidEmail(value) {
		return fmt.Errorf("%w: malformed email %q", util.ErrInvalidInput, value)
	}
	if value == "" {
		return fmt.Errorf("%w: empty value for %s", util.ErrInvalidInput, field)
	}
	if err := s.userRepo.UpdateField(ctx, s.dbExecutor, userID, field, value); err != nil {
		return fmt.Errorf("update user field: %w", err)
	}
	return nil
}

// ResetFailedAttempts is the administrative unlock: it zeroes the
// wrong-password counter for the named user.
func (s *userService) ResetFailedAttempts(ctx context.Context, session domain.Session, username string) error {
	if !session.IsAdmin {
		return util.ErrNotAdmin
	}
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	if err := s.userRepo.SetFailedAttempts(ctx, s.dbExecutor, user.ID, 0); err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return nil
}

package domain

import (
	"regexp"
	"time"
)

// MaxFailedAttempts is the number of consecutive wrong-password attempts
// after which a user is locked until an administrator resets the counter.
const MaxFailedAttempts = 3

var emailPattern = regexp.MustCompile(`^[\w.+-]{1,50}@[\w-]{1,50}(\.[\w-]{1,10})+$`)

// ValidEmail reports whether the given address is acceptable for a user profile.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User represents a bank user identity.
type User struct {
	ID             int64      `db:"user_id" json:"user_id"`                 // Primary key, BIGSERIAL in DB
	Username       string     `db:"username" json:"username"`               // Unique username
	PasswordHash   string     `db:"password_hash" json:"-"`                 // Hash produced by the configured PasswordHasher
	Email          string     `db:"email" json:"email"`                     // Unique email
	FullName       string     `db:"fullname" json:"fullname"`               // Display name
	CreatedOn      time.Time  `db:"created_on" json:"created_on"`           // Timestamp of creation
	IsAdmin        bool       `db:"is_admin" json:"is_admin"`               // Grants privileged operations
	FailedAttempts int        `db:"failed_attempts" json:"failed_attempts"` // Consecutive wrong-password count
	LastLogin      *time.Time `db:"last_login" json:"last_login"`           // Nil until first successful login
}

// NewUser creates a new User instance with a zeroed lockout counter.
func NewUser(username, passwordHash, email, fullName string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		FullName:     fullName,
		CreatedOn:    time.Now().UTC(),
	}
}

// Locked reports whether the user has exhausted the failed-attempt budget.
// There is no automatic unlock; only an administrative reset clears it.
func (u *User) Locked() bool {
	return u.FailedAttempts >= MaxFailedAttempts
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("alice@example.com"))
	assert.True(t, ValidEmail("a.b+tag@sub.example.co"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail("alice@"))
}

func TestUserLocked(t *testing.T) {
	u := NewUser("alice", "hash", "alice@example.com", "Alice Doe")
	assert.False(t, u.Locked())
	u.FailedAttempts = MaxFailedAttempts - 1
	assert.False(t, u.Locked())
	u.FailedAttempts = MaxFailedAttempts
	assert.True(t, u.Locked())
}

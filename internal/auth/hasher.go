package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts the password-hashing primitive so the user
// service never depends on a concrete algorithm.
type PasswordHasher interface {
	// Hash derives a storable hash from a plaintext password.
	Hash(password string) (string, error)
	// Compare reports whether the plaintext matches the stored hash.
	Compare(hash, password string) bool
}

// BcryptHasher is the default PasswordHasher implementation.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a BcryptHasher at the library default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

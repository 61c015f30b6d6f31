package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// DeriveDefaultPassword builds the initial password for an onboarded
// customer from their birthdate. This is a known-weak default carried over
// from the existing workflow; it lives in one place so a hardening pass is a
// one-line change.
func DeriveDefaultPassword(birthdate time.Time, cost int) (string, error) {
	return HashPassword(birthdate.Format("2006-01-02"), cost)
}

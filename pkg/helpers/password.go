package helpers

import "golang.org/x/crypto/bcrypt"

// SentinelPassword is stored for accounts created via Google login. It is not
// a valid bcrypt hash, so CompareHashAndPassword can never succeed against it.
const SentinelPassword = "google"

// HashPassword hashes the plain text password using bcrypt.
// bcrypt.DefaultCost is a work factor of 10.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

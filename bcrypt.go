package accounts

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// hashCost trades login latency for brute force resistance
const hashCost = 14

// HashPassword derives a bcrypt digest from a cleartext password.
// Empty passwords are rejected before reaching the hasher.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// ComparePasswordAndHash checks a cleartext password against a stored
// digest, normalizing the bcrypt mismatch to the package sentinel.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}

	return err
}

// RandomPasswordHash returns the digest of a throwaway password, used to
// fill the column for accounts that cannot log in with one yet.
func RandomPasswordHash() string {
	h, err := HashPassword(uuid.NewString())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

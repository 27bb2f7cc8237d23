// Package auth provides authentication molecules for the web UI.
// This file contains the password hasher for the editor's login password.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost factor for new hashes. Cost 12 takes
	// around 250ms on current hardware.
	DefaultCost = 12

	// MinCost is the lowest cost accepted when validating stored hashes.
	MinCost = 10

	// MaxCost is the highest cost bcrypt supports.
	MaxCost = 31
)

var (
	// ErrEmptyPassword is returned when hashing or verifying an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrPasswordMismatch is returned when verification fails. It does not
	// reveal whether the stored hash itself was malformed.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrInvalidHash is returned for a malformed bcrypt hash.
	ErrInvalidHash = errors.New("invalid password hash format")

	// ErrCostTooLow is returned when a stored hash's cost is below MinCost.
	ErrCostTooLow = errors.New("hash cost is below minimum acceptable value")
)

// HashPassword hashes the editor password with bcrypt at DefaultCost.
// The salt and cost travel inside the hash, so the result can be stored
// as-is.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// HashPasswordWithCost hashes with an explicit cost factor between MinCost
// and MaxCost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	if cost < MinCost || cost > MaxCost {
		return "", bcrypt.InvalidCostError(cost)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash in
// constant time. Any bcrypt failure reports ErrPasswordMismatch so callers
// cannot distinguish a bad password from a corrupt hash.
func VerifyPassword(password, hash string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if hash == "" {
		return ErrInvalidHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}

	return nil
}

// NeedsRehash reports whether a hash was created below targetCost and should
// be regenerated after the next successful verification. Malformed hashes
// report true.
func NeedsRehash(hash string, targetCost int) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}

	return cost < targetCost
}

// NeedsRehashDefault reports whether a hash should be upgraded to DefaultCost.
func NeedsRehashDefault(hash string) bool {
	return NeedsRehash(hash, DefaultCost)
}

// GetHashCost extracts the cost factor from a bcrypt hash.
func GetHashCost(hash string) (int, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, ErrInvalidHash
	}
	return cost, nil
}

// ValidateHashStrength checks that a stored hash is well-formed and was
// created at an acceptable cost.
func ValidateHashStrength(hash string) error {
	if hash == "" {
		return ErrInvalidHash
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return ErrInvalidHash
	}

	if cost < MinCost {
		return ErrCostTooLow
	}

	return nil
}

// IsValidHash reports whether the string parses as a bcrypt hash. It does
// not verify any password.
func IsValidHash(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

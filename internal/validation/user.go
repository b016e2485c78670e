// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 7
	// bcrypt errors on inputs over 72 bytes, so anything longer must be
	// rejected here rather than at hashing time.
	MaxPasswordLength = 72
	MaxEmailLength    = 254
	MaxNameLength     = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims whitespace and lowercases an email address. Callers
// must normalize before storing or comparing emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName checks that a display name is non-empty after trimming.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if len(trimmed) > MaxNameLength {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateEmail checks basic email format. Expects a normalized address.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	return nil
}

// ValidatePassword checks length bounds and rejects passwords that contain
// the word "password" in any casing.
func ValidatePassword(password string) error {
	trimmed := strings.TrimSpace(password)
	if len(trimmed) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	// Length cap applies to the raw input since the untrimmed bytes are
	// what get hashed.
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	if strings.Contains(strings.ToLower(trimmed), "password") {
		return fmt.Errorf(`password cannot contain "password"`)
	}
	return nil
}

// ValidateAge rejects negative ages.
func ValidateAge(age int) error {
	if age < 0 {
		return fmt.Errorf("age must be a positive number")
	}
	return nil
}

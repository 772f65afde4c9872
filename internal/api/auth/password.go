package auth

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password hash-password will accept.
const MinPasswordLength = 12

// PasswordValidationError contains details about password validation failure.
type PasswordValidationError struct {
	Messages []string
}

func (e *PasswordValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// ValidatePassword checks that a password is long enough and mixes
// letter case with digits.
func ValidatePassword(password string) error {
	var messages []string

	if len(password) < MinPasswordLength {
		messages = append(messages, "password must be at least 12 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower {
		messages = append(messages, "password must contain upper and lower case letters")
	}
	if !hasDigit {
		messages = append(messages, "password must contain at least 1 digit")
	}

	if len(messages) > 0 {
		return &PasswordValidationError{Messages: messages}
	}
	return nil
}

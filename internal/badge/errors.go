package badge

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input errors.
var (
	ErrMissingInput = errors.New("username is required")
	ErrInvalidInput = errors.New("invalid input")
)

// MaxUsernameLength is the longest accepted identifier, in characters.
const MaxUsernameLength = 64

// ValidateUsername trims raw and checks it is a usable identifier.
// An empty raw value is missing, a blank or oversized one is invalid.
func ValidateUsername(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingInput
	}
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", fmt.Errorf("blank username: %w", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(username); n > MaxUsernameLength {
		return "", fmt.Errorf("username has %d characters, limit is %d: %w", n, MaxUsernameLength, ErrInvalidInput)
	}
	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("username contains control characters: %w", ErrInvalidInput)
	}
	return username, nil
}

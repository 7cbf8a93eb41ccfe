package entity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxEmailLength matches the width of the users.email column.
const MaxEmailLength = 255

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a validated, lower-cased address. The zero value is not a valid email.
type Email struct {
	value string
}

// NewEmail validates raw against local@domain.tld and normalizes it.
func NewEmail(raw string) (Email, error) {
	v := strings.TrimSpace(raw)
	if utf8.RuneCountInString(v) > MaxEmailLength {
		return Email{}, newValidationError(ErrInvalidEmail, "email", "Email must be at most 255 characters")
	}
	if !emailPattern.MatchString(v) {
		return Email{}, newValidationError(ErrInvalidEmail, "email", "Invalid email format")
	}
	return Email{value: strings.ToLower(v)}, nil
}

func (e Email) String() string { return e.value }

func (e Email) Equals(other Email) bool { return e.value == other.value }

// NormalizeEmail returns the canonical lookup form of raw without validating it.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

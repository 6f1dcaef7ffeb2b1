package password

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

var (
	ErrTooShort     = errors.New("password is too short")
	ErrTooLong      = errors.New("password is too long")
	ErrMissingUpper = errors.New("password must contain an uppercase letter")
	ErrMissingDigit = errors.New("password must contain a digit")
)

// Policy is the fixed strength rule applied before any password is hashed.
// MinLength counts runes; MaxLength counts bytes.
type Policy struct {
	MinLength    int
	MaxLength    int
	RequireUpper bool
	RequireDigit bool
}

func DefaultPolicy() Policy {
	return Policy{
		MinLength:    8,
		MaxLength:    DefaultMaxPasswordBytes,
		RequireUpper: true,
		RequireDigit: true,
	}
}

// Check returns the first rule the password breaks, or nil.
func (p Policy) Check(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return ErrTooShort
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		return ErrTooLong
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if p.RequireUpper && !hasUpper {
		return ErrMissingUpper
	}
	if p.RequireDigit && !hasDigit {
		return ErrMissingDigit
	}
	return nil
}

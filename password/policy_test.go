package password

import (
	"errors"
	"strings"
	"testing"
)

func TestPolicyCheck(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name string
		pw   string
		want error
	}{
		{"valid", "Password1", nil},
		{"exactly eight", "Abcdefg1", nil},
		{"too short", "Pass1", ErrTooShort},
		{"seven runes", "Ábcdef1", ErrTooShort},
		{"no upper", "password1", ErrMissingUpper},
		{"no digit", "Password", ErrMissingDigit},
		{"too long", "A1" + strings.Repeat("x", DefaultMaxPasswordBytes), ErrTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := p.Check(tc.pw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Check(%q) = %v, want %v", tc.pw, err, tc.want)
			}
		})
	}
}

func TestPolicyOptionalRules(t *testing.T) {
	p := Policy{MinLength: 4}
	if err := p.Check("abcd"); err != nil {
		t.Fatalf("expected relaxed policy to accept, got %v", err)
	}
}

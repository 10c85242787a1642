// Package phone canonicalises free-text Indian mobile numbers.
package phone

import (
	"errors"
	"strings"
)

const (
	countryCode     = "91"
	canonicalLength = 10
)

// ErrInvalidFormat is returned when the input cannot be reduced to a valid
// 10-digit mobile number.
var ErrInvalidFormat = errors.New("phone: invalid mobile number format")

// Normalize strips every non-digit, drops a leading "91" country code from
// 12-digit input or a trunk "0" from 11-digit input, and accepts only 10-digit
// numbers starting with 6, 7, 8 or 9.
func Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)

	switch {
	case len(digits) == canonicalLength+2 && strings.HasPrefix(digits, countryCode):
		digits = digits[2:]
	case len(digits) == canonicalLength+1 && digits[0] == '0':
		digits = digits[1:]
	}

	if len(digits) != canonicalLength {
		return "", ErrInvalidFormat
	}

	switch digits[0] {
	case '6', '7', '8', '9':
		return digits, nil
	default:
		return "", ErrInvalidFormat
	}
}

// IsValid reports whether raw normalises successfully.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// LegacyForms returns every stored representation that refers to the canonical
// number: the canonical form itself and the "+91" prefixed form written by
// older releases.
func LegacyForms(canonical string) []string {
	return []string{canonical, "+" + countryCode + canonical}
}

// Mask keeps only the last four digits, for logs.
func Mask(canonical string) string {
	if len(canonical) <= 4 {
		return canonical
	}
	return strings.Repeat("*", len(canonical)-4) + canonical[len(canonical)-4:]
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

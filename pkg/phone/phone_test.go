package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "9876543210", "9876543210"},
		{"plus country code", "+91 98765 43210", "9876543210"},
		{"bare country code", "919876543210", "9876543210"},
		{"trunk zero", "09876543210", "9876543210"},
		{"punctuation", "(987) 654-3210", "9876543210"},
		{"starts with six", "6000000000", "6000000000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"abc",
		"12345",
		"5876543210",   // first digit outside 6-9
		"0123456789",   // leading zero on a 10-digit number
		"98765432101",  // 11 digits without trunk zero
		"929876543210", // 12 digits without country code
		"+91 5876543210",
		"9876543210123",
	}

	for _, input := range invalid {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input)
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.False(t, IsValid(input))
		})
	}
}

func TestNormalize_PrefixedFormsAgree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.SampledFrom([]string{"6", "7", "8", "9"}).Draw(rt, "first")
		rest := rapid.StringMatching(`[0-9]{9}`).Draw(rt, "rest")
		number := first + rest

		prefix := rapid.SampledFrom([]string{"", "+91", "91", "0", "+91 ", "+91-"}).Draw(rt, "prefix")

		got, err := Normalize(prefix + number)
		if err != nil {
			rt.Fatalf("expected %q to normalise, got %v", prefix+number, err)
		}
		if got != number {
			rt.Fatalf("expected %q, got %q", number, got)
		}
	})
}

func TestNormalize_RejectsBadLeadingDigit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.SampledFrom([]string{"1", "2", "3", "4", "5"}).Draw(rt, "first")
		rest := rapid.StringMatching(`[0-9]{9}`).Draw(rt, "rest")

		if _, err := Normalize(first + rest); err == nil {
			rt.Fatalf("expected %q to be rejected", first+rest)
		}
	})
}

func TestLegacyForms(t *testing.T) {
	assert.Equal(t, []string{"9876543210", "+919876543210"}, LegacyForms("9876543210"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "******3210", Mask("9876543210"))
	assert.Equal(t, "12", Mask("12"))
}

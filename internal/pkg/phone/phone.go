package phone

import (
	"errors"
	"strings"

	"github.com/MiguelSanz/Anunzio/internal/pkg/env"
)

// ErrUnusable is returned when a raw value cannot be turned into a dialable
// number.
var ErrUnusable = errors.New("no usable phone number")

// minDigits is the shortest digit string accepted as a dialable number.
const minDigits = 6

// DefaultCountryCode returns the configured country code prepended to
// national numbers.
func DefaultCountryCode() string {
	return env.GetEnv("DEFAULT_COUNTRY_CODE", "34")
}

// Normalize turns a best-effort raw phone field into a canonical dialable
// form: digits only, international exit prefix ("+" or "00") and leading
// zeros stripped, and the default country code prepended when the raw value
// carried none.
func Normalize(raw, defaultCC string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrUnusable
	}

	international := strings.HasPrefix(trimmed, "+")

	digits := extractDigits(trimmed)
	if !international && strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		international = true
	}
	digits = strings.TrimLeft(digits, "0")

	if len(digits) < minDigits {
		return "", ErrUnusable
	}

	if international || strings.HasPrefix(digits, defaultCC) {
		return digits, nil
	}
	return defaultCC + digits, nil
}

// NormalizeDefault normalizes with the configured default country code.
func NormalizeDefault(raw string) (string, error) {
	return Normalize(raw, DefaultCountryCode())
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package services

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

func phoneDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone accepts a 10-digit Indian mobile number, or one already
// prefixed with +91, and returns it in +91XXXXXXXXXX form.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	digits := phoneDigits(raw)
	switch {
	case len(digits) == 10:
		return "+91" + digits, nil
	case len(digits) == 12 && strings.HasPrefix(raw, "+91"):
		return "+" + digits, nil
	}
	return "", ErrInvalidPhone
}

// NormalizePhoneLenient is used once a provider has verified the number.
func NormalizePhoneLenient(raw string) string {
	raw = strings.TrimSpace(raw)
	digits := phoneDigits(raw)
	if len(digits) == 10 {
		return "+91" + digits
	}
	if strings.HasPrefix(raw, "+91") {
		return raw
	}
	return "+91" + raw
}

// PhoneMatches reports whether the provider-verified number ends with the
// digits the client asked to sign in with.
func PhoneMatches(providerPhone, requested string) bool {
	digits := phoneDigits(requested)
	if digits == "" || providerPhone == "" {
		return false
	}
	return strings.HasSuffix(phoneDigits(providerPhone), digits)
}

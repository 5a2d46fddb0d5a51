// Package phone provides phone number display utilities.
// This is part of the platform layer and contains no business logic.
// Matching normalization for the call correlation engine lives in
// internal/calls/match; this package only handles presentation formatting.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// FormatE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func FormatE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// FormatNational formats a phone number for display, e.g. "(615) 555-0100".
// Unparseable input is returned trimmed.
func FormatNational(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.NATIONAL)
}

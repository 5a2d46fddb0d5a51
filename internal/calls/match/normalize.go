// Package match implements the call correlation engine: phone normalization,
// customer matching with confidence tiers, job linking by temporal proximity,
// and provider result mapping. All functions are pure; callers provide the
// reference snapshots.
package match

// Normalize reduces a raw phone string to a canonical digit-only form.
// Rules: strip all non-digit characters; an 11-digit number starting with
// the US country code "1" loses the leading digit; anything shorter than
// 10 digits is unusable and reported as not ok.
func Normalize(raw string) (string, bool) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}

	if len(digits) < 10 {
		return "", false
	}

	return string(digits), true
}

// lastSeven returns the trailing 7 digits of an already-normalized number.
func lastSeven(normalized string) string {
	if len(normalized) <= 7 {
		return normalized
	}
	return normalized[len(normalized)-7:]
}

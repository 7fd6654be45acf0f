package hostname

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const (
	// MaxLength is the maximum length of a hostname per RFC 1035.
	MaxLength = 253
	// MaxLabelLength is the maximum length of a single label per RFC 1035.
	MaxLabelLength = 63
)

// labelPattern allows alphanumerics with internal hyphens only.
var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Normalize canonicalizes a user supplied domain or Host header value.
// It trims whitespace, lowercases, strips the scheme, path, port and trailing dots.
// Non-ASCII names are converted to punycode. The steps are repeated until the
// value stops changing, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	host := raw
	for {
		next := normalizeOnce(host)
		if next == host {
			return host
		}
		host = next
	}
}

func normalizeOnce(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}

	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}

	host = strings.TrimRight(host, ".")

	// A numeric or empty port is stripped; anything else is left for format validation to reject.
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 && (idx == len(host)-1 || isDigits(host[idx+1:])) {
		host = host[:idx]
	}

	host = strings.TrimRight(host, ".")

	if !isASCII(host) {
		if ascii, err := idna.Lookup.ToASCII(host); err == nil {
			host = ascii
		}
	}

	return host
}

// ValidateFormat checks that domain is a syntactically valid, already normalized hostname.
func ValidateFormat(domain string) error {
	if domain == "" {
		return ErrEmpty
	}
	if len(domain) > MaxLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidFormat, MaxLength)
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return fmt.Errorf("%w: %q must include a top-level suffix", ErrInvalidFormat, domain)
	}

	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("%w: %q contains an empty label", ErrInvalidFormat, domain)
		}
		if len(label) > MaxLabelLength {
			return fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidFormat, label, MaxLabelLength)
		}
		if !labelPattern.MatchString(label) {
			return fmt.Errorf("%w: invalid label %q", ErrInvalidFormat, label)
		}
	}

	return nil
}

// IsValidFormat reports whether domain passes ValidateFormat.
func IsValidFormat(domain string) bool {
	return ValidateFormat(domain) == nil
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

func isASCII(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

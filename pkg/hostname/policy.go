package hostname

import (
	"fmt"
	"maps"
	"strings"
)

// DefaultReservedSubdomains are operational subdomains of the platform base domain.
var DefaultReservedSubdomains = []string{
	"api",
	"admin",
	"portal",
	"app",
	"dashboard",
	"mail",
	"connect",
}

// Policy holds the platform base domain and the reserved hostname set.
// A Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	base     string
	reserved map[string]struct{}
}

// NewPolicy builds a Policy for the given platform base domain.
// The base domain, its operational subdomains, "localhost" and every extra
// hostname are reserved.
func NewPolicy(base string, extra ...string) Policy {
	base = Normalize(base)
	reserved := make(map[string]struct{}, len(DefaultReservedSubdomains)+len(extra)+2)
	reserved["localhost"] = struct{}{}

	if base != "" {
		reserved[base] = struct{}{}
		for _, sub := range DefaultReservedSubdomains {
			reserved[sub+"."+base] = struct{}{}
		}
	}

	for _, h := range extra {
		if h = Normalize(h); h != "" {
			reserved[h] = struct{}{}
		}
	}

	return Policy{base: base, reserved: reserved}
}

// BaseDomain returns the normalized platform base domain.
func (p Policy) BaseDomain() string {
	return p.base
}

// Reserved returns a copy of the reserved hostname set.
func (p Policy) Reserved() map[string]struct{} {
	return maps.Clone(p.reserved)
}

// IsReserved reports whether domain exactly matches a reserved hostname.
func (p Policy) IsReserved(domain string) bool {
	_, ok := p.reserved[domain]
	return ok
}

// IsPlatformSubdomain reports whether domain is a subdomain of the platform base domain.
func (p Policy) IsPlatformSubdomain(domain string) bool {
	return p.base != "" && strings.HasSuffix(domain, "."+p.base)
}

// ValidateNotReserved rejects reserved hostnames and any subdomain of the
// platform base domain, which is always platform-owned.
func (p Policy) ValidateNotReserved(domain string) error {
	if p.IsReserved(domain) {
		return fmt.Errorf("%w: %q", ErrReserved, domain)
	}
	if p.IsPlatformSubdomain(domain) {
		return fmt.Errorf("%w: subdomains of %q are issued by the platform", ErrReserved, p.base)
	}
	return nil
}

// Validate normalizes raw and checks reservation and format rules for a
// customer-owned domain. Exact reserved names are reported as ErrReserved even
// when they are not valid public hostnames, e.g. "localhost".
func (p Policy) Validate(raw string) (string, error) {
	domain := Normalize(raw)
	if p.IsReserved(domain) {
		return "", fmt.Errorf("%w: %q", ErrReserved, domain)
	}
	if err := ValidateFormat(domain); err != nil {
		return "", err
	}
	if err := p.ValidateNotReserved(domain); err != nil {
		return "", err
	}
	return domain, nil
}

// ValidatePlatform normalizes raw and checks it for platform provisioning:
// the format must be valid and the name must not be reserved, but subdomains of
// the base domain are allowed.
func (p Policy) ValidatePlatform(raw string) (string, error) {
	domain := Normalize(raw)
	if p.IsReserved(domain) {
		return "", fmt.Errorf("%w: %q", ErrReserved, domain)
	}
	if err := ValidateFormat(domain); err != nil {
		return "", err
	}
	return domain, nil
}

// SubdomainLabel returns the single label in front of the base domain,
// e.g. "acme" for "acme.<base>". Nested subdomains are not matched.
func (p Policy) SubdomainLabel(host string) (string, bool) {
	if !p.IsPlatformSubdomain(host) {
		return "", false
	}
	label := strings.TrimSuffix(host, "."+p.base)
	if label == "" || strings.Contains(label, ".") {
		return "", false
	}
	return label, true
}

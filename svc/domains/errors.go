package domains

import "errors"

var (
	// ErrDomainNotFound is returned when a binding does not exist or belongs to another tenant.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrDomainAlreadyOwned is returned when the tenant already has a binding for the domain.
	ErrDomainAlreadyOwned = errors.New("domain is already bound to this tenant")

	// ErrDomainTakenByOtherTenant is returned when another tenant owns the domain.
	ErrDomainTakenByOtherTenant = errors.New("domain is bound to another tenant")

	// ErrDomainConflict is a raw uniqueness violation reported by the store.
	ErrDomainConflict = errors.New("domain uniqueness conflict")

	// ErrPrimaryConflict is reported when the store rejects a second active primary binding.
	ErrPrimaryConflict = errors.New("tenant already has an active primary domain")

	// ErrLastActiveDomain guards the tenant's only active primary binding.
	ErrLastActiveDomain = errors.New("cannot delete last active domain")

	// ErrInactivePrimary is returned when a binding is made primary and inactive at once.
	ErrInactivePrimary = errors.New("an inactive domain cannot be primary")

	// ErrInvalidDomainType is returned for unknown binding types.
	ErrInvalidDomainType = errors.New("invalid domain type")

	// ErrVerificationTokenMismatch is returned when the presented token differs from the stored one.
	ErrVerificationTokenMismatch = errors.New("verification token mismatch")
)

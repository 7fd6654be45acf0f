package hostname

import "errors"

var (
	// ErrEmpty is returned when the domain is empty after normalization.
	ErrEmpty = errors.New("domain is required")

	// ErrInvalidFormat is returned when the domain is not a valid hostname.
	ErrInvalidFormat = errors.New("invalid domain format")

	// ErrReserved is returned when the domain belongs to the platform.
	ErrReserved = errors.New("domain is reserved by the platform")
)

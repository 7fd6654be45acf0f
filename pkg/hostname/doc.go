// Package hostname canonicalizes and validates tenant domains.
//
// All functions are pure. Normalize is applied both when a domain is registered
// and when an inbound Host header is resolved; format and reservation checks
// run only on writes.
//
//	policy := hostname.NewPolicy("example-base")
//	domain, err := policy.Validate("HTTPS://Shop.Example.com:8443/path")
//	switch {
//	case errors.Is(err, hostname.ErrInvalidFormat):
//		// 400, show the reason
//	case errors.Is(err, hostname.ErrReserved):
//		// 400, the platform owns this name
//	}
//	// domain == "shop.example.com"
package hostname

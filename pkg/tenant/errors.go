package tenant

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTenantNotFound is returned when no tenant matches.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrBadRequest marks errors caused by the request itself.
	ErrBadRequest = errors.New("bad tenant request")

	// ErrAccessDenied marks a resolved tenant that may not be served.
	ErrAccessDenied = errors.New("tenant access denied")
)

var (
	ErrEmptyHost         = fmt.Errorf("%w: empty host", ErrBadRequest)
	ErrNoDomainInfo      = fmt.Errorf("%w: no domain information", ErrBadRequest)
	ErrInvalidTenantID   = fmt.Errorf("%w: invalid tenant id header", ErrBadRequest)
	ErrTenantUnavailable = fmt.Errorf("%w: tenant not found or inactive", ErrBadRequest)

	ErrNoTenantForHost = fmt.Errorf("%w: no tenant for host", ErrTenantNotFound)
	ErrReservedHost    = fmt.Errorf("%w: hostname is reserved by the platform", ErrTenantNotFound)

	ErrTenantInactive   = fmt.Errorf("%w: tenant is inactive, contact admin", ErrAccessDenied)
	ErrTenantSuspended  = fmt.Errorf("%w: tenant is suspended, contact support", ErrAccessDenied)
	ErrTrialExpired     = fmt.Errorf("%w: tenant trial expired, upgrade required", ErrAccessDenied)
	ErrUnexpectedStatus = fmt.Errorf("%w: tenant has unexpected status", ErrAccessDenied)
)

// ResolutionError describes a hostname that could not be mapped to a tenant.
type ResolutionError struct {
	Host  string       // normalized host
	Tried []ResolvedBy // strategies attempted, in order
	Err   error        // ErrNoTenantForHost or ErrReservedHost
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Host)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Hints returns remediation steps for operators. They are only exposed when
// verbose errors are enabled.
func (e *ResolutionError) Hints() []string {
	if errors.Is(e.Err, ErrReservedHost) {
		return []string{"this hostname is reserved by the platform and never resolves to a tenant"}
	}
	return []string{
		fmt.Sprintf("register %q as a domain binding for the tenant", e.Host),
		"make sure the binding is active",
		"for platform subdomains make sure a tenant with the matching slug exists",
		"when behind a proxy forward the original hostname in the tenant domain header",
	}
}

// StatusCode maps resolution and access errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrNoTenantInContext):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTenantID):
		return "invalid_tenant_id"
	case errors.Is(err, ErrTenantUnavailable):
		return "tenant_unavailable"
	case errors.Is(err, ErrNoDomainInfo), errors.Is(err, ErrEmptyHost):
		return "no_domain_information"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrTenantInactive):
		return "tenant_inactive"
	case errors.Is(err, ErrTenantSuspended):
		return "tenant_suspended"
	case errors.Is(err, ErrTrialExpired):
		return "trial_expired"
	case errors.Is(err, ErrAccessDenied):
		return "tenant_access_denied"
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrNoTenantInContext):
		return "tenant_not_found"
	default:
		return "internal_error"
	}
}

package tenant

import "fmt"

// ValidateAccess decides whether a resolved tenant may be served.
// Rules are checked in order and each failure carries a distinct, user facing reason.
func ValidateAccess(t *Tenant) error {
	switch {
	case t == nil:
		return ErrTenantNotFound
	case !t.IsActive:
		return ErrTenantInactive
	case t.Status == StatusSuspended:
		return ErrTenantSuspended
	case t.Status == StatusTrialExpired:
		return ErrTrialExpired
	case t.Status != StatusActive:
		return fmt.Errorf("%w: %q", ErrUnexpectedStatus, t.Status)
	}
	return nil
}

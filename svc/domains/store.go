package domains

import (
	"context"

	"github.com/sitekit/sitekit/pkg/tenant"
)

// Store is the write side of the domain store. Implementations return
// ErrDomainNotFound for missing bindings and tenant.ErrTenantNotFound for
// missing tenants.
type Store interface {
	// GetTenant returns the tenant regardless of its status.
	GetTenant(ctx context.Context, tenantID int64) (*tenant.Tenant, error)

	// ListBindings returns every binding of the tenant, primary first.
	ListBindings(ctx context.Context, tenantID int64) ([]tenant.Binding, error)

	// GetBinding returns the binding only if it belongs to tenantID.
	GetBinding(ctx context.Context, tenantID, bindingID int64) (*tenant.Binding, error)

	// FindBindingByDomain returns the binding for domain, active or not.
	FindBindingByDomain(ctx context.Context, domain string) (*tenant.Binding, error)

	// InsertBinding stores b and fills its ID and timestamps.
	// A duplicate domain yields ErrDomainConflict.
	InsertBinding(ctx context.Context, b *tenant.Binding) error

	// UpdateBinding persists the mutable fields of b.
	UpdateBinding(ctx context.Context, b *tenant.Binding) error

	// ClearPrimary drops the primary flag from the tenant's active bindings
	// except exceptID. Pass 0 to clear all of them.
	ClearPrimary(ctx context.Context, tenantID, exceptID int64) error

	// CountActiveBindings returns the number of active bindings of the tenant.
	CountActiveBindings(ctx context.Context, tenantID int64) (int, error)

	// LockTenant serializes binding mutations of one tenant until the
	// surrounding transaction ends. It fails if the tenant does not exist.
	LockTenant(ctx context.Context, tenantID int64) error

	// WithinTx runs fn in a single transaction. Changes are committed only
	// when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

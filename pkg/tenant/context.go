package tenant

import (
	"context"
	"log/slog"
)

type (
	tenantKey     struct{}
	resolutionKey struct{}
)

// DomainResolution describes how the tenant of a request was found.
type DomainResolution struct {
	OriginalDomain string     `json:"original_domain"`
	ResolvedBy     ResolvedBy `json:"resolved_by"`
	TenantDomain   *Binding   `json:"tenant_domain"`
}

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is found.
func FromContext(ctx context.Context) (*Tenant, bool) {
	tenant, ok := ctx.Value(tenantKey{}).(*Tenant)
	return tenant, ok && tenant != nil
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns false for platform level requests that carry no tenant.
func IDFromContext(ctx context.Context) (int64, bool) {
	tenant, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return tenant.ID, true
}

// MustFromContext panics if no tenant is found. Use only in handlers
// mounted behind Middleware or RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	tenant, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tenant
}

// WithResolution stores the resolution descriptor in the context.
func WithResolution(ctx context.Context, res DomainResolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

// ResolutionFromContext returns the resolution descriptor. It is absent for
// requests served through the trusted tenant id header.
func ResolutionFromContext(ctx context.Context) (DomainResolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(DomainResolution)
	return res, ok
}

// LoggerExtractor returns a ContextExtractor for the logger that extracts tenant ID from context
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.Int64("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}

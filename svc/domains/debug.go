package domains

import (
	"context"
	"errors"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/tenant"
)

// DebugResult reports how a hostname resolves, including failures.
type DebugResult struct {
	Host       string              `json:"host"`
	Normalized string              `json:"normalized"`
	Resolved   bool                `json:"resolved"`
	ResolvedBy tenant.ResolvedBy   `json:"resolved_by,omitempty"`
	Tenant     *tenant.Tenant      `json:"tenant,omitempty"`
	Binding    *tenant.Binding     `json:"binding,omitempty"`
	Servable   bool                `json:"servable"`
	Access     *tenant.ErrorDetail `json:"access,omitempty"` // why a resolved tenant would be rejected
	Error      *tenant.ErrorDetail `json:"error,omitempty"`  // why resolution failed
}

// ResolveDebug runs the resolver for host and returns the matching strategy
// and tenant, or a detailed failure. Store errors are returned as errors.
func (s *Service) ResolveDebug(ctx context.Context, host string) (*DebugResult, error) {
	out := &DebugResult{Host: host, Normalized: hostname.Normalize(host)}

	res, err := s.resolver.Resolve(ctx, host)
	if err != nil {
		if !errors.Is(err, tenant.ErrTenantNotFound) && !errors.Is(err, tenant.ErrBadRequest) {
			return nil, err
		}
		body := tenant.NewErrorBody(err, true)
		out.Error = &body.Error
		return out, nil
	}

	out.Resolved = true
	out.ResolvedBy = res.ResolvedBy
	out.Tenant = res.Tenant
	out.Binding = res.Binding
	if err := tenant.ValidateAccess(res.Tenant); err != nil {
		body := tenant.NewErrorBody(err, false)
		out.Access = &body.Error
	} else {
		out.Servable = true
	}
	return out, nil
}

package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sitekit/sitekit/pkg/hostname"
)

// ResolvedBy identifies the strategy that matched a hostname.
type ResolvedBy string

const (
	ResolvedByBinding     ResolvedBy = "binding"
	ResolvedByLegacyField ResolvedBy = "legacy-field"
	ResolvedBySlug        ResolvedBy = "slug"
)

// Valid reports whether r is one of the known strategies.
func (r ResolvedBy) Valid() bool {
	switch r {
	case ResolvedByBinding, ResolvedByLegacyField, ResolvedBySlug:
		return true
	}
	return false
}

// Resolution is the request scoped result of resolving a hostname.
type Resolution struct {
	Tenant     *Tenant    `json:"tenant"`
	Binding    *Binding   `json:"binding"` // nil for legacy-field and slug matches
	ResolvedBy ResolvedBy `json:"resolved_by"`
}

// Lookup performs a single point lookup for a normalized host.
// It returns ErrTenantNotFound on a miss.
type Lookup func(ctx context.Context, host string) (*Tenant, *Binding, error)

// Strategy is one named step of the resolution chain.
type Strategy struct {
	Name   ResolvedBy
	Lookup Lookup
}

// DefaultSlugAdminSuffix marks administrative panel subdomains, e.g. "acme-panel.<base>".
const DefaultSlugAdminSuffix = "panel"

// slugPattern restricts candidate slugs extracted from a platform subdomain.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// BindingStrategy matches active domain bindings.
func BindingStrategy(store Store) Strategy {
	return Strategy{
		Name: ResolvedByBinding,
		Lookup: func(ctx context.Context, host string) (*Tenant, *Binding, error) {
			return store.FindActiveBinding(ctx, host)
		},
	}
}

// LegacyFieldStrategy matches the tenant's historical single domain column.
func LegacyFieldStrategy(store Store) Strategy {
	return Strategy{
		Name: ResolvedByLegacyField,
		Lookup: func(ctx context.Context, host string) (*Tenant, *Binding, error) {
			t, err := store.FindTenantByLegacyDomain(ctx, host)
			return t, nil, err
		},
	}
}

// SlugStrategy matches "<slug>.<base>" hostnames by tenant slug.
// A trailing adminSuffix on the label is stripped before lookup.
func SlugStrategy(store Store, policy hostname.Policy, adminSuffix string) Strategy {
	return Strategy{
		Name: ResolvedBySlug,
		Lookup: func(ctx context.Context, host string) (*Tenant, *Binding, error) {
			slug, ok := SlugFromHost(policy, host, adminSuffix)
			if !ok {
				return nil, nil, ErrTenantNotFound
			}
			t, err := store.FindTenantBySlug(ctx, slug)
			return t, nil, err
		},
	}
}

// SlugFromHost extracts a candidate tenant slug from a platform subdomain.
// Labels naming a reserved subdomain are rejected after the admin suffix is stripped.
func SlugFromHost(policy hostname.Policy, host, adminSuffix string) (string, bool) {
	label, ok := policy.SubdomainLabel(host)
	if !ok {
		return "", false
	}
	if adminSuffix != "" && len(label) > len(adminSuffix) && strings.HasSuffix(label, adminSuffix) {
		label = strings.TrimSuffix(strings.TrimSuffix(label, adminSuffix), "-")
	}
	if !slugPattern.MatchString(label) {
		return "", false
	}
	if label == "localhost" || policy.IsReserved(label+"."+policy.BaseDomain()) {
		return "", false
	}
	return label, true
}

// DefaultStrategies returns binding, legacy-field and slug strategies in priority order.
func DefaultStrategies(store Store, policy hostname.Policy, adminSuffix string) []Strategy {
	return []Strategy{
		BindingStrategy(store),
		LegacyFieldStrategy(store),
		SlugStrategy(store, policy, adminSuffix),
	}
}

// Resolver maps inbound hostnames to tenants. It is read-only and keeps no
// state between calls, so every resolution reads the store.
type Resolver struct {
	policy       hostname.Policy
	strategies   []Strategy
	servableOnly bool
	metrics      *Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrategies replaces the default strategy chain.
func WithStrategies(strategies ...Strategy) ResolverOption {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// WithServableOnly makes strategies skip tenants that are not active with
// status "active", so a later strategy may still match. By default the first
// match wins and ValidateAccess reports why the tenant cannot be served.
func WithServableOnly(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.servableOnly = enabled
	}
}

// WithResolverMetrics records resolution outcomes.
func WithResolverMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver using DefaultStrategies unless overridden.
func NewResolver(store Store, policy hostname.Policy, opts ...ResolverOption) *Resolver {
	r := &Resolver{policy: policy}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategies == nil {
		r.strategies = DefaultStrategies(store, policy, DefaultSlugAdminSuffix)
	}
	return r
}

// Policy returns the hostname policy used by the resolver.
func (r *Resolver) Policy() hostname.Policy {
	return r.policy
}

// Resolve normalizes host and tries each strategy in order, returning on the first hit.
// Reserved hostnames never resolve, even if a stale binding exists for them.
func (r *Resolver) Resolve(ctx context.Context, host string) (*Resolution, error) {
	start := time.Now()
	res, err := r.resolve(ctx, host)
	r.metrics.observeResolution(res, err, time.Since(start))
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, raw string) (*Resolution, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyHost
	}

	host := hostname.Normalize(raw)
	if host == "" {
		return nil, ErrEmptyHost
	}

	if r.policy.IsReserved(host) {
		return nil, &ResolutionError{Host: host, Err: ErrReservedHost}
	}

	tried := make([]ResolvedBy, 0, len(r.strategies))
	for _, s := range r.strategies {
		tried = append(tried, s.Name)

		t, b, err := s.Lookup(ctx, host)
		if errors.Is(err, ErrTenantNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %q by %s: %w", host, s.Name, err)
		}
		if t == nil {
			continue
		}
		if r.servableOnly && !t.Servable() {
			continue
		}

		return &Resolution{Tenant: t, Binding: b, ResolvedBy: s.Name}, nil
	}

	return nil, &ResolutionError{Host: host, Tried: tried, Err: ErrNoTenantForHost}
}

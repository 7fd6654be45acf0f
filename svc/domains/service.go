package domains

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/tenant"
)

// AddInput describes a custom domain registration.
type AddInput struct {
	Domain    string
	IsPrimary bool
	Type      tenant.DomainType // defaults to custom
}

// UpdateInput carries optional flag changes. Nil fields are left untouched.
type UpdateInput struct {
	IsPrimary *bool
	IsActive  *bool
}

// Service manages the domain bindings of tenants. Every mutation runs in a
// single store transaction with the tenant row locked, so concurrent
// mutations of one tenant are serialized by the store.
type Service struct {
	store    Store
	resolver *tenant.Resolver
	policy   hostname.Policy
	prober   Prober
	reports  ReportStore
	logger   *slog.Logger
	now      func() time.Time
	newToken func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithProber sets the health prober. Defaults to an HTTPProber.
func WithProber(p Prober) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithReportStore keeps recent health reports so repeated checks skip the probe.
func WithReportStore(rs ReportStore) ServiceOption {
	return func(s *Service) {
		s.reports = rs
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenGenerator overrides how verification tokens are generated.
func WithTokenGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// NewService creates the domain management service. The resolver provides
// the hostname policy and backs ResolveDebug.
func NewService(store Store, resolver *tenant.Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		policy:   resolver.Policy(),
		logger:   slog.New(slog.DiscardHandler),
		now:      func() time.Time { return time.Now().UTC() },
		newToken: NewVerificationToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prober == nil {
		s.prober = NewHTTPProber()
	}
	return s
}

// NewVerificationToken returns a random token for domain ownership checks.
func NewVerificationToken() string {
	return "verify_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// List returns every binding of the tenant, active or not.
func (s *Service) List(ctx context.Context, tenantID int64) ([]tenant.Binding, error) {
	if _, err := s.store.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.store.ListBindings(ctx, tenantID)
}

// Add registers a tenant supplied domain. The binding starts unverified with
// a fresh verification token and pending SSL.
func (s *Service) Add(ctx context.Context, tenantID int64, in AddInput) (*tenant.Binding, error) {
	domain, err := s.policy.Validate(in.Domain)
	if err != nil {
		return nil, err
	}

	typ := in.Type
	if typ == "" {
		typ = tenant.DomainTypeCustom
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomainType, typ)
	}

	var created *tenant.Binding
	err = s.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		if err := checkAvailable(ctx, tx, tenantID, domain); err != nil {
			return err
		}
		if in.IsPrimary {
			if err := tx.ClearPrimary(ctx, tenantID, 0); err != nil {
				return err
			}
		}

		now := s.now()
		b := &tenant.Binding{
			TenantID:          tenantID,
			Domain:            domain,
			Type:              typ,
			IsPrimary:         in.IsPrimary,
			IsActive:          true,
			IsVerified:        false,
			VerificationToken: s.newToken(),
			SSLStatus:         tenant.SSLStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.InsertBinding(ctx, b); err != nil {
			// The tenant row is locked, so a concurrent insert of the same
			// domain can only come from another tenant.
			if errors.Is(err, ErrDomainConflict) {
				return fmt.Errorf("%w: %q", ErrDomainTakenByOtherTenant, domain)
			}
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain added",
		logger.TenantID(tenantID),
		logger.BindingID(created.ID),
		logger.Domain(created.Domain),
		slog.Bool("is_primary", created.IsPrimary),
		logger.Component("domains"),
	)
	return created, nil
}

// Update changes the primary and active flags of a binding. Promoting a
// binding clears every other primary of the tenant in the same transaction.
func (s *Service) Update(ctx context.Context, tenantID, bindingID int64, in UpdateInput) (*tenant.Binding, error) {
	if in.IsPrimary != nil && *in.IsPrimary && in.IsActive != nil && !*in.IsActive {
		return nil, ErrInactivePrimary
	}

	var updated *tenant.Binding
	err := s.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		b, err := tx.GetBinding(ctx, tenantID, bindingID)
		if err != nil {
			return err
		}

		active := b.IsActive
		if in.IsActive != nil {
			active = *in.IsActive
		}
		primary := b.IsPrimary
		if in.IsPrimary != nil {
			primary = *in.IsPrimary
		}

		if !active {
			if primary && in.IsPrimary != nil {
				return ErrInactivePrimary
			}
			if b.IsActive && b.IsPrimary {
				if err := guardLastActive(ctx, tx, tenantID); err != nil {
					return err
				}
			}
			primary = false
		}

		if active && primary {
			if err := tx.ClearPrimary(ctx, tenantID, b.ID); err != nil {
				return err
			}
		}

		b.IsActive = active
		b.IsPrimary = primary
		b.UpdatedAt = s.now()
		if err := tx.UpdateBinding(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "domain updated",
		logger.TenantID(tenantID),
		logger.BindingID(updated.ID),
		logger.Domain(updated.Domain),
		slog.Bool("is_primary", updated.IsPrimary),
		slog.Bool("is_active", updated.IsActive),
		logger.Component("domains"),
	)
	return updated, nil
}

// Remove soft-deletes a binding by deactivating it. Removing an already
// inactive binding is a no-op. The only active primary binding of a tenant
// cannot be removed.
func (s *Service) Remove(ctx context.Context, tenantID, bindingID int64) error {
	var removed *tenant.Binding
	err := s.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		b, err := tx.GetBinding(ctx, tenantID, bindingID)
		if err != nil {
			return err
		}
		if !b.IsActive {
			return nil
		}
		if b.IsPrimary {
			if err := guardLastActive(ctx, tx, tenantID); err != nil {
				return err
			}
		}

		b.IsActive = false
		b.IsPrimary = false
		b.UpdatedAt = s.now()
		if err := tx.UpdateBinding(ctx, b); err != nil {
			return err
		}
		removed = b
		return nil
	})
	if err != nil {
		return err
	}

	if removed != nil {
		s.logger.InfoContext(ctx, "domain removed",
			logger.TenantID(tenantID),
			logger.BindingID(removed.ID),
			logger.Domain(removed.Domain),
			logger.Component("domains"),
		)
	}
	return nil
}

// EnsureCanonical guarantees the tenant has an active, verified binding for
// domain with SSL marked active. An existing binding is reactivated or
// promoted in place; an existing primary is never demoted. Platform
// subdomains are accepted here, only exact reserved hostnames are rejected.
func (s *Service) EnsureCanonical(ctx context.Context, tenantID int64, rawDomain string, isPrimary bool) (*tenant.Binding, error) {
	domain, err := s.policy.ValidatePlatform(rawDomain)
	if err != nil {
		return nil, err
	}

	var result *tenant.Binding
	var changed bool
	err = s.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockTenant(ctx, tenantID); err != nil {
			return err
		}

		now := s.now()
		b, err := tx.FindBindingByDomain(ctx, domain)
		switch {
		case errors.Is(err, ErrDomainNotFound):
			if isPrimary {
				if err := tx.ClearPrimary(ctx, tenantID, 0); err != nil {
					return err
				}
			}
			b = &tenant.Binding{
				TenantID:   tenantID,
				Domain:     domain,
				Type:       s.canonicalType(domain),
				IsPrimary:  isPrimary,
				IsActive:   true,
				IsVerified: true,
				VerifiedAt: &now,
				SSLStatus:  tenant.SSLStatusActive,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.InsertBinding(ctx, b); err != nil {
				if errors.Is(err, ErrDomainConflict) {
					return fmt.Errorf("%w: %q", ErrDomainTakenByOtherTenant, domain)
				}
				return err
			}
			result, changed = b, true
			return nil
		case err != nil:
			return err
		case b.TenantID != tenantID:
			return fmt.Errorf("%w: %q", ErrDomainTakenByOtherTenant, domain)
		}

		if !b.IsActive {
			b.IsActive = true
			changed = true
		}
		if !b.IsVerified {
			b.IsVerified = true
			b.VerifiedAt = &now
			changed = true
		}
		if b.SSLStatus != tenant.SSLStatusActive {
			b.SSLStatus = tenant.SSLStatusActive
			changed = true
		}
		if isPrimary && !b.IsPrimary {
			b.IsPrimary = true
			changed = true
		}
		if b.IsPrimary && changed {
			if err := tx.ClearPrimary(ctx, tenantID, b.ID); err != nil {
				return err
			}
		}

		result = b
		if !changed {
			return nil
		}
		b.UpdatedAt = now
		return tx.UpdateBinding(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.InfoContext(ctx, "canonical domain ensured",
			logger.TenantID(tenantID),
			logger.BindingID(result.ID),
			logger.Domain(result.Domain),
			slog.Bool("is_primary", result.IsPrimary),
			logger.Component("domains"),
		)
	}
	return result, nil
}

// Verify marks a binding as verified when token matches the stored one.
// Verifying an already verified binding succeeds without changes.
func (s *Service) Verify(ctx context.Context, tenantID, bindingID int64, token string) (*tenant.Binding, error) {
	var verified *tenant.Binding
	err := s.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		b, err := tx.GetBinding(ctx, tenantID, bindingID)
		if err != nil {
			return err
		}
		verified = b
		if b.IsVerified {
			return nil
		}
		if token == "" || b.VerificationToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(b.VerificationToken)) != 1 {
			return ErrVerificationTokenMismatch
		}

		now := s.now()
		b.IsVerified = true
		b.VerifiedAt = &now
		b.UpdatedAt = now
		return tx.UpdateBinding(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (s *Service) canonicalType(domain string) tenant.DomainType {
	if s.policy.IsPlatformSubdomain(domain) {
		return tenant.DomainTypeSubdomain
	}
	return tenant.DomainTypeSystem
}

// checkAvailable distinguishes a domain the tenant already owns from one
// bound to another tenant. Inactive bindings still hold their domain.
func checkAvailable(ctx context.Context, tx Store, tenantID int64, domain string) error {
	existing, err := tx.FindBindingByDomain(ctx, domain)
	switch {
	case errors.Is(err, ErrDomainNotFound):
		return nil
	case err != nil:
		return err
	case existing.TenantID == tenantID:
		return fmt.Errorf("%w: %q", ErrDomainAlreadyOwned, domain)
	default:
		return fmt.Errorf("%w: %q", ErrDomainTakenByOtherTenant, domain)
	}
}

func guardLastActive(ctx context.Context, tx Store, tenantID int64) error {
	n, err := tx.CountActiveBindings(ctx, tenantID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastActiveDomain
	}
	return nil
}

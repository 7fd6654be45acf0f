package tenant

import (
	"context"
	"time"
)

// Status is the lifecycle status of a tenant. Values other than the
// predefined constants are allowed and treated as unexpected by ValidateAccess.
type Status string

const (
	StatusActive       Status = "active"
	StatusSuspended    Status = "suspended"
	StatusTrialExpired Status = "trial-expired"
)

// Tenant is an organization occupying one logical partition of the system.
type Tenant struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"` // legacy single hostname, predates domain bindings
	Status    Status    `json:"status"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Servable reports whether the tenant may be served right now.
func (t *Tenant) Servable() bool {
	return t != nil && t.IsActive && t.Status == StatusActive
}

// DomainType classifies a domain binding.
type DomainType string

const (
	DomainTypeCustom    DomainType = "custom"
	DomainTypeSubdomain DomainType = "subdomain"
	DomainTypeSystem    DomainType = "system"
)

// Valid reports whether the type is one of the known values.
func (t DomainType) Valid() bool {
	switch t {
	case DomainTypeCustom, DomainTypeSubdomain, DomainTypeSystem:
		return true
	}
	return false
}

// SSLStatus tracks certificate state for a binding. Issuance happens elsewhere.
type SSLStatus string

const (
	SSLStatusPending SSLStatus = "pending"
	SSLStatusActive  SSLStatus = "active"
	SSLStatusFailed  SSLStatus = "failed"
)

// Binding associates a canonical hostname with exactly one tenant.
// Among active bindings of a tenant at most one is primary.
type Binding struct {
	ID                int64      `json:"id"`
	TenantID          int64      `json:"tenant_id"`
	Domain            string     `json:"domain"`
	Type              DomainType `json:"type"`
	IsPrimary         bool       `json:"is_primary"`
	IsActive          bool       `json:"is_active"`
	IsVerified        bool       `json:"is_verified"`
	VerificationToken string     `json:"verification_token,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	SSLStatus         SSLStatus  `json:"ssl_status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Store is the read side of the domain store used during resolution.
// Every method returns ErrTenantNotFound when nothing matches.
type Store interface {
	// FindActiveBinding returns the active binding for the exact domain and its owner.
	FindActiveBinding(ctx context.Context, domain string) (*Tenant, *Binding, error)

	// FindTenantByLegacyDomain returns the tenant whose legacy domain column equals domain.
	FindTenantByLegacyDomain(ctx context.Context, domain string) (*Tenant, error)

	// FindTenantBySlug returns the tenant with the given slug.
	FindTenantBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetTenantByID returns the tenant with the given id.
	GetTenantByID(ctx context.Context, id int64) (*Tenant, error)
}

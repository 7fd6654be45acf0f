package store

import (
	"context"

	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
)

// Drivers accepted by Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config selects the storage backend.
type Config struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"` // Driver is "postgres" or "memory".
}

// Store is the full storage contract of the application.
type Store interface {
	tenant.Store
	domains.Store

	// UpsertTenant creates or updates a tenant by slug.
	UpsertTenant(ctx context.Context, t *tenant.Tenant) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)

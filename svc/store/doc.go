// Package store provides the tenant and domain binding storage backends.
//
// Postgres is the production backend. It relies on the tenants and
// tenant_domains tables from db/migrations, whose unique constraints back the
// global domain uniqueness and the single active primary binding per tenant.
// Memory is an in-process backend for development (STORE_DRIVER=memory) and tests.
//
// Both backends satisfy tenant.Store for resolution and domains.Store for
// management:
//
//	st := store.NewPostgres(pool)
//	resolver := tenant.NewResolver(st, policy)
//	svc := domains.NewService(st, resolver)
package store

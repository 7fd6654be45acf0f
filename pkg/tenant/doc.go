// Package tenant resolves the tenant of an inbound request from its hostname
// and carries it through the request context.
//
// Resolution runs an ordered list of strategies, each a single point lookup
// against the Store:
//
//  1. binding: an active domain binding with the exact hostname
//  2. legacy-field: the tenant's historical single domain column
//  3. slug: "<slug>.<base>" platform subdomains, with an optional "panel" suffix
//
// The first hit wins. Hostnames reserved by the hostname.Policy never resolve,
// even when a stale binding exists for them. Resolution is read-only and keeps
// no cache, so changes made through the domain management API are visible on
// the next request.
//
// # Usage
//
//	policy := hostname.NewPolicy("example-base")
//	resolver := tenant.NewResolver(store, policy)
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(resolver, store,
//		tenant.WithLogger(log),
//		tenant.WithVerboseErrors(cfg.Debug),
//	))
//
//	r.Get("/api/projects", func(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		res, _ := tenant.ResolutionFromContext(r.Context())
//		_ = res.ResolvedBy // binding, legacy-field or slug
//		_ = t
//	})
//
// Requests carrying the trusted X-Tenant-ID header skip hostname resolution
// and load the tenant by id. Paths outside the scoped prefixes (default
// "/api/") and bypassed prefixes such as "/health" are passed through.
//
// # Errors
//
// Failures map to HTTP status codes through StatusCode: malformed input is 400,
// an unknown or reserved hostname is 404, and a tenant that resolved but may
// not be served (ValidateAccess) is 403 with a specific reason. Diagnostic
// details are only written when verbose errors are enabled.
package tenant

// Package domains manages the domain bindings of tenants.
//
// Service adds, updates, removes and verifies bindings, ensures canonical
// bindings for provisioning, probes domain health and explains how a hostname
// resolves. Every mutation runs inside one Store transaction with the tenant
// row locked, which keeps domains globally unique and at most one active
// binding per tenant primary.
//
// Handler mounts the operations on a chi router:
//
//	svc := domains.NewService(st, resolver,
//		domains.WithReportStore(domains.NewRedisReportStore(rdb, time.Minute)),
//		domains.WithLogger(log),
//	)
//	r.Route("/api/super-admin", domains.NewHandler(svc, log).Routes)
//
// Registration errors wrap hostname.ErrInvalidFormat or hostname.ErrReserved
// (400), conflicts such as ErrDomainTakenByOtherTenant or ErrLastActiveDomain
// map to 409 and ErrDomainNotFound to 404.
package domains

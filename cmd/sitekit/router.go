package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitekit/sitekit/handler"
	"github.com/sitekit/sitekit/pkg/environment"
	"github.com/sitekit/sitekit/pkg/httpserver"
	"github.com/sitekit/sitekit/pkg/requestid"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
)

const readinessTimeout = 2 * time.Second

// newRouter mounts operational endpoints, the super-admin API and the tenant
// scoped API. Tenant resolution runs for every /api/ path outside the bypass list.
func newRouter(a *app) http.Handler {
	tenantOpts := append(tenant.FromConfig(a.cfg.Tenant),
		tenant.WithLogger(a.log),
		tenant.WithMetrics(a.metrics),
	)

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		requestid.Middleware,
		environment.Middleware(a.env),
		middleware.Recoverer,
		tenant.Middleware(a.resolver, a.store, tenantOpts...),
	)

	r.Get("/health", httpserver.HealthHandler(a.log, readinessTimeout))
	r.Get("/health/ready", httpserver.HealthHandler(a.log, readinessTimeout, a.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	errorHandler := handler.NewErrorHandler(a.log)
	r.Route("/api", func(r chi.Router) {
		r.Route("/super-admin", domains.NewHandler(a.domains, a.log).Routes)

		r.With(tenant.RequireTenant(nil)).Get("/tenant", handler.Wrap(currentTenant,
			handler.WithErrorHandler[struct{}](errorHandler),
		))
	})

	return r
}

type currentTenantResponse struct {
	Tenant     *tenant.Tenant           `json:"tenant"`
	Resolution *tenant.DomainResolution `json:"resolution,omitempty"`
}

// currentTenant reports the tenant resolved for the request. The binding's
// verification token is admin-only and never returned here.
func currentTenant(ctx handler.Context, _ struct{}) handler.Response {
	resp := currentTenantResponse{Tenant: tenant.MustFromContext(ctx)}
	if res, ok := tenant.ResolutionFromContext(ctx); ok {
		if res.TenantDomain != nil {
			b := *res.TenantDomain
			b.VerificationToken = ""
			res.TenantDomain = &b
		}
		resp.Resolution = &res
	}
	return handler.JSON(resp)
}

package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sitekit/sitekit/pkg/logger"
)

// Middleware creates HTTP middleware that resolves the tenant of every tenant
// scoped request and adds it to the request context.
//
// Requests carrying the trusted tenant id header skip hostname resolution.
// All other scoped requests are resolved from the tenant domain header or
// the Host header, then checked with ValidateAccess. Failures stop the
// pipeline; there is no retry.
func Middleware(resolver *Resolver, store Store, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = NewErrorHandler(cfg.verbose)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.requiresTenant(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if raw := r.Header.Get(cfg.tenantIDHeader); raw != "" {
				t, err := loadDirect(ctx, store, raw)
				if err != nil {
					cfg.fail(w, r, "direct", raw, err)
					return
				}

				cfg.metrics.observeRequest("direct", http.StatusOK)
				next.ServeHTTP(w, r.WithContext(WithTenant(ctx, t)))
				return
			}

			host := r.Header.Get(cfg.domainHeader)
			if strings.TrimSpace(host) == "" {
				host = r.Host
			}
			if strings.TrimSpace(host) == "" {
				cfg.fail(w, r, "hostname", "", ErrNoDomainInfo)
				return
			}

			res, err := resolver.Resolve(ctx, host)
			if err != nil {
				cfg.fail(w, r, "hostname", host, err)
				return
			}

			if err := ValidateAccess(res.Tenant); err != nil {
				cfg.fail(w, r, "hostname", host, err)
				return
			}

			cfg.logger.DebugContext(ctx, "tenant resolved",
				logger.TenantID(res.Tenant.ID),
				logger.Domain(host),
				logger.ResolvedBy(string(res.ResolvedBy)),
				logger.Component("tenant"),
			)
			cfg.metrics.observeRequest("hostname", http.StatusOK)

			ctx = WithTenant(ctx, res.Tenant)
			ctx = WithResolution(ctx, DomainResolution{
				OriginalDomain: host,
				ResolvedBy:     res.ResolvedBy,
				TenantDomain:   res.Binding,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requiresTenant reports whether path is tenant scoped and not bypassed.
func (c *config) requiresTenant(path string) bool {
	for _, skip := range c.bypassPrefixes {
		if skip != "" && strings.HasPrefix(path, skip) {
			return false
		}
	}
	for _, prefix := range c.scopedPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (c *config) fail(w http.ResponseWriter, r *http.Request, path, host string, err error) {
	status := StatusCode(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	c.logger.LogAttrs(r.Context(), level, "tenant resolution failed",
		logger.Error(err),
		logger.Domain(host),
		slog.String("path", r.URL.Path),
		slog.String("resolution_path", path),
		slog.Int("status_code", status),
		logger.Component("tenant"),
	)
	c.metrics.observeRequest(path, status)
	c.errorHandler(w, r, err)
}

// loadDirect serves trusted callers that already know the tenant id.
func loadDirect(ctx context.Context, store Store, raw string) (*Tenant, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidTenantID
	}

	t, err := store.GetTenantByID(ctx, id)
	if errors.Is(err, ErrTenantNotFound) {
		return nil, ErrTenantUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !t.IsActive || t.Status == StatusSuspended {
		return nil, ErrTenantUnavailable
	}
	return t, nil
}

// RequireTenant creates middleware that ensures a tenant is present in the context.
// This is useful for protecting routes that require tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = NewErrorHandler(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package domains

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitekit/sitekit/handler"
	"github.com/sitekit/sitekit/pkg/binder"
	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/tenant"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc          *Service
	errorHandler handler.ErrorHandler
}

// NewHandler creates the HTTP handler for domain management.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, errorHandler: handler.NewErrorHandler(log)}
}

type (
	listRequest struct {
		TenantID int64 `path:"tenantID"`
	}

	addRequest struct {
		TenantID  int64             `path:"tenantID" json:"-"`
		Domain    string            `json:"domain"`
		IsPrimary bool              `json:"is_primary"`
		Type      tenant.DomainType `json:"type"`
	}

	updateRequest struct {
		TenantID  int64 `path:"tenantID" json:"-"`
		BindingID int64 `path:"domainID" json:"-"`
		IsPrimary *bool `json:"is_primary"`
		IsActive  *bool `json:"is_active"`
	}

	bindingRequest struct {
		TenantID  int64 `path:"tenantID"`
		BindingID int64 `path:"domainID"`
	}

	verifyRequest struct {
		TenantID  int64  `path:"tenantID" json:"-"`
		BindingID int64  `path:"domainID" json:"-"`
		Token     string `json:"token"`
	}

	healthRequest struct {
		Domain string `query:"domain"`
	}

	resolveRequest struct {
		Host string `query:"host"`
	}
)

// Routes registers the super-admin endpoints on r:
//
//	GET    /tenants/{tenantID}/domains
//	POST   /tenants/{tenantID}/domains
//	PATCH  /tenants/{tenantID}/domains/{domainID}
//	DELETE /tenants/{tenantID}/domains/{domainID}
//	POST   /tenants/{tenantID}/domains/{domainID}/verify
//	GET    /tenants/{tenantID}/domains/health?domain=
//	GET    /resolve?host=
func (h *Handler) Routes(r chi.Router) {
	path := binder.Path(chi.URLParam)

	r.Route("/tenants/{tenantID}/domains", func(r chi.Router) {
		r.Get("/", handler.Wrap(h.list,
			handler.WithBinders[listRequest](path),
			handler.WithErrorHandler[listRequest](h.errorHandler),
		))
		r.Post("/", handler.Wrap(h.add,
			handler.WithBinders[addRequest](path, binder.BindJSON()),
			handler.WithErrorHandler[addRequest](h.errorHandler),
		))
		r.Get("/health", handler.Wrap(h.health,
			handler.WithBinders[healthRequest](binder.BindQuery()),
			handler.WithErrorHandler[healthRequest](h.errorHandler),
		))
		r.Patch("/{domainID}", handler.Wrap(h.update,
			handler.WithBinders[updateRequest](path, binder.BindJSON()),
			handler.WithErrorHandler[updateRequest](h.errorHandler),
		))
		r.Delete("/{domainID}", handler.Wrap(h.remove,
			handler.WithBinders[bindingRequest](path),
			handler.WithErrorHandler[bindingRequest](h.errorHandler),
		))
		r.Post("/{domainID}/verify", handler.Wrap(h.verify,
			handler.WithBinders[verifyRequest](path, binder.BindJSON()),
			handler.WithErrorHandler[verifyRequest](h.errorHandler),
		))
	})

	r.Get("/resolve", handler.Wrap(h.resolve,
		handler.WithBinders[resolveRequest](binder.BindQuery()),
		handler.WithErrorHandler[resolveRequest](h.errorHandler),
	))
}

func (h *Handler) list(ctx handler.Context, req listRequest) handler.Response {
	bindings, err := h.svc.List(ctx, req.TenantID)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(bindings, handler.WithJSONMeta(map[string]any{"total": len(bindings)}))
}

func (h *Handler) add(ctx handler.Context, req addRequest) handler.Response {
	b, err := h.svc.Add(ctx, req.TenantID, AddInput{
		Domain:    req.Domain,
		IsPrimary: req.IsPrimary,
		Type:      req.Type,
	})
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(b, handler.WithJSONStatus(http.StatusCreated))
}

func (h *Handler) update(ctx handler.Context, req updateRequest) handler.Response {
	if req.IsPrimary == nil && req.IsActive == nil {
		verr := handler.NewValidationError()
		verr.Add("is_primary", "is_primary or is_active is required")
		verr.Add("is_active", "is_primary or is_active is required")
		return handler.Error(verr)
	}
	b, err := h.svc.Update(ctx, req.TenantID, req.BindingID, UpdateInput{
		IsPrimary: req.IsPrimary,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(b)
}

func (h *Handler) remove(ctx handler.Context, req bindingRequest) handler.Response {
	if err := h.svc.Remove(ctx, req.TenantID, req.BindingID); err != nil {
		return handler.Error(httpError(err))
	}
	return handler.Empty()
}

func (h *Handler) verify(ctx handler.Context, req verifyRequest) handler.Response {
	if req.Token == "" {
		verr := handler.NewValidationError()
		verr.Add("token", "is required")
		return handler.Error(verr)
	}
	b, err := h.svc.Verify(ctx, req.TenantID, req.BindingID, req.Token)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(b)
}

func (h *Handler) health(ctx handler.Context, req healthRequest) handler.Response {
	report, err := h.svc.CheckHealth(ctx, req.Domain)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(report)
}

func (h *Handler) resolve(ctx handler.Context, req resolveRequest) handler.Response {
	if req.Host == "" {
		return handler.Error(handler.BadRequest("missing_host", errors.New("host query parameter is required")))
	}
	res, err := h.svc.ResolveDebug(ctx, req.Host)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(res)
}

// httpError maps service errors to HTTP errors. Unknown errors become 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, hostname.ErrEmpty), errors.Is(err, hostname.ErrInvalidFormat):
		return handler.BadRequest("invalid_domain", err)
	case errors.Is(err, hostname.ErrReserved):
		return handler.BadRequest("reserved_domain", err)
	case errors.Is(err, ErrInvalidDomainType):
		return handler.BadRequest("invalid_domain_type", err)
	case errors.Is(err, ErrDomainNotFound):
		return handler.NotFound("domain_not_found", err)
	case errors.Is(err, tenant.ErrTenantNotFound):
		return handler.NotFound("tenant_not_found", err)
	case errors.Is(err, ErrDomainAlreadyOwned):
		return handler.Conflict("domain_already_owned", err)
	case errors.Is(err, ErrDomainTakenByOtherTenant), errors.Is(err, ErrDomainConflict):
		return handler.Conflict("domain_taken", err)
	case errors.Is(err, ErrPrimaryConflict):
		return handler.Conflict("primary_conflict", err)
	case errors.Is(err, ErrLastActiveDomain):
		return handler.Conflict("last_active_domain", err)
	case errors.Is(err, ErrInactivePrimary):
		return handler.Conflict("inactive_primary", err)
	case errors.Is(err, ErrVerificationTokenMismatch):
		return handler.Conflict("verification_failed", err)
	}
	return err
}

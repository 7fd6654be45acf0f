package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Default header names consumed by the middleware.
const (
	DefaultTenantIDHeader = "X-Tenant-ID"
	DefaultDomainHeader   = "X-Tenant-Domain"
)

// Config is the environment driven configuration of tenant resolution.
type Config struct {
	BaseDomain      string   `env:"TENANT_BASE_DOMAIN,required"`                                                         // BaseDomain is the platform domain that issues tenant subdomains.
	ReservedHosts   []string `env:"TENANT_RESERVED_HOSTS" envSeparator:","`                                              // ReservedHosts are extra hostnames that never resolve to a tenant.
	TenantIDHeader  string   `env:"TENANT_ID_HEADER" envDefault:"X-Tenant-ID"`                                           // TenantIDHeader carries a trusted numeric tenant id.
	DomainHeader    string   `env:"TENANT_DOMAIN_HEADER" envDefault:"X-Tenant-Domain"`                                   // DomainHeader carries the original hostname from the edge.
	ScopedPrefixes  []string `env:"TENANT_SCOPED_PREFIXES" envDefault:"/api/" envSeparator:","`                          // ScopedPrefixes are path prefixes that require a tenant.
	BypassPrefixes  []string `env:"TENANT_BYPASS_PREFIXES" envDefault:"/api/super-admin/,/health,/metrics" envSeparator:","` // BypassPrefixes skip resolution even under a scoped prefix.
	SlugAdminSuffix string   `env:"TENANT_SLUG_ADMIN_SUFFIX" envDefault:"panel"`                                         // SlugAdminSuffix is stripped from subdomain labels before slug lookup.
	ServableOnly    bool     `env:"TENANT_SERVABLE_ONLY" envDefault:"false"`                                             // ServableOnly skips non-servable tenants during lookup.
	Debug           bool     `env:"TENANT_DEBUG" envDefault:"false"`                                                     // Debug adds diagnostic detail to resolution errors.
}

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	errorHandler   ErrorHandler
	scopedPrefixes []string
	bypassPrefixes []string
	tenantIDHeader string
	domainHeader   string
	verbose        bool
	logger         *slog.Logger
	metrics        *Metrics
}

func defaultConfig() *config {
	return &config{
		scopedPrefixes: []string{"/api/"},
		bypassPrefixes: []string{"/api/super-admin/", "/health", "/metrics"},
		tenantIDHeader: DefaultTenantIDHeader,
		domainHeader:   DefaultDomainHeader,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// Option configures the middleware.
type Option func(*config)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithSkipPaths sets path prefixes that never need tenant resolution,
// such as super-admin routes and health probes.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.bypassPrefixes = paths
	}
}

// WithScopedPrefixes sets the allow-list of tenant scoped path prefixes.
// Paths outside the list are served without resolution.
func WithScopedPrefixes(prefixes []string) Option {
	return func(c *config) {
		c.scopedPrefixes = prefixes
	}
}

// WithTenantIDHeader overrides the trusted tenant id header name.
func WithTenantIDHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.tenantIDHeader = name
		}
	}
}

// WithDomainHeader overrides the tenant hostname header name.
func WithDomainHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.domainHeader = name
		}
	}
}

// WithVerboseErrors includes diagnostic detail in error responses.
// Keep disabled in production.
func WithVerboseErrors(verbose bool) Option {
	return func(c *config) {
		c.verbose = verbose
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records middleware outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// FromConfig converts Config into middleware options.
func FromConfig(cfg Config) []Option {
	opts := []Option{
		WithTenantIDHeader(cfg.TenantIDHeader),
		WithDomainHeader(cfg.DomainHeader),
		WithVerboseErrors(cfg.Debug),
	}
	if len(cfg.ScopedPrefixes) > 0 {
		opts = append(opts, WithScopedPrefixes(cfg.ScopedPrefixes))
	}
	if len(cfg.BypassPrefixes) > 0 {
		opts = append(opts, WithSkipPaths(cfg.BypassPrefixes))
	}
	return opts
}

// ErrorBody is the JSON error envelope written by the middleware.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a resolution failure.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// publicMessages are safe to show to any client. Order matters: the first match wins.
var publicMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidTenantID, "invalid tenant id header"},
	{ErrTenantUnavailable, "tenant not found or inactive"},
	{ErrNoDomainInfo, "no domain information"},
	{ErrEmptyHost, "no domain information"},
	{ErrTenantInactive, "tenant is inactive, contact admin"},
	{ErrTenantSuspended, "tenant is suspended, contact support"},
	{ErrTrialExpired, "tenant trial expired, upgrade required"},
	{ErrUnexpectedStatus, "tenant has unexpected status"},
	{ErrTenantNotFound, "tenant not found"},
	{ErrNoTenantInContext, "tenant not found"},
	{ErrBadRequest, "bad request"},
}

// PublicMessage returns a client safe message for err.
func PublicMessage(err error) string {
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "internal server error"
}

// NewErrorBody builds the error envelope for err. Diagnostic details are only
// added when verbose is true.
func NewErrorBody(err error, verbose bool) ErrorBody {
	body := ErrorBody{Error: ErrorDetail{
		Code:    ErrorCode(err),
		Message: PublicMessage(err),
	}}
	if !verbose {
		return body
	}

	details := map[string]any{"error": err.Error()}
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		details["host"] = resErr.Host
		details["tried"] = resErr.Tried
		details["hints"] = resErr.Hints()
	}
	body.Error.Details = details
	return body
}

// NewErrorHandler returns the default JSON error handler.
func NewErrorHandler(verbose bool) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(StatusCode(err))
		_ = json.NewEncoder(w).Encode(NewErrorBody(err, verbose))
	}
}

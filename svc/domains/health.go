package domains

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/logger"
)

// DefaultProbeTimeout bounds a single health probe.
const DefaultProbeTimeout = 5 * time.Second

// HealthReport is the outcome of probing a domain over HTTPS.
// Any HTTP response, whatever its status, counts as reachable.
type HealthReport struct {
	Domain         string    `json:"domain"`
	IsReachable    bool      `json:"is_reachable"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	StatusCode     int       `json:"status_code,omitempty"`
	Error          string    `json:"error,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Prober checks whether a domain answers HTTP requests. Probe never fails;
// problems are reported in the HealthReport.
type Prober interface {
	Probe(ctx context.Context, domain string) HealthReport
}

// HTTPProber sends a single HEAD request to https://<domain>/.
type HTTPProber struct {
	client *resty.Client
	scheme string
}

// ProberOption configures an HTTPProber.
type ProberOption func(*HTTPProber)

// WithProbeTimeout overrides DefaultProbeTimeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *HTTPProber) {
		if d > 0 {
			p.client.SetTimeout(d)
		}
	}
}

// WithScheme overrides the "https" scheme, e.g. for plain HTTP test servers.
func WithScheme(scheme string) ProberOption {
	return func(p *HTTPProber) {
		if scheme != "" {
			p.scheme = scheme
		}
	}
}

// NewHTTPProber creates a prober that does not follow redirects, so a
// redirecting domain is reported with its own status code.
func NewHTTPProber(opts ...ProberOption) *HTTPProber {
	p := &HTTPProber{
		client: resty.New().
			SetTimeout(DefaultProbeTimeout).
			SetRedirectPolicy(resty.NoRedirectPolicy()).
			SetHeader("User-Agent", "sitekit-domain-health/1.0"),
		scheme: "https",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPProber) Probe(ctx context.Context, domain string) HealthReport {
	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Head(p.scheme + "://" + domain + "/")
	elapsed := time.Since(start)

	report := HealthReport{
		Domain:         domain,
		ResponseTimeMs: elapsed.Milliseconds(),
		CheckedAt:      start.UTC(),
	}

	// The no-redirect policy surfaces redirects as errors alongside the response.
	if resp != nil && resp.RawResponse != nil {
		report.IsReachable = true
		report.StatusCode = resp.StatusCode()
		return report
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

// ReportStore keeps the latest health report per domain for a short time.
type ReportStore interface {
	// Get returns ErrReportNotFound when nothing is stored for domain.
	Get(ctx context.Context, domain string) (*HealthReport, error)
	Save(ctx context.Context, report HealthReport) error
}

// ErrReportNotFound is returned by ReportStore.Get on a miss.
var ErrReportNotFound = errors.New("health report not found")

// CheckHealth probes domain and returns the report. A recent report from the
// ReportStore is returned instead of probing again. Report store failures
// are logged and never fail the check.
func (s *Service) CheckHealth(ctx context.Context, rawDomain string) (HealthReport, error) {
	domain := hostname.Normalize(rawDomain)
	if err := hostname.ValidateFormat(domain); err != nil {
		return HealthReport{}, err
	}

	if s.reports != nil {
		cached, err := s.reports.Get(ctx, domain)
		switch {
		case err == nil:
			return *cached, nil
		case !errors.Is(err, ErrReportNotFound):
			s.logger.WarnContext(ctx, "failed to read health report",
				logger.Error(err), logger.Domain(domain), logger.Component("domains"))
		}
	}

	report := s.prober.Probe(ctx, domain)

	level := slog.LevelDebug
	if !report.IsReachable {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "domain health checked",
		logger.Domain(domain),
		slog.Bool("is_reachable", report.IsReachable),
		slog.Int("status_code", report.StatusCode),
		slog.Int64("response_time_ms", report.ResponseTimeMs),
		logger.Component("domains"),
	)

	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "failed to store health report",
				logger.Error(err), logger.Domain(domain), logger.Component("domains"))
		}
	}
	return report, nil
}

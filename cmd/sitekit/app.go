package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sitekit/sitekit/db/migrations"
	"github.com/sitekit/sitekit/pkg/config"
	"github.com/sitekit/sitekit/pkg/environment"
	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/httpserver"
	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/pg"
	"github.com/sitekit/sitekit/pkg/redis"
	"github.com/sitekit/sitekit/pkg/requestid"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
	"github.com/sitekit/sitekit/svc/store"
)

var (
	errUnknownDriver    = errors.New("unknown store driver")
	errPostgresRequired = errors.New("command requires STORE_DRIVER=postgres")
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      appConfig
	env      environment.Environment
	log      *slog.Logger
	store    store.Store
	pool     *pgxpool.Pool
	pgCfg    pg.Config
	redis    *goredis.Client
	registry *prometheus.Registry
	metrics  *tenant.Metrics
	policy   hostname.Policy
	resolver *tenant.Resolver
	domains  *domains.Service
	checks   []httpserver.Check
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.FromConfig(cfg.Log, environment.Parse(cfg.Env).String(),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	)
}

// newApp connects the configured store and the optional Redis client and
// builds the resolver and domain service on top of them.
func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, env: environment.Parse(cfg.Env), log: log}

	switch cfg.Store.Driver {
	case store.DriverMemory:
		a.store = store.NewMemory()
	case store.DriverPostgres:
		if err := config.Load(&a.pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, a.pgCfg)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		a.store = store.NewPostgres(pool)
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.Store.Driver)
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = client
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = tenant.NewMetrics(a.registry)

	a.policy = hostname.NewPolicy(cfg.Tenant.BaseDomain, cfg.Tenant.ReservedHosts...)
	a.resolver = tenant.NewResolver(a.store, a.policy,
		tenant.WithStrategies(tenant.DefaultStrategies(a.store, a.policy, cfg.Tenant.SlugAdminSuffix)...),
		tenant.WithServableOnly(cfg.Tenant.ServableOnly),
		tenant.WithResolverMetrics(a.metrics),
	)

	opts := []domains.ServiceOption{
		domains.WithLogger(log),
		domains.WithProber(domains.NewHTTPProber(domains.WithProbeTimeout(cfg.Domains.ProbeTimeout))),
	}
	if a.redis != nil {
		opts = append(opts, domains.WithReportStore(domains.NewRedisReportStore(a.redis, cfg.Domains.ReportTTL)))
	}
	a.domains = domains.NewService(a.store, a.resolver, opts...)

	return a, nil
}

func (a *app) migrate(ctx context.Context, cmd pg.Command) error {
	if a.pool == nil {
		return errPostgresRequired
	}
	return pg.Migrate(ctx, a.pool, migrations.FS, a.pgCfg, cmd, a.log)
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

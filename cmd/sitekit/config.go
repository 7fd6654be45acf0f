package main

import (
	"time"

	"github.com/sitekit/sitekit/pkg/config"
	"github.com/sitekit/sitekit/pkg/httpserver"
	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/redis"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/store"
)

type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	MigrateOnStart bool   `env:"DB_MIGRATE_ON_START" envDefault:"false"` // MigrateOnStart applies pending migrations before serving.

	Log     logger.Config
	HTTP    httpserver.Config
	Tenant  tenant.Config
	Store   store.Config
	Redis   redis.Config
	Domains domainsConfig
}

type domainsConfig struct {
	ProbeTimeout time.Duration `env:"DOMAIN_PROBE_TIMEOUT" envDefault:"5s"`     // ProbeTimeout bounds a single health probe.
	ReportTTL    time.Duration `env:"DOMAIN_HEALTH_REPORT_TTL" envDefault:"1m"` // ReportTTL is how long health reports are reused.
}

// loadConfig reads the application configuration. A nil environ reads the
// process environment.
func loadConfig(environ map[string]string) (appConfig, error) {
	var cfg appConfig
	if err := config.LoadFrom(&cfg, environ); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

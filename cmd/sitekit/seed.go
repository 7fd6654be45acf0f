package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/logger"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
	"github.com/sitekit/sitekit/svc/store"
)

var errInvalidSeed = errors.New("invalid seed file")

// seedFile is the YAML provisioning format:
//
//	tenants:
//	  - slug: acme
//	    name: Acme Inc
//	    domain: www.acme.com   # legacy single domain, optional
//	    status: active
//	    domains:
//	      - domain: acme.example.com
//	        primary: true
type seedFile struct {
	Tenants []seedTenant `yaml:"tenants"`
}

type seedTenant struct {
	Slug     string        `yaml:"slug"`
	Name     string        `yaml:"name"`
	Domain   string        `yaml:"domain"`
	Status   tenant.Status `yaml:"status"`
	IsActive *bool         `yaml:"is_active"`
	Domains  []seedDomain  `yaml:"domains"`
}

type seedDomain struct {
	Domain  string `yaml:"domain"`
	Primary bool   `yaml:"primary"`
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(errInvalidSeed, err)
	}

	for i, t := range f.Tenants {
		if t.Slug == "" {
			return nil, fmt.Errorf("%w: tenant #%d has no slug", errInvalidSeed, i+1)
		}
	}
	return &f, nil
}

// applySeed upserts every tenant and ensures its canonical bindings. A tenant
// without explicit domains gets "<slug>.<base domain>" as its primary binding.
func applySeed(ctx context.Context, st store.Store, svc *domains.Service, policy hostname.Policy, f *seedFile, log *slog.Logger) error {
	for _, s := range f.Tenants {
		t := &tenant.Tenant{
			Slug:     s.Slug,
			Name:     s.Name,
			Domain:   hostname.Normalize(s.Domain),
			Status:   s.Status,
			IsActive: s.IsActive == nil || *s.IsActive,
		}
		if t.Name == "" {
			t.Name = s.Slug
		}
		if t.Status == "" {
			t.Status = tenant.StatusActive
		}
		if err := st.UpsertTenant(ctx, t); err != nil {
			return err
		}

		bindings := s.Domains
		if len(bindings) == 0 && policy.BaseDomain() != "" {
			bindings = []seedDomain{{Domain: s.Slug + "." + policy.BaseDomain(), Primary: true}}
		}
		for _, d := range bindings {
			b, err := svc.EnsureCanonical(ctx, t.ID, d.Domain, d.Primary)
			if err != nil {
				return fmt.Errorf("seed %s domain %q: %w", s.Slug, d.Domain, err)
			}
			log.InfoContext(ctx, "seeded domain",
				logger.TenantID(t.ID),
				logger.BindingID(b.ID),
				logger.Domain(b.Domain),
				logger.Component("seed"),
			)
		}
	}
	return nil
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision tenants and their canonical domains from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()

			seed, err := parseSeed(fh)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := applySeed(cmd.Context(), a.store, a.domains, a.policy, seed, a.log); err != nil {
				return err
			}
			cmd.Printf("seeded %d tenants\n", len(seed.Tenants))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}

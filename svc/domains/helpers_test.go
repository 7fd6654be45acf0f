package domains_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
	"github.com/sitekit/sitekit/svc/store"
)

var (
	testPolicy = hostname.NewPolicy("example-base")
	fixedNow   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fakeProber struct {
	mu     sync.Mutex
	calls  int
	report domains.HealthReport
}

func (p *fakeProber) Probe(_ context.Context, domain string) domains.HealthReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	r := p.report
	r.Domain = domain
	return r
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixture struct {
	svc    *domains.Service
	store  *store.Memory
	prober *fakeProber
}

func newFixture(t *testing.T, opts ...domains.ServiceOption) *fixture {
	t.Helper()

	st := store.NewMemory()
	prober := &fakeProber{report: domains.HealthReport{IsReachable: true, StatusCode: 200, ResponseTimeMs: 12}}
	resolver := tenant.NewResolver(st, testPolicy)

	base := []domains.ServiceOption{
		domains.WithProber(prober),
		domains.WithClock(func() time.Time { return fixedNow }),
		domains.WithTokenGenerator(func() string { return "verify_test" }),
	}
	svc := domains.NewService(st, resolver, append(base, opts...)...)
	return &fixture{svc: svc, store: st, prober: prober}
}

func (f *fixture) tenant(t *testing.T, slug string) *tenant.Tenant {
	t.Helper()
	tn := &tenant.Tenant{Slug: slug, Name: slug, Status: tenant.StatusActive, IsActive: true}
	require.NoError(t, f.store.UpsertTenant(context.Background(), tn))
	return tn
}

func (f *fixture) add(t *testing.T, tenantID int64, domain string, primary bool) *tenant.Binding {
	t.Helper()
	b, err := f.svc.Add(context.Background(), tenantID, domains.AddInput{Domain: domain, IsPrimary: primary})
	require.NoError(t, err)
	return b
}

func (f *fixture) binding(t *testing.T, tenantID, id int64) *tenant.Binding {
	t.Helper()
	b, err := f.store.GetBinding(context.Background(), tenantID, id)
	require.NoError(t, err)
	return b
}

func activePrimaries(t *testing.T, st domains.Store, tenantID int64) []string {
	t.Helper()
	list, err := st.ListBindings(context.Background(), tenantID)
	require.NoError(t, err)

	var out []string
	for _, b := range list {
		if b.IsActive && b.IsPrimary {
			out = append(out, b.Domain)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

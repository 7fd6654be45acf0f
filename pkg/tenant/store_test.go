package tenant_test

import (
	"context"
	"sync"

	"github.com/sitekit/sitekit/pkg/tenant"
)

// mockStore is an in-memory tenant.Store that counts lookups per method.
type mockStore struct {
	mu       sync.Mutex
	tenants  map[int64]*tenant.Tenant
	bindings map[string]*tenant.Binding
	calls    map[string]int
	err      error
}

func newMockStore() *mockStore {
	return &mockStore{
		tenants:  make(map[int64]*tenant.Tenant),
		bindings: make(map[string]*tenant.Binding),
		calls:    make(map[string]int),
	}
}

func (m *mockStore) addTenant(t *tenant.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

func (m *mockStore) addBinding(b *tenant.Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[b.Domain] = b
}

func (m *mockStore) setStatus(id int64, status tenant.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[id].Status = status
}

func (m *mockStore) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockStore) FindActiveBinding(_ context.Context, domain string) (*tenant.Tenant, *tenant.Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["FindActiveBinding"]++
	if m.err != nil {
		return nil, nil, m.err
	}

	b, ok := m.bindings[domain]
	if !ok || !b.IsActive {
		return nil, nil, tenant.ErrTenantNotFound
	}
	t, ok := m.tenants[b.TenantID]
	if !ok {
		return nil, nil, tenant.ErrTenantNotFound
	}
	return t, b, nil
}

func (m *mockStore) FindTenantByLegacyDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["FindTenantByLegacyDomain"]++
	for _, t := range m.tenants {
		if t.Domain != "" && t.Domain == domain {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *mockStore) FindTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["FindTenantBySlug"]++
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *mockStore) GetTenantByID(_ context.Context, id int64) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetTenantByID"]++
	t, ok := m.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func activeTenant(id int64, slug string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:       id,
		Slug:     slug,
		Name:     slug,
		Status:   tenant.StatusActive,
		IsActive: true,
	}
}

func primaryBinding(id, tenantID int64, domain string) *tenant.Binding {
	return &tenant.Binding{
		ID:         id,
		TenantID:   tenantID,
		Domain:     domain,
		Type:       tenant.DomainTypeCustom,
		IsPrimary:  true,
		IsActive:   true,
		IsVerified: true,
		SSLStatus:  tenant.SSLStatusActive,
	}
}

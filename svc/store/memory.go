package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
)

// Memory is an in-process store for development and tests. A single mutex
// serializes every call; WithinTx works on a copy of the data that replaces
// the original only when the callback succeeds.
type Memory struct {
	mu   sync.Mutex
	data *memData
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: newMemData()}
}

type memData struct {
	tenants       map[int64]tenant.Tenant
	bindings      map[int64]tenant.Binding
	nextTenantID  int64
	nextBindingID int64
}

func newMemData() *memData {
	return &memData{
		tenants:  make(map[int64]tenant.Tenant),
		bindings: make(map[int64]tenant.Binding),
	}
}

func (d *memData) clone() *memData {
	return &memData{
		tenants:       maps.Clone(d.tenants),
		bindings:      maps.Clone(d.bindings),
		nextTenantID:  d.nextTenantID,
		nextBindingID: d.nextBindingID,
	}
}

func (m *Memory) view(fn func(d *memData) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.data)
}

// WithinTx runs fn against a staged copy of the data.
func (m *Memory) WithinTx(ctx context.Context, fn func(tx domains.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.data.clone()
	if err := fn(staged); err != nil {
		return err
	}
	m.data = staged
	return nil
}

func (m *Memory) update(ctx context.Context, fn func(d *memData) error) error {
	return m.WithinTx(ctx, func(tx domains.Store) error {
		return fn(tx.(*memData))
	})
}

// UpsertTenant creates t or updates the tenant with the same slug. It sets
// t.ID and the timestamps.
func (m *Memory) UpsertTenant(ctx context.Context, t *tenant.Tenant) error {
	return m.update(ctx, func(d *memData) error {
		now := time.Now().UTC()
		for id, existing := range d.tenants {
			if existing.Slug == t.Slug {
				t.ID = id
				t.CreatedAt = existing.CreatedAt
				t.UpdatedAt = now
				d.tenants[id] = *t
				return nil
			}
		}
		d.nextTenantID++
		t.ID = d.nextTenantID
		t.CreatedAt, t.UpdatedAt = now, now
		d.tenants[t.ID] = *t
		return nil
	})
}

// Resolution side.

func (m *Memory) FindActiveBinding(ctx context.Context, domain string) (t *tenant.Tenant, b *tenant.Binding, err error) {
	err = m.view(func(d *memData) error {
		for _, candidate := range d.bindings {
			if candidate.IsActive && candidate.Domain == domain {
				owner, ok := d.tenants[candidate.TenantID]
				if !ok {
					return tenant.ErrTenantNotFound
				}
				t, b = &owner, &candidate
				return nil
			}
		}
		return tenant.ErrTenantNotFound
	})
	return t, b, err
}

func (m *Memory) FindTenantByLegacyDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return m.findTenant(func(t tenant.Tenant) bool { return t.Domain != "" && t.Domain == domain })
}

func (m *Memory) FindTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return m.findTenant(func(t tenant.Tenant) bool { return t.Slug == slug })
}

func (m *Memory) GetTenantByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	return m.GetTenant(ctx, id)
}

func (m *Memory) findTenant(match func(tenant.Tenant) bool) (t *tenant.Tenant, err error) {
	err = m.view(func(d *memData) error {
		for _, candidate := range d.tenants {
			if match(candidate) && (t == nil || candidate.ID < t.ID) {
				t = &candidate
			}
		}
		if t == nil {
			return tenant.ErrTenantNotFound
		}
		return nil
	})
	return t, err
}

// Management side, outside of a transaction.

func (m *Memory) GetTenant(ctx context.Context, tenantID int64) (t *tenant.Tenant, err error) {
	err = m.view(func(d *memData) error {
		t, err = d.GetTenant(ctx, tenantID)
		return err
	})
	return t, err
}

func (m *Memory) ListBindings(ctx context.Context, tenantID int64) (list []tenant.Binding, err error) {
	err = m.view(func(d *memData) error {
		list, err = d.ListBindings(ctx, tenantID)
		return err
	})
	return list, err
}

func (m *Memory) GetBinding(ctx context.Context, tenantID, bindingID int64) (b *tenant.Binding, err error) {
	err = m.view(func(d *memData) error {
		b, err = d.GetBinding(ctx, tenantID, bindingID)
		return err
	})
	return b, err
}

func (m *Memory) FindBindingByDomain(ctx context.Context, domain string) (b *tenant.Binding, err error) {
	err = m.view(func(d *memData) error {
		b, err = d.FindBindingByDomain(ctx, domain)
		return err
	})
	return b, err
}

func (m *Memory) CountActiveBindings(ctx context.Context, tenantID int64) (n int, err error) {
	err = m.view(func(d *memData) error {
		n, err = d.CountActiveBindings(ctx, tenantID)
		return err
	})
	return n, err
}

func (m *Memory) InsertBinding(ctx context.Context, b *tenant.Binding) error {
	return m.update(ctx, func(d *memData) error { return d.InsertBinding(ctx, b) })
}

func (m *Memory) UpdateBinding(ctx context.Context, b *tenant.Binding) error {
	return m.update(ctx, func(d *memData) error { return d.UpdateBinding(ctx, b) })
}

func (m *Memory) ClearPrimary(ctx context.Context, tenantID, exceptID int64) error {
	return m.update(ctx, func(d *memData) error { return d.ClearPrimary(ctx, tenantID, exceptID) })
}

// LockTenant only checks the tenant exists; the store mutex already
// serializes every transaction.
func (m *Memory) LockTenant(ctx context.Context, tenantID int64) error {
	return m.view(func(d *memData) error { return d.LockTenant(ctx, tenantID) })
}

// memData is the transaction view handed to WithinTx callbacks. The store
// mutex is held for its whole lifetime.

func (d *memData) GetTenant(_ context.Context, tenantID int64) (*tenant.Tenant, error) {
	t, ok := d.tenants[tenantID]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

func (d *memData) ListBindings(_ context.Context, tenantID int64) ([]tenant.Binding, error) {
	list := make([]tenant.Binding, 0)
	for _, b := range d.bindings {
		if b.TenantID == tenantID {
			list = append(list, b)
		}
	}
	slices.SortFunc(list, func(a, b tenant.Binding) int {
		if a.IsPrimary != b.IsPrimary {
			if a.IsPrimary {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (d *memData) GetBinding(_ context.Context, tenantID, bindingID int64) (*tenant.Binding, error) {
	b, ok := d.bindings[bindingID]
	if !ok || b.TenantID != tenantID {
		return nil, domains.ErrDomainNotFound
	}
	return &b, nil
}

func (d *memData) FindBindingByDomain(_ context.Context, domain string) (*tenant.Binding, error) {
	for _, b := range d.bindings {
		if b.Domain == domain {
			return &b, nil
		}
	}
	return nil, domains.ErrDomainNotFound
}

func (d *memData) InsertBinding(_ context.Context, b *tenant.Binding) error {
	if _, ok := d.tenants[b.TenantID]; !ok {
		return tenant.ErrTenantNotFound
	}
	if err := d.checkConstraints(*b); err != nil {
		return err
	}

	now := time.Now().UTC()
	d.nextBindingID++
	b.ID = d.nextBindingID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	d.bindings[b.ID] = *b
	return nil
}

func (d *memData) UpdateBinding(_ context.Context, b *tenant.Binding) error {
	existing, ok := d.bindings[b.ID]
	if !ok || existing.TenantID != b.TenantID {
		return domains.ErrDomainNotFound
	}
	if err := d.checkConstraints(*b); err != nil {
		return err
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	d.bindings[b.ID] = *b
	return nil
}

func (d *memData) ClearPrimary(_ context.Context, tenantID, exceptID int64) error {
	for id, b := range d.bindings {
		if b.TenantID == tenantID && b.IsActive && b.IsPrimary && id != exceptID {
			b.IsPrimary = false
			b.UpdatedAt = time.Now().UTC()
			d.bindings[id] = b
		}
	}
	return nil
}

func (d *memData) CountActiveBindings(_ context.Context, tenantID int64) (int, error) {
	n := 0
	for _, b := range d.bindings {
		if b.TenantID == tenantID && b.IsActive {
			n++
		}
	}
	return n, nil
}

func (d *memData) LockTenant(_ context.Context, tenantID int64) error {
	if _, ok := d.tenants[tenantID]; !ok {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// WithinTx on a transaction view runs fn in the same transaction.
func (d *memData) WithinTx(_ context.Context, fn func(tx domains.Store) error) error {
	return fn(d)
}

// checkConstraints mirrors the unique constraints of the SQL schema.
func (d *memData) checkConstraints(b tenant.Binding) error {
	for id, other := range d.bindings {
		if id == b.ID {
			continue
		}
		if other.Domain == b.Domain {
			return fmt.Errorf("%w: %q", domains.ErrDomainConflict, b.Domain)
		}
		if b.IsPrimary && b.IsActive && other.TenantID == b.TenantID && other.IsPrimary && other.IsActive {
			return domains.ErrPrimaryConflict
		}
	}
	return nil
}

var (
	_ tenant.Store  = (*Memory)(nil)
	_ domains.Store = (*Memory)(nil)
	_ domains.Store = (*memData)(nil)
)

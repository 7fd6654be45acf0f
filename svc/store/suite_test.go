package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/pkg/hostname"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
	"github.com/sitekit/sitekit/svc/store"
)

// runStoreSuite checks the behaviour both backends share. Subtests run
// sequentially against st and use distinct slugs and domains.
func runStoreSuite(t *testing.T, st store.Store) {
	ctx := context.Background()

	newTenant := func(t *testing.T, slug string) *tenant.Tenant {
		t.Helper()
		tn := &tenant.Tenant{Slug: slug, Name: slug, Status: tenant.StatusActive, IsActive: true}
		require.NoError(t, st.UpsertTenant(ctx, tn))
		require.NotZero(t, tn.ID)
		return tn
	}

	newBinding := func(t *testing.T, tenantID int64, domain string, primary bool) *tenant.Binding {
		t.Helper()
		b := &tenant.Binding{
			TenantID:  tenantID,
			Domain:    domain,
			Type:      tenant.DomainTypeCustom,
			IsPrimary: primary,
			IsActive:  true,
			SSLStatus: tenant.SSLStatusPending,
		}
		require.NoError(t, st.InsertBinding(ctx, b))
		require.NotZero(t, b.ID)
		return b
	}

	t.Run("upsert tenant by slug", func(t *testing.T) {
		tn := newTenant(t, "upsert")
		id := tn.ID

		tn.Name = "Renamed"
		tn.Domain = "legacy-upsert.example.com"
		tn.Status = tenant.StatusSuspended
		require.NoError(t, st.UpsertTenant(ctx, tn))
		assert.Equal(t, id, tn.ID)

		got, err := st.GetTenantByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "legacy-upsert.example.com", got.Domain)
		assert.Equal(t, tenant.StatusSuspended, got.Status)
	})

	t.Run("resolution lookups", func(t *testing.T) {
		tn := newTenant(t, "lookup")
		tn.Domain = "legacy-lookup.example.com"
		require.NoError(t, st.UpsertTenant(ctx, tn))
		b := newBinding(t, tn.ID, "www.lookup.com", true)

		owner, found, err := st.FindActiveBinding(ctx, "www.lookup.com")
		require.NoError(t, err)
		assert.Equal(t, tn.ID, owner.ID)
		assert.Equal(t, b.ID, found.ID)
		assert.Equal(t, "lookup", owner.Slug)

		_, _, err = st.FindActiveBinding(ctx, "missing.lookup.com")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

		byLegacy, err := st.FindTenantByLegacyDomain(ctx, "legacy-lookup.example.com")
		require.NoError(t, err)
		assert.Equal(t, tn.ID, byLegacy.ID)

		bySlug, err := st.FindTenantBySlug(ctx, "lookup")
		require.NoError(t, err)
		assert.Equal(t, tn.ID, bySlug.ID)

		_, err = st.FindTenantBySlug(ctx, "nobody")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

		_, err = st.GetTenantByID(ctx, 987654)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("inactive binding does not resolve", func(t *testing.T) {
		tn := newTenant(t, "inactive")
		b := newBinding(t, tn.ID, "www.inactive.com", false)

		b.IsActive = false
		require.NoError(t, st.UpdateBinding(ctx, b))

		_, _, err := st.FindActiveBinding(ctx, "www.inactive.com")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

		still, err := st.FindBindingByDomain(ctx, "www.inactive.com")
		require.NoError(t, err)
		assert.False(t, still.IsActive)
	})

	t.Run("domain is globally unique", func(t *testing.T) {
		a := newTenant(t, "unique-a")
		b := newTenant(t, "unique-b")
		newBinding(t, a.ID, "www.unique.com", false)

		err := st.InsertBinding(ctx, &tenant.Binding{
			TenantID: b.ID, Domain: "www.unique.com", Type: tenant.DomainTypeCustom,
			IsActive: true, SSLStatus: tenant.SSLStatusPending,
		})
		assert.ErrorIs(t, err, domains.ErrDomainConflict)
	})

	t.Run("single active primary per tenant", func(t *testing.T) {
		tn := newTenant(t, "primary")
		first := newBinding(t, tn.ID, "one.primary.com", true)

		err := st.InsertBinding(ctx, &tenant.Binding{
			TenantID: tn.ID, Domain: "two.primary.com", Type: tenant.DomainTypeCustom,
			IsPrimary: true, IsActive: true, SSLStatus: tenant.SSLStatusPending,
		})
		assert.ErrorIs(t, err, domains.ErrPrimaryConflict)

		second := newBinding(t, tn.ID, "two.primary.com", false)
		require.NoError(t, st.ClearPrimary(ctx, tn.ID, second.ID))
		second.IsPrimary = true
		require.NoError(t, st.UpdateBinding(ctx, second))

		got, err := st.GetBinding(ctx, tn.ID, first.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPrimary)

		list, err := st.ListBindings(ctx, tn.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID, "primary first")

		n, err := st.CountActiveBindings(ctx, tn.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("ownership is enforced", func(t *testing.T) {
		a := newTenant(t, "owner-a")
		b := newTenant(t, "owner-b")
		bind := newBinding(t, a.ID, "www.owner.com", false)

		_, err := st.GetBinding(ctx, b.ID, bind.ID)
		assert.ErrorIs(t, err, domains.ErrDomainNotFound)

		err = st.InsertBinding(ctx, &tenant.Binding{
			TenantID: 987654, Domain: "orphan.owner.com", Type: tenant.DomainTypeCustom,
			IsActive: true, SSLStatus: tenant.SSLStatusPending,
		})
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

		assert.ErrorIs(t, st.LockTenant(ctx, 987654), tenant.ErrTenantNotFound)
		assert.NoError(t, st.LockTenant(ctx, a.ID))
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		tn := newTenant(t, "rollback")
		boom := errors.New("boom")

		err := st.WithinTx(ctx, func(tx domains.Store) error {
			require.NoError(t, tx.LockTenant(ctx, tn.ID))
			require.NoError(t, tx.InsertBinding(ctx, &tenant.Binding{
				TenantID: tn.ID, Domain: "www.rollback.com", Type: tenant.DomainTypeCustom,
				IsActive: true, SSLStatus: tenant.SSLStatusPending,
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = st.FindBindingByDomain(ctx, "www.rollback.com")
		assert.ErrorIs(t, err, domains.ErrDomainNotFound)

		err = st.WithinTx(ctx, func(tx domains.Store) error {
			return tx.InsertBinding(ctx, &tenant.Binding{
				TenantID: tn.ID, Domain: "www.rollback.com", Type: tenant.DomainTypeCustom,
				IsActive: true, SSLStatus: tenant.SSLStatusPending,
			})
		})
		require.NoError(t, err)

		_, err = st.FindBindingByDomain(ctx, "www.rollback.com")
		assert.NoError(t, err)
	})

	t.Run("concurrent primary changes keep one active primary", func(t *testing.T) {
		svc := domains.NewService(st, tenant.NewResolver(st, hostname.NewPolicy("example-base")))
		tn := newTenant(t, "concurrent")

		ids := make([]int64, 0, 8)
		for i := range 8 {
			b := newBinding(t, tn.ID, fmt.Sprintf("c%d.concurrent.com", i), i == 0)
			ids = append(ids, b.ID)
		}

		var wg sync.WaitGroup
		for i, id := range ids {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := svc.Update(ctx, tn.ID, id, domains.UpdateInput{IsPrimary: ptr(true)})
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := svc.Add(ctx, tn.ID, domains.AddInput{
					Domain:    fmt.Sprintf("n%d.concurrent.com", i),
					IsPrimary: true,
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		list, err := st.ListBindings(ctx, tn.ID)
		require.NoError(t, err)
		require.Len(t, list, 16)
		primaries := 0
		for _, b := range list {
			if b.IsActive && b.IsPrimary {
				primaries++
			}
		}
		assert.Equal(t, 1, primaries)
	})
}

func ptr[T any](v T) *T {
	return &v
}

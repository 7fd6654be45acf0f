package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitekit/sitekit/pkg/pg"
	"github.com/sitekit/sitekit/pkg/tenant"
	"github.com/sitekit/sitekit/svc/domains"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements the resolution and management stores on top of the
// tenants and tenant_domains tables.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a store using db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Constraint names from db/migrations.
const (
	domainUniqueConstraint  = "tenant_domains_domain_key"
	singlePrimaryConstraint = "tenant_domains_single_primary_idx"
)

const (
	tenantColumns = `t.id, t.slug, t.name, COALESCE(t.domain, ''), t.status, t.is_active, t.created_at, t.updated_at`

	bindingColumns = `d.id, d.tenant_id, d.domain, d.type, d.is_primary, d.is_active, d.is_verified,
		d.verification_token, d.verified_at, d.ssl_status, d.created_at, d.updated_at`
)

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Domain, &t.Status, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

func bindingFields(b *tenant.Binding) []any {
	return []any{
		&b.ID, &b.TenantID, &b.Domain, &b.Type, &b.IsPrimary, &b.IsActive, &b.IsVerified,
		&b.VerificationToken, &b.VerifiedAt, &b.SSLStatus, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBinding(row pgx.Row) (*tenant.Binding, error) {
	var b tenant.Binding
	err := row.Scan(bindingFields(&b)...)
	if pg.IsNotFoundError(err) {
		return nil, domains.ErrDomainNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan domain binding: %w", err)
	}
	return &b, nil
}

// mapWriteError translates constraint violations into store errors.
func mapWriteError(err error, domain string) error {
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err):
		switch pg.ConstraintName(err, "23505") {
		case domainUniqueConstraint:
			return fmt.Errorf("%w: %q", domains.ErrDomainConflict, domain)
		case singlePrimaryConstraint:
			return domains.ErrPrimaryConflict
		}
		return errors.Join(domains.ErrDomainConflict, err)
	case pg.IsForeignKeyViolationError(err):
		return tenant.ErrTenantNotFound
	}
	return err
}

// Resolution side.

func (p *Postgres) FindActiveBinding(ctx context.Context, domain string) (*tenant.Tenant, *tenant.Binding, error) {
	var (
		t tenant.Tenant
		b tenant.Binding
	)
	dest := append(bindingFields(&b),
		&t.ID, &t.Slug, &t.Name, &t.Domain, &t.Status, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)

	err := p.db.QueryRow(ctx, `
		SELECT `+bindingColumns+`, `+tenantColumns+`
		FROM tenant_domains d
		JOIN tenants t ON t.id = d.tenant_id
		WHERE d.domain = $1 AND d.is_active
		LIMIT 1`, domain).Scan(dest...)
	if pg.IsNotFoundError(err) {
		return nil, nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find active binding: %w", err)
	}
	return &t, &b, nil
}

func (p *Postgres) FindTenantByLegacyDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return scanTenant(p.db.QueryRow(ctx, `
		SELECT `+tenantColumns+` FROM tenants t
		WHERE t.domain = $1
		ORDER BY t.id
		LIMIT 1`, domain))
}

func (p *Postgres) FindTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return scanTenant(p.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants t WHERE t.slug = $1`, slug))
}

func (p *Postgres) GetTenantByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	return p.GetTenant(ctx, id)
}

// Management side.

func (p *Postgres) GetTenant(ctx context.Context, tenantID int64) (*tenant.Tenant, error) {
	return scanTenant(p.db.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants t WHERE t.id = $1`, tenantID))
}

// UpsertTenant creates t or updates the tenant with the same slug. It sets
// t.ID and the timestamps.
func (p *Postgres) UpsertTenant(ctx context.Context, t *tenant.Tenant) error {
	err := p.db.QueryRow(ctx, `
		INSERT INTO tenants (slug, name, domain, status, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			domain = EXCLUDED.domain,
			status = EXCLUDED.status,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		t.Slug, t.Name, t.Domain, t.Status, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert tenant %q: %w", t.Slug, err)
	}
	return nil
}

func (p *Postgres) ListBindings(ctx context.Context, tenantID int64) ([]tenant.Binding, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+bindingColumns+` FROM tenant_domains d
		WHERE d.tenant_id = $1
		ORDER BY d.is_primary DESC, d.id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list domain bindings: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tenant.Binding, error) {
		var b tenant.Binding
		err := row.Scan(bindingFields(&b)...)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("list domain bindings: %w", err)
	}
	return list, nil
}

func (p *Postgres) GetBinding(ctx context.Context, tenantID, bindingID int64) (*tenant.Binding, error) {
	return scanBinding(p.db.QueryRow(ctx, `
		SELECT `+bindingColumns+` FROM tenant_domains d
		WHERE d.id = $1 AND d.tenant_id = $2`, bindingID, tenantID))
}

func (p *Postgres) FindBindingByDomain(ctx context.Context, domain string) (*tenant.Binding, error) {
	return scanBinding(p.db.QueryRow(ctx, `
		SELECT `+bindingColumns+` FROM tenant_domains d
		WHERE d.domain = $1`, domain))
}

func (p *Postgres) InsertBinding(ctx context.Context, b *tenant.Binding) error {
	err := p.db.QueryRow(ctx, `
		INSERT INTO tenant_domains (
			tenant_id, domain, type, is_primary, is_active, is_verified,
			verification_token, verified_at, ssl_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		b.TenantID, b.Domain, b.Type, b.IsPrimary, b.IsActive, b.IsVerified,
		b.VerificationToken, b.VerifiedAt, b.SSLStatus,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return mapWriteError(err, b.Domain)
}

func (p *Postgres) UpdateBinding(ctx context.Context, b *tenant.Binding) error {
	err := p.db.QueryRow(ctx, `
		UPDATE tenant_domains SET
			is_primary = $3,
			is_active = $4,
			is_verified = $5,
			verification_token = $6,
			verified_at = $7,
			ssl_status = $8,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`,
		b.ID, b.TenantID, b.IsPrimary, b.IsActive, b.IsVerified,
		b.VerificationToken, b.VerifiedAt, b.SSLStatus,
	).Scan(&b.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return domains.ErrDomainNotFound
	}
	return mapWriteError(err, b.Domain)
}

func (p *Postgres) ClearPrimary(ctx context.Context, tenantID, exceptID int64) error {
	_, err := p.db.Exec(ctx, `
		UPDATE tenant_domains SET is_primary = FALSE, updated_at = NOW()
		WHERE tenant_id = $1 AND is_primary AND is_active AND id <> $2`, tenantID, exceptID)
	if err != nil {
		return fmt.Errorf("clear primary domains: %w", err)
	}
	return nil
}

func (p *Postgres) CountActiveBindings(ctx context.Context, tenantID int64) (int, error) {
	var n int
	err := p.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenant_domains WHERE tenant_id = $1 AND is_active`, tenantID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active domains: %w", err)
	}
	return n, nil
}

// LockTenant takes a row lock on the tenant that is held until the
// surrounding transaction ends.
func (p *Postgres) LockTenant(ctx context.Context, tenantID int64) error {
	var id int64
	err := p.db.QueryRow(ctx, `SELECT id FROM tenants WHERE id = $1 FOR UPDATE`, tenantID).Scan(&id)
	if pg.IsNotFoundError(err) {
		return tenant.ErrTenantNotFound
	}
	if err != nil {
		return fmt.Errorf("lock tenant: %w", err)
	}
	return nil
}

// WithinTx runs fn in a transaction. Inside a transaction it creates a savepoint.
func (p *Postgres) WithinTx(ctx context.Context, fn func(tx domains.Store) error) error {
	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&Postgres{db: tx})
	})
}

var (
	_ tenant.Store  = (*Postgres)(nil)
	_ domains.Store = (*Postgres)(nil)
)

// Package pg bootstraps PostgreSQL access with pgx/v5: pool creation with
// startup retries, goose migrations from an embedded filesystem, a readiness
// probe and helpers that classify *pgconn.PgError values.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, pg.MigrateUp, log); err != nil {
//		return err
//	}
package pg

// Package db opens pgx connection pools and applies goose migrations.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, pool, kv.Migrations, "migrations", cfg.MigrationsTable, log); err != nil {
//	    return err
//	}
//
// [Healthcheck] and [Shutdown] plug into readiness probes and shutdown hooks.
package db

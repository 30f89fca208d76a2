// Package pg opens pgx connection pools with retries and applies embedded
// goose migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, migrations.FS, ".", cfg, slog.Default()); err != nil {
//	    return err
//	}
//
// Healthcheck returns a readiness probe. IsNotFoundError and
// IsDuplicateKeyError classify driver errors.
package pg

package schema

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending goose migrations from dir against the database
// described by the pgx connection string.
func Migrate(ctx context.Context, connString, dir string) error {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer func() {
		_ = db.Close()
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Wrapf(err, "apply migrations from %s", dir)
	}
	return nil
}

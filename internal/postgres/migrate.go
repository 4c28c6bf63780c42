package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies pending migrations from dir. The migration connection goes
// through pgx's database/sql adapter so there is a single postgres driver in
// the binary.
func Migrate(dsn, dir string) error {
	const op = "postgres.Migrate"

	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	db := sql.OpenDB(stdlib.GetConnector(*connCfg))
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

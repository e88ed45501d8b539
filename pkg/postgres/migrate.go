package postgres

import (
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate runs embedded goose migrations from dir inside fsys against the pool.
func (p *Postgres) Migrate(fsys fs.FS, dir string) error {
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.SetDialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.Up: %w", err)
	}

	return nil
}

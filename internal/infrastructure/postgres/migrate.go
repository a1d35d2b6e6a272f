package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reflex/inventario-api/migrations"
)

// Migrate aplica los scripts embebidos en orden. Los scripts son idempotentes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	for _, name := range names {
		script, err := migrations.FS.ReadFile(name)
		if err != nil {
			return err
		}
		// Protocolo simple: admite varias sentencias por script.
		if _, err := conn.Conn().PgConn().Exec(ctx, string(script)).ReadAll(); err != nil {
			return fmt.Errorf("migración %s: %w", name, err)
		}
	}
	return nil
}

package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the users and projects tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	// no arguments: pgx sends this over the simple protocol, so several statements are fine
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

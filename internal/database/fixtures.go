package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InstallFixtures drops and recreates a small users table in the source
// database and seeds it with one known row. Only used for testing a full
// copy end to end.
func InstallFixtures(ctx context.Context, src *DB) error {
	q := src.Dialect.QuoteIdent

	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", q("users"))
	if _, err := src.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("drop fixture table: %w", err)
	}

	idType := "CHAR(36)"
	if src.Dialect == DialectPostgres {
		idType = "UUID"
	}
	create := fmt.Sprintf(
		"CREATE TABLE %s (%s %s PRIMARY KEY, %s INTEGER, %s TEXT)",
		q("users"), q("id"), idType, q("num"), q("full_name"))
	if _, err := src.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create fixture table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s)",
		q("users"), q("id"), q("num"), q("full_name"),
		src.Dialect.Placeholder(1), src.Dialect.Placeholder(2), src.Dialect.Placeholder(3))
	if _, err := src.ExecContext(ctx, insert, uuid.NewString(), 2, "Louis de Funès"); err != nil {
		return fmt.Errorf("insert fixture row: %w", err)
	}
	return nil
}

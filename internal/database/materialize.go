package database

import (
	"context"
	"fmt"
	"strings"
)

// DestTableFor derives the destination-side definition: prefixed name,
// generic column types, no constraints, no indexes, no defaults. The
// source descriptor is not mutated.
func DestTableFor(table Table, prefix string) DestTable {
	columns := make([]Column, len(table.Columns))
	copy(columns, table.Columns)
	return DestTable{
		Name:    prefix + table.Name,
		Columns: columns,
	}
}

// Materialize ensures the destination table exists with the derived
// definition: drop it if present, then create it. Dropping first makes
// the whole pipeline safe to re-run.
func Materialize(ctx context.Context, dest *DB, table DestTable) error {
	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", dest.Dialect.QuoteIdent(table.Name))
	if _, err := dest.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("drop table %s: %w", table.Name, err)
	}

	if _, err := dest.ExecContext(ctx, createTableSQL(dest.Dialect, table)); err != nil {
		return fmt.Errorf("create table %s (%s): %w", table.Name, columnSummary(table), err)
	}
	return nil
}

func createTableSQL(d Dialect, table DestTable) string {
	defs := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		def := fmt.Sprintf("%s %s", d.QuoteIdent(col.Name), col.Generic.DDL(d))
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		d.QuoteIdent(table.Name), strings.Join(defs, ",\n\t"))
}

func columnSummary(table DestTable) string {
	parts := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		parts[i] = col.Name + " " + col.Generic.String()
	}
	return strings.Join(parts, ", ")
}

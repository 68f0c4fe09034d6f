package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Introspect reflects the full source schema: every base table, its
// columns, and the foreign-key edges between tables. Columns come back
// already genericized; the raw default expression is discarded (defaults
// such as sequence generators are source-engine-specific) and only a
// presence flag is kept. The result is in dependency order, parents
// before children.
//
// Reflection failures are fatal for the whole run; there is no
// partial-schema mode.
func Introspect(ctx context.Context, src *DB) ([]Table, error) {
	names, err := tableNames(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var tables []Table
	for _, name := range names {
		cols, err := tableColumns(ctx, src, name)
		if err != nil {
			return nil, fmt.Errorf("reflect columns of %s: %w", name, err)
		}

		fks, err := foreignKeys(ctx, src, name)
		if err != nil {
			return nil, fmt.Errorf("reflect foreign keys of %s: %w", name, err)
		}

		tables = append(tables, Table{Name: name, Columns: cols, ForeignKeys: fks})
	}

	return dependencyOrder(tables), nil
}

func tableNames(ctx context.Context, src *DB) ([]string, error) {
	var query string
	switch src.Dialect {
	case DialectPostgres:
		query = `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_type = 'BASE TABLE'
			ORDER BY table_name`
	case DialectMySQL:
		query = `
			SELECT TABLE_NAME
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_NAME`
	case DialectSQLite:
		query = `
			SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	default:
		return nil, fmt.Errorf("no introspection for dialect %s", src.Dialect)
	}

	rows, err := src.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func tableColumns(ctx context.Context, src *DB, tableName string) ([]Column, error) {
	if src.Dialect == DialectSQLite {
		return sqliteColumns(ctx, src, tableName)
	}

	var query string
	switch src.Dialect {
	case DialectPostgres:
		query = `
			SELECT column_name, data_type,
			       COALESCE(character_maximum_length, 0),
			       COALESCE(numeric_precision, 0),
			       COALESCE(numeric_scale, 0),
			       is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			ORDER BY ordinal_position`
	case DialectMySQL:
		query = `
			SELECT COLUMN_NAME, DATA_TYPE,
			       COALESCE(CHARACTER_MAXIMUM_LENGTH, 0),
			       COALESCE(NUMERIC_PRECISION, 0),
			       COALESCE(NUMERIC_SCALE, 0),
			       IS_NULLABLE, COLUMN_DEFAULT
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`
	}

	rows, err := src.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var length, precision, scale int
		var isNullable string
		var defaultValue sql.NullString
		if err := rows.Scan(&col.Name, &col.SourceType, &length, &precision, &scale,
			&isNullable, &defaultValue); err != nil {
			return nil, err
		}

		col.Nullable = isNullable == "YES"
		col.HasDefault = defaultValue.Valid
		col.Generic = genericizeColumn(src.Dialect, tableName, col, length, precision, scale)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func sqliteColumns(ctx context.Context, src *DB, tableName string) ([]Column, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", src.Dialect.QuoteIdent(tableName))
	rows, err := src.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var cid, notNull, pk int
		var col Column
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &col.Name, &col.SourceType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col.Nullable = notNull == 0
		col.HasDefault = defaultValue.Valid
		// SQLite reports the full declared type ("VARCHAR(512)"); any
		// length/precision is parsed out of it.
		col.Generic = genericizeColumn(src.Dialect, tableName, col, 0, 0, 0)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// genericizeColumn is the explicit post-reflection pass that replaces the
// raw dialect type with its portable equivalent. A type with no portable
// equivalent is logged and carried through opaque; the run continues.
func genericizeColumn(d Dialect, tableName string, col Column, length, precision, scale int) GenericType {
	generic := Genericize(d, col.SourceType, length, precision, scale)
	if generic.IsOpaque() {
		slog.Warn("no generic type, keeping source type",
			"table", tableName, "column", col.Name, "type", col.SourceType)
	} else {
		slog.Debug("reflected type",
			"table", tableName, "column", col.Name,
			"previous", col.SourceType, "new", generic.String())
	}
	return generic
}

func foreignKeys(ctx context.Context, src *DB, tableName string) ([]ForeignKey, error) {
	switch src.Dialect {
	case DialectPostgres:
		return postgresForeignKeys(ctx, src, tableName)
	case DialectMySQL:
		return mysqlForeignKeys(ctx, src, tableName)
	case DialectSQLite:
		return sqliteForeignKeys(ctx, src, tableName)
	}
	return nil, nil
}

func postgresForeignKeys(ctx context.Context, src *DB, tableName string) ([]ForeignKey, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT tc.constraint_name, kcu.column_name,
		       ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.constraint_schema = kcu.constraint_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.constraint_schema = ccu.constraint_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = 'public'
		AND tc.table_name = $1`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanForeignKeys(rows)
}

func mysqlForeignKeys(ctx context.Context, src *DB, tableName string) ([]ForeignKey, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT CONSTRAINT_NAME, COLUMN_NAME,
		       REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		AND REFERENCED_TABLE_NAME IS NOT NULL`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanForeignKeys(rows)
}

func sqliteForeignKeys(ctx context.Context, src *DB, tableName string) ([]ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", src.Dialect.QuoteIdent(tableName))
	rows, err := src.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, matchBy string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matchBy); err != nil {
			return nil, err
		}
		fks = append(fks, ForeignKey{
			ConstraintName: fmt.Sprintf("fk_%s_%d", tableName, id),
			Column:         from,
			RefTable:       refTable,
			RefColumn:      to.String,
		})
	}
	return fks, rows.Err()
}

func scanForeignKeys(rows *sql.Rows) ([]ForeignKey, error) {
	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.ConstraintName, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// progressInterval is how often the copier logs a progress line, in rows.
const progressInterval = 1000

// CopyTable streams every row of the source table into the destination
// table and returns the number of rows copied.
//
// The read side iterates the driver's result cursor row by row; lib/pq
// and go-sql-driver/mysql deliver rows incrementally over the wire, so
// memory stays flat regardless of table size. A driver that materializes
// the result up front would still copy correctly, only less frugally.
//
// The write side inserts row by row through a prepared statement inside a
// transaction that is committed and reopened every batchSize rows; columns
// map by name, not position. On an insert failure the current batch is
// rolled back but previously committed batches remain at the destination —
// there is no whole-table rollback.
func CopyTable(ctx context.Context, source, dest *DB, table Table, destTable DestTable, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	log := slog.With("table", table.Name)

	selectCols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		selectCols[i] = source.Dialect.QuoteIdent(col.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(selectCols, ", "), source.Dialect.QuoteIdent(table.Name))

	rows, err := source.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", table.Name, err)
	}
	defer rows.Close()

	// Resolve the read order against the destination columns by name, so
	// a reordering between source and generic schema cannot misalign
	// values.
	readCols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	insertCols := make([]string, len(readCols))
	placeholders := make([]string, len(readCols))
	for i, name := range readCols {
		found := false
		for _, col := range destTable.Columns {
			if col.Name == name {
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("source column %s.%s has no destination column", table.Name, name)
		}
		insertCols[i] = dest.Dialect.QuoteIdent(name)
		placeholders[i] = dest.Dialect.Placeholder(i + 1)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dest.Dialect.QuoteIdent(destTable.Name),
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "))

	tx, err := dest.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	values := make([]any, len(readCols))
	valuePtrs := make([]any, len(readCols))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	var count int64
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("scan row from %s: %w", table.Name, err)
		}

		for i, v := range values {
			values[i] = convertValue(dest.Dialect, v)
		}

		if _, err := stmt.Exec(values...); err != nil {
			tx.Rollback()
			return count, fmt.Errorf("insert into %s after %d rows: %w", destTable.Name, count, err)
		}
		count++

		if count%progressInterval == 0 {
			log.Info("inserted", "n", count)
		}

		if count%int64(batchSize) == 0 {
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return count, fmt.Errorf("commit batch into %s: %w", destTable.Name, err)
			}
			// Cancellation checkpoint between batches.
			if err := ctx.Err(); err != nil {
				return count, err
			}
			tx, err = dest.BeginTx(ctx, nil)
			if err != nil {
				return count, err
			}
			stmt, err = tx.PrepareContext(ctx, insertSQL)
			if err != nil {
				tx.Rollback()
				return count, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		tx.Rollback()
		return count, fmt.Errorf("read %s: %w", table.Name, err)
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit into %s: %w", destTable.Name, err)
	}
	return count, nil
}

// convertValue adapts driver values the destination engine cannot take
// as-is. SQLite has no boolean affinity, and text columns scanned as raw
// bytes insert more usefully as strings.
func convertValue(dest Dialect, v any) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case bool:
		if dest != DialectSQLite && dest != DialectMySQL {
			return val
		}
		if val {
			return 1
		}
		return 0
	case []byte:
		if utf8.Valid(val) && !strings.ContainsRune(string(val), 0) {
			return string(val)
		}
		return val
	default:
		return val
	}
}

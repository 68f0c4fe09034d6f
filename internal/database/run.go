package database

import (
	"context"
	"fmt"
	"log/slog"
)

// Runner drives one copy run: introspect the source once, then for each
// table materialize its mirror at the destination and stream the rows
// across. Tables are processed strictly one at a time.
type Runner struct {
	Source *DB
	Dest   *DB
	Config Config
}

// NewRunner wires a runner from open handles and plain configuration.
func NewRunner(source, dest *DB, cfg Config) *Runner {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Runner{Source: source, Dest: dest, Config: cfg}
}

// Run executes the copy. By default it stops at the first table failure,
// leaving the partially migrated destination easy to diagnose; with
// KeepGoing it records the failure and moves on to the next table, and the
// failures come back in the Summary.
//
// A non-nil error means the run aborted (source unreachable, reflection
// failed, or a table failed in stop-on-first-error mode). A nil error with
// a non-empty Summary.Failures means the run completed with per-table
// failures in keep-going mode.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	tables, err := Introspect(ctx, r.Source)
	if err != nil {
		return summary, fmt.Errorf("introspect source: %w", err)
	}
	summary.Tables = len(tables)

	for _, table := range reverseTables(tables) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rows, err := r.copyOne(ctx, table)
		if err != nil {
			if !r.Config.KeepGoing {
				return summary, fmt.Errorf("table %s: %w", table.Name, err)
			}
			slog.Error("table failed, continuing", "table", table.Name, "error", err)
			summary.Failures = append(summary.Failures, TableError{Table: table.Name, Err: err})
			continue
		}

		summary.TablesCopied++
		summary.Rows += rows
	}

	return summary, nil
}

func (r *Runner) copyOne(ctx context.Context, table Table) (int64, error) {
	log := slog.With("table", table.Name)

	destTable := DestTableFor(table, r.Config.Prefix)
	if err := Materialize(ctx, r.Dest, destTable); err != nil {
		return 0, err
	}
	log.Info("created table", "dest", destTable.Name)

	rows, err := CopyTable(ctx, r.Source, r.Dest, table, destTable, r.Config.BatchSize)
	if err != nil {
		return 0, err
	}
	log.Info("copied table", "dest", destTable.Name, "rows", rows)
	return rows, nil
}

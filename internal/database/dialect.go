package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/xo/dburl"
)

// Dialect identifies one supported engine family.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectMySQL
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	}
	return "unknown"
}

// DB pairs an open connection with the dialect it speaks. All core
// components take a *DB instead of a bare *sql.DB so they can pick the
// right introspection queries, quoting, and placeholder style.
type DB struct {
	*sql.DB
	Dialect Dialect
}

func dialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlite3", "sqlite":
		return DialectSQLite, nil
	}
	return 0, fmt.Errorf("unsupported driver %q", driver)
}

// DialectFromURL classifies a connection URL without opening it.
func DialectFromURL(urlstr string) (Dialect, error) {
	u, err := dburl.Parse(urlstr)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}
	return dialectForDriver(u.Driver)
}

// QuoteIdent quotes an identifier for this dialect.
func (d Dialect) QuoteIdent(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the bind-parameter marker for position i (1-based).
func (d Dialect) Placeholder(i int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

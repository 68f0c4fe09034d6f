package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
)

// Open connects to the engine named by the URL scheme and verifies the
// connection with a ping bounded by timeout. It fails explicitly rather
// than hanging past the timeout.
func Open(ctx context.Context, urlstr string, timeout time.Duration) (*DB, error) {
	u, err := dburl.Parse(urlstr)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	dialect, err := dialectForDriver(u.Driver)
	if err != nil {
		return nil, err
	}

	db, err := dburl.Open(urlstr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestTableFor(t *testing.T) {
	src := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", SourceType: "uuid", Generic: GenericType{Kind: KindChar, Length: 36}},
			{Name: "num", SourceType: "integer", Generic: GenericType{Kind: KindInteger}, Nullable: true},
		},
		ForeignKeys: []ForeignKey{{Column: "group_id", RefTable: "groups"}},
	}

	dt := DestTableFor(src, "dbin_")
	assert.Equal(t, "dbin_users", dt.Name)
	require.Len(t, dt.Columns, 2)
	assert.Equal(t, "id", dt.Columns[0].Name)

	// The derived descriptor is a copy; mutating it must not touch the
	// source descriptor.
	dt.Columns[0].Name = "mutated"
	assert.Equal(t, "id", src.Columns[0].Name)
}

func TestCreateTableSQL(t *testing.T) {
	dt := DestTable{
		Name: "dbin_users",
		Columns: []Column{
			{Name: "id", Generic: GenericType{Kind: KindChar, Length: 36}},
			{Name: "full_name", Generic: GenericType{Kind: KindVarChar, Length: 512}, Nullable: true},
		},
	}

	sql := createTableSQL(DialectPostgres, dt)
	assert.Contains(t, sql, `CREATE TABLE "dbin_users"`)
	assert.Contains(t, sql, `"id" CHAR(36) NOT NULL`)
	assert.Contains(t, sql, `"full_name" VARCHAR(512)`)

	// Constraints and indexes are deliberately absent.
	for _, kw := range []string{"PRIMARY KEY", "REFERENCES", "UNIQUE", "DEFAULT", "INDEX"} {
		assert.NotContains(t, sql, kw)
	}

	sql = createTableSQL(DialectMySQL, dt)
	assert.Contains(t, sql, "CREATE TABLE `dbin_users`")
	assert.Contains(t, sql, "`id` CHAR(36) NOT NULL")
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dest := newSQLiteDB(t)

	dt := DestTable{
		Name: "dbin_users",
		Columns: []Column{
			{Name: "id", Generic: GenericType{Kind: KindChar, Length: 36}},
			{Name: "num", Generic: GenericType{Kind: KindInteger}, Nullable: true},
		},
	}

	require.NoError(t, Materialize(ctx, dest, dt))

	// A second run must drop and recreate, even after the first table
	// accumulated rows.
	_, err := dest.ExecContext(ctx, `INSERT INTO "dbin_users" ("id", "num") VALUES ('x', 1)`)
	require.NoError(t, err)
	require.NoError(t, Materialize(ctx, dest, dt))

	var n int
	require.NoError(t, dest.QueryRowContext(ctx, `SELECT COUNT(*) FROM "dbin_users"`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMaterializeReplacesDifferentShape(t *testing.T) {
	ctx := context.Background()
	dest := newSQLiteDB(t)

	_, err := dest.ExecContext(ctx, `CREATE TABLE "dbin_users" (old_col TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	dt := DestTable{
		Name:    "dbin_users",
		Columns: []Column{{Name: "id", Generic: GenericType{Kind: KindChar, Length: 36}}},
	}
	require.NoError(t, Materialize(ctx, dest, dt))

	var ddl string
	require.NoError(t, dest.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE name = 'dbin_users'`).Scan(&ddl))
	assert.Contains(t, ddl, "id")
	assert.False(t, strings.Contains(ddl, "old_col"))
	assert.False(t, strings.Contains(ddl, "PRIMARY KEY"))
}

package database

import "time"

// Config holds everything one copy run needs. It is assembled by the CLI
// layer (flags, env, config file) and passed in as plain values.
type Config struct {
	SourceURL      string
	DestURL        string
	Prefix         string
	BatchSize      int
	ConnectTimeout time.Duration
	KeepGoing      bool

	// SSH tunnel to reach a firewalled source, optional.
	SSHKey  string
	SSHUser string
	SSHHost string
	SSHPort int
}

// DefaultPrefix is prepended to every mirrored table's name at the
// destination.
const DefaultPrefix = "dbin_"

// DefaultBatchSize is the number of rows copied per destination
// transaction.
const DefaultBatchSize = 1000

// DefaultConnectTimeout bounds how long connection establishment may take
// before the run fails fast.
const DefaultConnectTimeout = 10 * time.Second

// Column describes one source column after genericization. SourceType is
// the dialect-specific type tag as reported by the source; Generic is the
// portable type actually used to build the destination column. A column is
// never materialized with its raw source type.
type Column struct {
	Name       string
	SourceType string
	Generic    GenericType
	Nullable   bool
	HasDefault bool
}

// ForeignKey is one outbound reference edge. It is used only to compute
// the table processing order and is never materialized at the destination.
type ForeignKey struct {
	ConstraintName string
	Column         string
	RefTable       string
	RefColumn      string
}

// Table is a source table descriptor. Column order matters: it fixes the
// destination column order. Descriptors are read-only once produced by
// Introspect.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// DestTable is the derived destination-side definition: prefixed name,
// generic column types, and deliberately no constraints or indexes so the
// table is creatable independent of any other table's presence.
type DestTable struct {
	Name    string
	Columns []Column
}

// TableError records a per-table failure collected in keep-going mode.
type TableError struct {
	Table string
	Err   error
}

// Summary reports what one run did.
type Summary struct {
	Tables       int
	TablesCopied int
	Rows         int64
	Failures     []TableError
}

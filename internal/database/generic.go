package database

import (
	"fmt"
	"strconv"
	"strings"
)

// GenericKind is the closed set of portable column types. Anything the
// mapping tables below do not recognize becomes KindOpaque, which carries
// the raw source type text unchanged.
type GenericKind int

const (
	KindVarChar GenericKind = iota
	KindChar
	KindText
	KindSmallInt
	KindInteger
	KindBigInt
	KindDecimal
	KindFloat
	KindDouble
	KindBoolean
	KindBinary
	KindTimestamp
	KindDate
	KindTime
	KindOpaque
)

// DefaultVarCharLength is assigned to variable-length character columns
// whose source declares no length. Destination engines commonly reject an
// unbounded VARCHAR, so a bound is required; 512 matches the reference
// behavior (an earlier revision used 500).
const DefaultVarCharLength = 512

// UUIDStringLength is the canonical textual UUID representation.
const UUIDStringLength = 36

// GenericType is a portable column type description independent of any one
// engine's dialect.
type GenericType struct {
	Kind      GenericKind
	Length    int
	Precision int
	Scale     int
	Raw       string // set only for KindOpaque
}

// Genericize maps a dialect-specific column type to its portable
// equivalent. It never fails: a type with no portable equivalent comes
// back as KindOpaque so the caller can log it and carry on; the eventual
// destination DDL may then be rejected, which is the accepted trade-off.
func Genericize(d Dialect, rawType string, length, precision, scale int) GenericType {
	base, args := splitTypeArgs(rawType)
	if length == 0 && len(args) > 0 {
		length = args[0]
	}
	if precision == 0 && len(args) > 0 {
		precision = args[0]
	}
	if scale == 0 && len(args) > 1 {
		scale = args[1]
	}

	switch base {
	case "uuid":
		return GenericType{Kind: KindChar, Length: UUIDStringLength}
	case "character varying", "varchar", "varchar2", "nvarchar", "character_varying":
		if length <= 0 {
			length = DefaultVarCharLength
		}
		return GenericType{Kind: KindVarChar, Length: length}
	case "character", "char", "bpchar", "nchar":
		if length <= 0 {
			length = 1
		}
		return GenericType{Kind: KindChar, Length: length}
	case "text", "tinytext", "mediumtext", "longtext", "clob", "json", "jsonb":
		return GenericType{Kind: KindText}
	case "smallint", "int2", "tinyint":
		return GenericType{Kind: KindSmallInt}
	case "integer", "int", "int4", "mediumint", "serial":
		return GenericType{Kind: KindInteger}
	case "bigint", "int8", "bigserial":
		return GenericType{Kind: KindBigInt}
	case "numeric", "decimal":
		return GenericType{Kind: KindDecimal, Precision: precision, Scale: scale}
	case "real", "float4", "float":
		return GenericType{Kind: KindFloat}
	case "double precision", "float8", "double":
		return GenericType{Kind: KindDouble}
	case "boolean", "bool":
		return GenericType{Kind: KindBoolean}
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return GenericType{Kind: KindBinary}
	case "timestamp", "timestamp without time zone", "timestamp with time zone",
		"timestamptz", "datetime":
		return GenericType{Kind: KindTimestamp}
	case "date":
		return GenericType{Kind: KindDate}
	case "time", "time without time zone", "time with time zone":
		return GenericType{Kind: KindTime}
	}

	return GenericType{Kind: KindOpaque, Raw: rawType}
}

// DDL renders the type for the destination engine's CREATE TABLE.
func (g GenericType) DDL(dest Dialect) string {
	switch g.Kind {
	case KindVarChar:
		return fmt.Sprintf("VARCHAR(%d)", g.Length)
	case KindChar:
		return fmt.Sprintf("CHAR(%d)", g.Length)
	case KindText:
		return "TEXT"
	case KindSmallInt:
		return "SMALLINT"
	case KindInteger:
		return "INTEGER"
	case KindBigInt:
		return "BIGINT"
	case KindDecimal:
		if g.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", g.Precision, g.Scale)
		}
		if dest == DialectMySQL {
			// MySQL defaults DECIMAL to (10,0); be explicit about a wide one.
			return "DECIMAL(65,30)"
		}
		return "DECIMAL"
	case KindFloat:
		if dest == DialectMySQL {
			return "FLOAT"
		}
		return "REAL"
	case KindDouble:
		switch dest {
		case DialectPostgres:
			return "DOUBLE PRECISION"
		case DialectMySQL:
			return "DOUBLE"
		default:
			return "REAL"
		}
	case KindBoolean:
		if dest == DialectMySQL {
			return "TINYINT(1)"
		}
		return "BOOLEAN"
	case KindBinary:
		if dest == DialectPostgres {
			return "BYTEA"
		}
		return "BLOB"
	case KindTimestamp:
		if dest == DialectPostgres {
			return "TIMESTAMP"
		}
		return "DATETIME"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	}
	return g.Raw
}

func (g GenericType) String() string {
	if g.Kind == KindOpaque {
		return "opaque(" + g.Raw + ")"
	}
	return g.DDL(DialectPostgres)
}

// IsOpaque reports whether genericization fell back to the raw source
// type.
func (g GenericType) IsOpaque() bool { return g.Kind == KindOpaque }

// splitTypeArgs takes a declared type like "VARCHAR(512)" or
// "DECIMAL(10,2)" and returns the lowercased base name and any numeric
// arguments. SQLite reports declared types this way; the server engines
// report base name and lengths separately.
func splitTypeArgs(rawType string) (string, []int) {
	s := strings.ToLower(strings.TrimSpace(rawType))
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil
	}
	end := strings.LastIndexByte(s, ')')
	if end < open {
		return s, nil
	}
	base := strings.TrimSpace(s[:open])
	var args []int
	for _, part := range strings.Split(s[open+1:end], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return base, nil
		}
		args = append(args, n)
	}
	return base, args
}

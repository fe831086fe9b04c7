package schema

// ColumnKind identifies a declared column type. Kinds serialize into
// snapshots as plain strings, so these values must stay stable across
// releases even as the set grows.
type ColumnKind string

const (
	KindID            ColumnKind = "Id"
	KindString        ColumnKind = "String"
	KindText          ColumnKind = "Text"
	KindInt           ColumnKind = "Int"
	KindBigInt        ColumnKind = "BigInt"
	KindFloat         ColumnKind = "Float"
	KindBoolean       ColumnKind = "Boolean"
	KindTimestamp     ColumnKind = "Timestamp"
	KindUnixTimestamp ColumnKind = "UnixTimestamp"
	KindDate          ColumnKind = "Date"
	KindJSON          ColumnKind = "Json"
	KindUUID          ColumnKind = "Uuid"
	KindForeign       ColumnKind = "Foreign"
)

// ColumnType describes the declared type of a column. MaxLen is meaningful
// only for String kinds, References only for Foreign kinds.
type ColumnType struct {
	Kind       ColumnKind
	MaxLen     int
	References string
}

// ID is an auto-incrementing integer primary key.
func ID() ColumnType { return ColumnType{Kind: KindID} }

// String is a bounded variable-length string. A maxLen of zero or less
// falls back to 255.
func String(maxLen int) ColumnType {
	if maxLen <= 0 {
		maxLen = 255
	}
	return ColumnType{Kind: KindString, MaxLen: maxLen}
}

// Text is an unbounded string.
func Text() ColumnType { return ColumnType{Kind: KindText} }

// Int is a 32-bit integer.
func Int() ColumnType { return ColumnType{Kind: KindInt} }

// BigInt is a 64-bit integer.
func BigInt() ColumnType { return ColumnType{Kind: KindBigInt} }

// Float is a double-precision floating point number.
func Float() ColumnType { return ColumnType{Kind: KindFloat} }

// Boolean is a true/false flag.
func Boolean() ColumnType { return ColumnType{Kind: KindBoolean} }

// Timestamp is a date-and-time value in database-native form.
func Timestamp() ColumnType { return ColumnType{Kind: KindTimestamp} }

// UnixTimestamp is a date-and-time value stored as epoch seconds.
func UnixTimestamp() ColumnType { return ColumnType{Kind: KindUnixTimestamp} }

// Date is a calendar date without a time component.
func Date() ColumnType { return ColumnType{Kind: KindDate} }

// JSON is a structured document column.
func JSON() ColumnType { return ColumnType{Kind: KindJSON} }

// UUID is a universally unique identifier column.
func UUID() ColumnType { return ColumnType{Kind: KindUUID} }

// Foreign is an integer foreign key referencing the id column of another
// table.
func Foreign(table string) ColumnType {
	return ColumnType{Kind: KindForeign, References: table}
}

// DefaultKind identifies which default expression a column carries.
type DefaultKind string

const (
	DefaultString   DefaultKind = "String"
	DefaultInt      DefaultKind = "Int"
	DefaultFloat    DefaultKind = "Float"
	DefaultBool     DefaultKind = "Bool"
	DefaultNow      DefaultKind = "Now"
	DefaultUnixNow  DefaultKind = "UnixNow"
	DefaultAutoUUID DefaultKind = "AutoUuid"
	DefaultNull     DefaultKind = "Null"
)

// Default is a declared column default. Exactly one payload field is
// meaningful, selected by Kind.
type Default struct {
	Kind  DefaultKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// StringDefault is a literal string default.
func StringDefault(v string) *Default { return &Default{Kind: DefaultString, Str: v} }

// IntDefault is a literal integer default.
func IntDefault(v int64) *Default { return &Default{Kind: DefaultInt, Int: v} }

// FloatDefault is a literal float default.
func FloatDefault(v float64) *Default { return &Default{Kind: DefaultFloat, Float: v} }

// BoolDefault is a literal boolean default.
func BoolDefault(v bool) *Default { return &Default{Kind: DefaultBool, Bool: v} }

// NowDefault defaults to the database-current timestamp.
func NowDefault() *Default { return &Default{Kind: DefaultNow} }

// UnixNowDefault defaults to the current time as epoch seconds.
func UnixNowDefault() *Default { return &Default{Kind: DefaultUnixNow} }

// AutoUUIDDefault defaults to a database-generated UUIDv4.
func AutoUUIDDefault() *Default { return &Default{Kind: DefaultAutoUUID} }

// NullDefault defaults explicitly to NULL.
func NullDefault() *Default { return &Default{Kind: DefaultNull} }

// Column is one declared column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool

	// Default is nil when the column declares no default.
	Default *Default

	// RenamedFrom marks this column as a rename of an existing column. The
	// marker is consumed by exactly one diff cycle; the schema definition is
	// expected to drop it once the rename migration has been generated.
	RenamedFrom string
}

// Table is the in-memory representation of one declared table. Column order
// is the declaration order and is preserved through diffing and generation.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column and whether the table declares it.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames returns the declared column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

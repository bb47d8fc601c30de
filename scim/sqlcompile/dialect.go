// Package sqlcompile walks a filter AST and emits a parameterized WHERE
// clause over the data_orig/data_norm JSON columns. The two
// supported backends differ only in JSON access syntax and placeholder
// style; that difference is isolated behind the Dialect interface.
package sqlcompile

// Dialect isolates the backend-specific behaviors the compiler and the
// storage layer's statements need: placeholder style, JSON text
// extraction, iterating a JSON array for an EXISTS sub-query, and the
// literal a JSON boolean extracts to.
type Dialect interface {
	// Placeholder returns the parameter marker for the nth (1-based) bound value.
	Placeholder(n int) string
	// JSONText extracts a text value from column at the dotted pointer path.
	JSONText(column string, segs []string) string
	// ExistsOverArray builds "EXISTS (SELECT 1 FROM <column, pointer elements> AS alias WHERE innerWhere)".
	ExistsOverArray(column string, segs []string, alias, innerWhere string) string
	// ElementText extracts a text sub-field from an array element bound to alias (inside an ExistsOverArray block).
	ElementText(alias string, segs []string) string
	// BoolText is the literal a JSON boolean extracts to: quoted text for
	// Postgres's #>> operator, bare 1/0 for SQLite's json_extract.
	BoolText(v bool) string
}

// Package dbschema guards the SQL identifiers this server computes at
// runtime. Tenant-scoped table names (t{tenantId}_users, ...) are built by
// string interpolation rather than bound parameters, so every fragment that
// reaches a query string must first pass ValidateIdentifier.
package dbschema

import (
	"fmt"
	"regexp"
	"strings"
)

// maxIdentifierLen matches the Postgres identifier limit; SQLite is more
// permissive but the stricter bound applies to both backends.
const maxIdentifierLen = 63

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateIdentifier reports whether name is safe to interpolate into a
// query string as (part of) a table or index name: starts with a letter or
// underscore, contains only letters, digits, and underscores, and fits the
// identifier length limit.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier must not be empty")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("identifier too long (max %d characters): %s", maxIdentifierLen, name)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier (must start with letter/underscore, contain only letters/digits/underscores): %s", name)
	}
	return nil
}

// QuoteIdentifier double-quotes an identifier for interpolation into SQL
// text. Postgres and SQLite both use double quotes, with embedded quotes
// doubled.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

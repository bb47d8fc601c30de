// Package storage implements the per-tenant relational backend:
// idempotent tenant table creation, transactional resource writes with
// membership maintenance, duplicate-name detection, and read-path hydration.
package storage

import (
	"github.com/scimhub/core/scim/sqlcompile"
)

// Kind selects which of the two supported SQL backends a Backend drives.
// The two dialects differ in exactly three places: identifier/JSON access
// syntax, placeholder style, and DDL type/index syntax.
type Kind string

const (
	Postgres Kind = "postgres"
	SQLite   Kind = "sqlite"
)

// FilterDialect returns the sqlcompile.Dialect matching k, for compiling
// SCIM filter ASTs into this backend's WHERE-clause syntax.
func FilterDialect(k Kind) sqlcompile.Dialect {
	if k == Postgres {
		return sqlcompile.Postgres{}
	}
	return sqlcompile.SQLite{}
}

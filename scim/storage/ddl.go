package storage

import (
	"context"
	"fmt"
)

// EnsureTenant idempotently creates tenantID's three tables and their
// indexes: LOWER(display_name), external_id, created_at, and — where
// supported — a GIN index on the normalized JSON column.
func (b *Backend) EnsureTenant(ctx context.Context, tenantID string) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}

	for _, stmt := range b.ddlStatements(tenantID) {
		if _, err := b.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("storage: ensure tenant %s: %w", tenantID, err)
		}
	}
	return nil
}

func (b *Backend) ddlStatements(tenantID string) []string {
	users := quoteIdent(usersTable(tenantID))
	groups := quoteIdent(groupsTable(tenantID))
	memberships := quoteIdent(membershipsTable(tenantID))

	jsonType := "jsonb"
	timestampType := "timestamptz"
	if b.Kind == SQLite {
		jsonType = "text"
		timestampType = "timestamp"
	}

	resourceTable := func(name string) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id varchar(20) PRIMARY KEY,
	external_id text NOT NULL DEFAULT '',
	display_name text NOT NULL,
	version integer NOT NULL DEFAULT 1,
	created_at %s NOT NULL,
	updated_at %s NOT NULL,
	data_orig %s NOT NULL,
	data_norm %s NOT NULL
)`, name, timestampType, timestampType, jsonType, jsonType)
	}

	stmts := []string{
		resourceTable(users),
		resourceTable(groups),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	group_id varchar(20) NOT NULL,
	member_id varchar(20) NOT NULL,
	member_type text NOT NULL,
	PRIMARY KEY (group_id, member_id)
)`, memberships),
	}

	stmts = append(stmts,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (external_id)`, quoteIdent(usersTable(tenantID)+"_ext_idx"), users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at)`, quoteIdent(usersTable(tenantID)+"_created_idx"), users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (external_id)`, quoteIdent(groupsTable(tenantID)+"_ext_idx"), groups),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at)`, quoteIdent(groupsTable(tenantID)+"_created_idx"), groups),
	)

	switch b.Kind {
	case Postgres:
		stmts = append(stmts,
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (LOWER(display_name))`, quoteIdent(usersTable(tenantID)+"_name_lower_idx"), users),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (LOWER(display_name))`, quoteIdent(groupsTable(tenantID)+"_name_lower_idx"), groups),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (data_norm)`, quoteIdent(usersTable(tenantID)+"_norm_gin_idx"), users),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (data_norm)`, quoteIdent(groupsTable(tenantID)+"_norm_gin_idx"), groups),
		)
	case SQLite:
		stmts = append(stmts,
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (display_name COLLATE NOCASE)`, quoteIdent(usersTable(tenantID)+"_name_lower_idx"), users),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (display_name COLLATE NOCASE)`, quoteIdent(groupsTable(tenantID)+"_name_lower_idx"), groups),
		)
	}

	return stmts
}

// DropTenant removes all three of tenantID's tables, discarding all of
// its resource data.
func (b *Backend) DropTenant(ctx context.Context, tenantID string) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	for _, name := range []string{usersTable(tenantID), groupsTable(tenantID), membershipsTable(tenantID)} {
		if _, err := b.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
			return fmt.Errorf("storage: drop tenant %s: %w", tenantID, err)
		}
	}
	return nil
}

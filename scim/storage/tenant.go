package storage

import (
	"fmt"

	"github.com/scimhub/core/internal/dbschema"
)

// validateTenantID guards the tenant fragment before it is interpolated
// into a table name: the longest table name built from it must be a valid
// identifier, so only letters, digits, and underscores may pass. A purely
// numeric tenant id such as "1" is accepted, since its tables start with "t".
func validateTenantID(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id must not be empty")
	}
	if err := dbschema.ValidateIdentifier(membershipsTable(tenantID)); err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", tenantID, err)
	}
	return nil
}

func usersTable(tenantID string) string       { return "t" + tenantID + "_users" }
func groupsTable(tenantID string) string      { return "t" + tenantID + "_groups" }
func membershipsTable(tenantID string) string { return "t" + tenantID + "_group_memberships" }

// quoteIdent quotes a validated identifier for interpolation into DDL/DML
// that bun's query builder has no placeholder form for (table names).
func quoteIdent(name string) string {
	return dbschema.QuoteIdentifier(name)
}

func tableForResourceType(resourceType, tenantID string) string {
	if resourceType == "Group" {
		return groupsTable(tenantID)
	}
	return usersTable(tenantID)
}

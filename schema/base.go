// Package schema defines the bun row models stored per tenant. Table names
// are computed per tenant at query time (t{tenantId}_users, ...) and applied
// via ModelTableExpr, so the models carry no meaningful table tag of their
// own.
package schema

import "time"

// ResourceRow is the structured-column shell shared by the users and groups
// tables. DataOrig/DataNorm hold the case-preserved and case-folded JSON
// documents; the remaining columns exist for uniqueness checks, sorting,
// and indexing without touching JSON. DisplayName holds userName for users
// and displayName for groups, so both resource types share one indexed
// uniqueness column.
type ResourceRow struct {
	ID          string    `bun:"id,pk,type:varchar(20)"`
	ExternalID  string    `bun:"external_id"`
	DisplayName string    `bun:"display_name,notnull"`
	Version     int       `bun:"version,notnull,default:1"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DataOrig    []byte    `bun:"data_orig,type:jsonb,notnull"`
	DataNorm    []byte    `bun:"data_norm,type:jsonb,notnull"`
}

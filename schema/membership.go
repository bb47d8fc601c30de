package schema

import (
	"github.com/uptrace/bun"
)

// MembershipRow is the per-tenant "t{tenantId}_group_memberships" row: one
// row per (group, member) edge. MemberType is "User" or "Group" so a group
// can contain another group.
type MembershipRow struct {
	bun.BaseModel `bun:"table:group_memberships"`

	GroupID    string `bun:"group_id,pk"`
	MemberID   string `bun:"member_id,pk"`
	MemberType string `bun:"member_type,notnull"`
}

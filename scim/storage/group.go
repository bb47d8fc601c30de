package storage

import (
	"context"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/schema"
	"github.com/scimhub/core/scim/resource"
	"github.com/uptrace/bun"
)

// member is one parsed entry of a Group's members array.
type member struct {
	Value string
	Type  string // "User" or "Group"
}

func extractMembers(doc map[string]any) []member {
	raw, _ := doc["members"].([]any)
	out := make([]member, 0, len(raw))
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		value, _ := m["value"].(string)
		if value == "" {
			continue
		}
		typ, _ := m["type"].(string)
		if typ == "" {
			typ = "User"
		}
		out = append(out, member{Value: value, Type: typ})
	}
	return out
}

// CreateGroup persists a prepared Group document and its member rows —
// resource insert, membership delete-all, membership insert-all — in one
// transaction.
func (b *Backend) CreateGroup(ctx context.Context, tenantID string, doc map[string]any) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	table := groupsTable(tenantID)
	members := extractMembers(doc)

	row, err := b.buildRow(resource.Groups, doc)
	if err != nil {
		return err
	}

	return b.logWriteError("create", "Group", tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dup, err := duplicateExists(ctx, tx, table, row.DisplayName, "")
		if err != nil {
			return errs.Database(err)
		}
		if dup {
			return errs.Uniqueness("Group already exists")
		}

		if _, err := tx.NewInsert().Model(row).ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).Exec(ctx); err != nil {
			return mapWriteError(err, "Group")
		}

		return replaceMembers(ctx, tx, tenantID, row.ID, members)
	}))
}

// UpdateGroup overwrites an existing Group row and fully replaces its
// membership rows, under optimistic concurrency.
func (b *Backend) UpdateGroup(ctx context.Context, tenantID, id string, expectedVersion int, doc map[string]any) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	table := groupsTable(tenantID)
	members := extractMembers(doc)

	row, err := b.buildRow(resource.Groups, doc)
	if err != nil {
		return err
	}
	row.ID = id

	return b.logWriteError("update", "Group", tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dup, err := duplicateExists(ctx, tx, table, row.DisplayName, id)
		if err != nil {
			return errs.Database(err)
		}
		if dup {
			return errs.Uniqueness("Group already exists")
		}

		current, _, err := getResourceTx(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if expectedVersion > 0 && current.Version != expectedVersion {
			return errs.PreconditionFailed("If-Match version does not match the current resource version")
		}

		_, err = tx.NewUpdate().
			Model(row).
			ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
			Column("external_id", "display_name", "version", "updated_at", "data_orig", "data_norm").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return mapWriteError(err, "Group")
		}

		return replaceMembers(ctx, tx, tenantID, id, members)
	}))
}

func replaceMembers(ctx context.Context, tx bun.Tx, tenantID, groupID string, members []member) error {
	membershipsT := membershipsTable(tenantID)

	if _, err := tx.NewDelete().
		Model((*schema.MembershipRow)(nil)).
		ModelTableExpr("?", bun.Ident(membershipsT)).
		Where("group_id = ?", groupID).
		Exec(ctx); err != nil {
		return errs.Database(err)
	}

	if len(members) == 0 {
		return nil
	}

	rows := make([]schema.MembershipRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, schema.MembershipRow{GroupID: groupID, MemberID: m.Value, MemberType: m.Type})
	}
	if _, err := tx.NewInsert().
		Model(&rows).
		ModelTableExpr("?", bun.Ident(membershipsT)).
		Exec(ctx); err != nil {
		return errs.Database(err)
	}
	return nil
}

// DeleteGroup removes both directions of membership (this group as parent,
// this group as a nested member of another group) plus its own row, in one
// transaction.
func (b *Backend) DeleteGroup(ctx context.Context, tenantID, id string) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	groupsT := groupsTable(tenantID)
	membershipsT := membershipsTable(tenantID)

	return b.logWriteError("delete", "Group", tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*schema.MembershipRow)(nil)).
			ModelTableExpr("?", bun.Ident(membershipsT)).
			Where("group_id = ?", id).
			Exec(ctx); err != nil {
			return errs.Database(err)
		}
		if _, err := tx.NewDelete().
			Model((*schema.MembershipRow)(nil)).
			ModelTableExpr("?", bun.Ident(membershipsT)).
			Where("member_id = ? AND member_type = 'Group'", id).
			Exec(ctx); err != nil {
			return errs.Database(err)
		}
		return b.deleteRow(ctx, tx, groupsT, id)
	}))
}

// GetGroup reads a Group by id and hydrates its members array from the
// membership table, joined against whichever of users/groups the member
// type names.
func (b *Backend) GetGroup(ctx context.Context, tenantID, id string) (map[string]any, int, error) {
	doc, version, err := b.getResource(ctx, "Group", tenantID, id)
	if err != nil {
		return nil, 0, err
	}

	members, err := b.hydrateMembers(ctx, tenantID, id)
	if err != nil {
		return nil, 0, err
	}
	doc["members"] = members
	return doc, version, nil
}

func (b *Backend) hydrateMembers(ctx context.Context, tenantID, groupID string) ([]any, error) {
	type row struct {
		MemberID    string `bun:"member_id"`
		MemberType  string `bun:"member_type"`
		DisplayName string `bun:"display_name"`
	}

	membershipsT := membershipsTable(tenantID)
	usersT := usersTable(tenantID)
	groupsT := groupsTable(tenantID)

	// A user member's display prefers its displayName attribute, then the
	// formatted name, then given+family, then the userName column; a group
	// member's display is its displayName. The joined row is NULL on the
	// side the member type doesn't match, so one COALESCE covers both.
	d := FilterDialect(b.Kind)
	userDisplay := "COALESCE(" +
		d.JSONText("u.data_orig", []string{"displayName"}) + ", " +
		d.JSONText("u.data_orig", []string{"name", "formatted"}) + ", " +
		d.JSONText("u.data_orig", []string{"name", "givenName"}) + " || ' ' || " +
		d.JSONText("u.data_orig", []string{"name", "familyName"}) + ", " +
		"u.display_name)"

	q := `
		SELECT m.member_id AS member_id, m.member_type AS member_type,
		       COALESCE(` + userDisplay + `, g.display_name) AS display_name
		FROM ` + quoteIdent(membershipsT) + ` m
		LEFT JOIN ` + quoteIdent(usersT) + ` u ON u.id = m.member_id AND m.member_type = 'User'
		LEFT JOIN ` + quoteIdent(groupsT) + ` g ON g.id = m.member_id AND m.member_type = 'Group'
		WHERE m.group_id = ?
	`

	var rows []row
	if err := b.DB.NewRaw(q, groupID).Scan(ctx, &rows); err != nil {
		return nil, errs.Database(err)
	}

	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"value":   r.MemberID,
			"type":    r.MemberType,
			"display": r.DisplayName,
			"$ref":    "/" + tenantID + "/" + plural(r.MemberType) + "/" + r.MemberID,
		})
	}
	return out, nil
}

func plural(resourceType string) string {
	if resourceType == "Group" {
		return "Groups"
	}
	return "Users"
}

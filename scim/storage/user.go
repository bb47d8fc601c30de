package storage

import (
	"context"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/schema"
	"github.com/scimhub/core/scim/resource"
	"github.com/uptrace/bun"
)

// CreateUser persists a prepared User document.
func (b *Backend) CreateUser(ctx context.Context, tenantID string, doc map[string]any) error {
	return b.createResource(ctx, resource.Users, tenantID, doc)
}

// UpdateUser overwrites an existing User row under optimistic concurrency.
func (b *Backend) UpdateUser(ctx context.Context, tenantID, id string, expectedVersion int, doc map[string]any) error {
	return b.updateResource(ctx, resource.Users, tenantID, id, expectedVersion, doc)
}

// DeleteUser removes a user's membership rows and its own row in one
// transaction.
func (b *Backend) DeleteUser(ctx context.Context, tenantID, id string) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	usersT := usersTable(tenantID)
	membershipsT := membershipsTable(tenantID)

	return b.logWriteError("delete", "User", tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*schema.MembershipRow)(nil)).
			ModelTableExpr("?", bun.Ident(membershipsT)).
			Where("member_id = ? AND member_type = 'User'", id).
			Exec(ctx); err != nil {
			return errs.Database(err)
		}
		return b.deleteRow(ctx, tx, usersT, id)
	}))
}

// GetUser reads a User by id. When hydrateGroups is true, the read-only
// groups back-reference is populated from the membership table.
func (b *Backend) GetUser(ctx context.Context, tenantID, id string, hydrateGroups bool) (map[string]any, int, error) {
	doc, version, err := b.getResource(ctx, "User", tenantID, id)
	if err != nil {
		return nil, 0, err
	}
	if hydrateGroups {
		groups, err := b.userGroupBackrefs(ctx, tenantID, id)
		if err != nil {
			return nil, 0, err
		}
		doc["groups"] = groups
	}
	return doc, version, nil
}

func (b *Backend) userGroupBackrefs(ctx context.Context, tenantID, userID string) ([]any, error) {
	type row struct {
		GroupID     string `bun:"group_id"`
		DisplayName string `bun:"display_name"`
	}

	membershipsT := membershipsTable(tenantID)
	groupsT := groupsTable(tenantID)

	var rows []row
	q := `
		SELECT m.group_id AS group_id, g.display_name AS display_name
		FROM ` + quoteIdent(membershipsT) + ` m
		JOIN ` + quoteIdent(groupsT) + ` g ON g.id = m.group_id
		WHERE m.member_id = ? AND m.member_type = 'User'
	`
	if err := b.DB.NewRaw(q, userID).Scan(ctx, &rows); err != nil {
		return nil, errs.Database(err)
	}

	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"value":   r.GroupID,
			"display": r.DisplayName,
			"type":    "direct",
		})
	}
	return out, nil
}

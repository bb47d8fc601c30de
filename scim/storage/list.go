package storage

import (
	"context"
	"regexp"
	"strings"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/scim/filter"
	"github.com/scimhub/core/scim/resource"
	"github.com/scimhub/core/scim/sqlcompile"
	"github.com/uptrace/bun"
)

// ListOptions carries the query-parameter knobs of a list/search request:
// filter, pagination, and sort order.
type ListOptions struct {
	Filter         filter.Expr
	StartIndex     int // 1-based; < 1 treated as 1
	Count          int // clamped to [0, 1000]; 0 with no explicit value means "use default"
	CountSet       bool
	SortBy         string
	SortDescending bool
}

const (
	defaultCount = 100
	maxCount     = 1000
)

func (o ListOptions) effectiveLimitOffset() (limit, offset int) {
	count := o.Count
	if !o.CountSet {
		count = defaultCount
	}
	if count < 0 {
		count = 0
	}
	if count > maxCount {
		count = maxCount
	}

	startIndex := o.StartIndex
	if startIndex < 1 {
		startIndex = 1
	}

	return count, startIndex - 1
}

// Page is one page of a list/search result.
type Page struct {
	Resources    []map[string]any
	TotalResults int
	StartIndex   int
	ItemsPerPage int
}

func (b *Backend) sortExpr(resourceType, sortBy string) string {
	if sortBy == "" {
		return "created_at"
	}
	if col, ok := sqlcompile.StructuredColumn(resourceType, sortBy); ok {
		if col == "display_name" || col == "external_id" {
			return "LOWER(" + col + ")"
		}
		return col
	}

	// Fallback: textual sort over the case-preserved document. Values sort
	// as lowercased strings even for numeric/boolean attributes.
	jsonDialect := FilterDialect(b.Kind)
	segs := strings.Split(sortBy, ".")
	return "LOWER(" + jsonDialect.JSONText("data_orig", segs) + ")"
}

// pgParams finds the compiler's Postgres-native $n markers. bun's query
// templating binds arguments at "?" regardless of backend, so compiled
// fragments are rewritten before being handed to a bun query. Parameters
// are bound in emission order, so positional substitution preserves the
// argument pairing.
var pgParams = regexp.MustCompile(`\$\d+`)

func bunBindable(where string) string {
	return pgParams.ReplaceAllString(where, "?")
}

func (b *Backend) listResources(ctx context.Context, d resource.Descriptor, tenantID string, opts ListOptions) (*Page, error) {
	if err := validateTenantID(tenantID); err != nil {
		return nil, err
	}
	table := tableForResourceType(d.ResourceType, tenantID)

	q := b.DB.NewSelect().
		Model((*resourceRow)(nil)).
		ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r"))

	if opts.Filter != nil {
		where, args, err := sqlcompile.Compile(d.ResourceType, opts.Filter, b.Catalog, FilterDialect(b.Kind))
		if err != nil {
			return nil, err
		}
		q = q.Where(bunBindable(where), args...)
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, errs.Database(err)
	}

	limit, offset := opts.effectiveLimitOffset()
	direction := "ASC"
	if opts.SortDescending {
		direction = "DESC"
	}

	var rows []resourceRow
	err = q.Model(&rows).
		OrderExpr(b.sortExpr(d.ResourceType, opts.SortBy) + " " + direction).
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, errs.Database(err)
	}

	docs := make([]map[string]any, 0, len(rows))
	for i := range rows {
		doc, err := rowToDoc(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return &Page{Resources: docs, TotalResults: total, StartIndex: offset + 1, ItemsPerPage: len(docs)}, nil
}

// ListUsers runs a filtered, sorted, paginated search over a tenant's
// users. hydrateGroups mirrors GetUser's back-reference knob.
func (b *Backend) ListUsers(ctx context.Context, tenantID string, opts ListOptions, hydrateGroups bool) (*Page, error) {
	page, err := b.listResources(ctx, resource.Users, tenantID, opts)
	if err != nil {
		return nil, err
	}
	if hydrateGroups {
		for _, doc := range page.Resources {
			id, _ := doc["id"].(string)
			groups, err := b.userGroupBackrefs(ctx, tenantID, id)
			if err != nil {
				return nil, err
			}
			doc["groups"] = groups
		}
	}
	return page, nil
}

// ListGroups runs a filtered, sorted, paginated search over a tenant's
// groups, hydrating each group's members array.
func (b *Backend) ListGroups(ctx context.Context, tenantID string, opts ListOptions) (*Page, error) {
	page, err := b.listResources(ctx, resource.Groups, tenantID, opts)
	if err != nil {
		return nil, err
	}
	for _, doc := range page.Resources {
		id, _ := doc["id"].(string)
		members, err := b.hydrateMembers(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		doc["members"] = members
	}
	return page, nil
}

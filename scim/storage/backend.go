package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/schema"
	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/resource"
	"github.com/uptrace/bun"
)

// Backend is the per-tenant relational store. One Backend
// serves every tenant on a given SQL connection; tenant isolation is table
// naming, not a separate connection or schema.
type Backend struct {
	DB      *bun.DB
	Kind    Kind
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// New builds a Backend over an already-connected bun.DB.
func New(db *bun.DB, kind Kind, cat *catalog.Catalog) *Backend {
	return &Backend{DB: db, Kind: kind, Catalog: cat, Logger: slog.Default()}
}

// logWriteError records a failed write with enough context to trace it;
// the error itself still propagates to the caller untouched.
func (b *Backend) logWriteError(op, resourceType, tenantID string, err error) error {
	if err != nil {
		b.Logger.Warn("write failed",
			"op", op, "resourceType", resourceType, "tenant", tenantID, "error", err)
	}
	return err
}

// resourceRow is the structured-column shape shared by the users and
// groups tables; per-tenant table naming is applied per query via
// ModelTableExpr rather than baked into the model's bun tag.
type resourceRow struct {
	bun.BaseModel `bun:"table:resources,alias:r"`
	schema.ResourceRow
}

func rowToDoc(row *resourceRow) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(row.DataOrig, &doc); err != nil {
		return nil, errs.Internal("corrupt stored document", err)
	}
	return doc, nil
}

func (b *Backend) buildRow(d resource.Descriptor, doc map[string]any) (*resourceRow, error) {
	id, _ := doc["id"].(string)
	externalID, _ := doc["externalId"].(string)
	unique, _ := doc[d.UniqueAttr].(string)

	meta, _ := doc["meta"].(map[string]any)
	version := parseWeakETag(stringField(meta, "version"))
	createdAt := parseMetaTime(meta["created"])
	updatedAt := parseMetaTime(meta["lastModified"])
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	storageDoc := resource.StorageDoc(doc)
	orig, norm, err := resource.NormalizedJSON(d.ResourceType, storageDoc, b.Catalog)
	if err != nil {
		return nil, errs.Internal("failed to serialize resource", err)
	}

	return &resourceRow{
		ResourceRow: schema.ResourceRow{
			ID:          id,
			ExternalID:  externalID,
			DisplayName: unique,
			Version:     version,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
			DataOrig:    orig,
			DataNorm:    norm,
		},
	}, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

var weakETagDigits = regexp.MustCompile(`\d+`)

func parseWeakETag(tag string) int {
	m := weakETagDigits.FindString(tag)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 1
	}
	return n
}

func parseMetaTime(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Now().UTC()
}

// duplicateExists checks the case-insensitive uniqueness invariant within
// the same transaction as the write.
func duplicateExists(ctx context.Context, tx bun.Tx, table, name, excludeID string) (bool, error) {
	q := tx.NewSelect().
		Model((*resourceRow)(nil)).
		ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
		Where("LOWER(display_name) = LOWER(?)", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	n, err := q.Count(ctx)
	return n > 0, err
}

// mapWriteError translates a database-level unique-constraint collision
// into the same error the application-level duplicate check produces,
// catching any race the pre-check missed.
func mapWriteError(err error, resourceType string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return errs.Uniqueness(resourceType + " already exists")
	}
	return errs.Database(err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// createResource inserts a new resource row for either descriptor,
// duplicate-checked within the same transaction.
func (b *Backend) createResource(ctx context.Context, d resource.Descriptor, tenantID string, doc map[string]any) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	table := tableForResourceType(d.ResourceType, tenantID)

	row, err := b.buildRow(d, doc)
	if err != nil {
		return err
	}

	return b.logWriteError("create", d.ResourceType, tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dup, err := duplicateExists(ctx, tx, table, row.DisplayName, "")
		if err != nil {
			return errs.Database(err)
		}
		if dup {
			return errs.Uniqueness(d.ResourceType + " already exists")
		}

		_, err = tx.NewInsert().Model(row).ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).Exec(ctx)
		if err != nil {
			return mapWriteError(err, d.ResourceType)
		}
		return nil
	}))
}

// updateResource overwrites an existing row, enforcing optimistic
// concurrency when expectedVersion > 0.
func (b *Backend) updateResource(ctx context.Context, d resource.Descriptor, tenantID, id string, expectedVersion int, doc map[string]any) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}
	table := tableForResourceType(d.ResourceType, tenantID)

	row, err := b.buildRow(d, doc)
	if err != nil {
		return err
	}
	row.ID = id

	return b.logWriteError("update", d.ResourceType, tenantID, b.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dup, err := duplicateExists(ctx, tx, table, row.DisplayName, id)
		if err != nil {
			return errs.Database(err)
		}
		if dup {
			return errs.Uniqueness(d.ResourceType + " already exists")
		}

		current, _, err := getResourceTx(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if expectedVersion > 0 && current.Version != expectedVersion {
			return errs.PreconditionFailed("If-Match version does not match the current resource version")
		}

		q := tx.NewUpdate().
			Model(row).
			ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
			Column("external_id", "display_name", "version", "updated_at", "data_orig", "data_norm").
			Where("id = ?", id)
		_, err = q.Exec(ctx)
		if err != nil {
			return mapWriteError(err, d.ResourceType)
		}
		return nil
	}))
}

func getResourceTx(ctx context.Context, tx bun.Tx, table, id string) (*resourceRow, map[string]any, error) {
	row := new(resourceRow)
	err := tx.NewSelect().
		Model(row).
		ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil, errs.NotFound("resource", id)
		}
		return nil, nil, errs.Database(err)
	}
	doc, err := rowToDoc(row)
	if err != nil {
		return nil, nil, err
	}
	return row, doc, nil
}

// getResource reads one row outside a transaction (read path).
func (b *Backend) getResource(ctx context.Context, resourceType, tenantID, id string) (map[string]any, int, error) {
	if err := validateTenantID(tenantID); err != nil {
		return nil, 0, err
	}
	table := tableForResourceType(resourceType, tenantID)

	row := new(resourceRow)
	err := b.DB.NewSelect().
		Model(row).
		ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, 0, errs.NotFound(resourceType, id)
		}
		return nil, 0, errs.Database(err)
	}

	doc, err := rowToDoc(row)
	if err != nil {
		return nil, 0, err
	}
	return doc, row.Version, nil
}

func (b *Backend) deleteRow(ctx context.Context, tx bun.Tx, table, id string) error {
	res, err := tx.NewDelete().
		Model((*resourceRow)(nil)).
		ModelTableExpr("? AS ?", bun.Ident(table), bun.Ident("r")).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errs.Database(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.NotFound(table, id)
	}
	return nil
}

package resource

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/scimhub/core/internal/crypto"
	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/internal/validator"
	"github.com/scimhub/core/scim/catalog"
)

// MetaDateTimeFormat selects how meta.created/meta.lastModified render:
// RFC3339 timestamps or epoch-millisecond strings.
type MetaDateTimeFormat string

const (
	MetaFormatRFC3339 MetaDateTimeFormat = "rfc3339"
	MetaFormatEpoch   MetaDateTimeFormat = "epoch"
)

// Engine runs the create/update/patch/delete lifecycle for both
// descriptors, sharing validation, id/meta assignment, and password
// handling through one pipeline.
type Engine struct {
	Catalog    *catalog.Catalog
	Passwords  *crypto.Manager
	Now        func() time.Time
	MetaFormat MetaDateTimeFormat
	Logger     *slog.Logger
}

// NewEngine builds an Engine with production defaults.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{
		Catalog:    cat,
		Passwords:  crypto.DefaultManager(),
		Now:        time.Now,
		MetaFormat: MetaFormatRFC3339,
		Logger:     slog.Default(),
	}
}

func (e *Engine) formatTime(t time.Time) string {
	if e.MetaFormat == MetaFormatEpoch {
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// PrepareCreate validates doc, assigns a fresh id (ignoring any
// client-supplied one), stamps meta.created/meta.lastModified, and hashes
// a password field if present.
func (e *Engine) PrepareCreate(d Descriptor, doc map[string]any) (map[string]any, error) {
	if err := Validate(d, doc); err != nil {
		e.Logger.Debug("create rejected", "resourceType", d.ResourceType, "error", err)
		return nil, err
	}

	if err := EnforceSinglePrimary(d.ResourceType, doc, e.Catalog); err != nil {
		return nil, err
	}

	id := xid.New().String()
	doc["id"] = id

	now := e.Now()
	meta, _ := doc["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["resourceType"] = d.ResourceType
	meta["created"] = e.formatTime(now)
	meta["lastModified"] = e.formatTime(now)
	meta["version"] = `W/"1"`
	doc["meta"] = meta

	if err := e.hashPassword(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// PrepareUpdate validates doc for a PUT/PATCH-result body, forces the body
// id to match the path id, bumps meta.lastModified and version, and hashes
// any new password value.
func (e *Engine) PrepareUpdate(d Descriptor, id string, version int, doc map[string]any) (map[string]any, error) {
	if err := Validate(d, doc); err != nil {
		e.Logger.Debug("update rejected", "resourceType", d.ResourceType, "id", id, "error", err)
		return nil, err
	}

	if err := EnforceSinglePrimary(d.ResourceType, doc, e.Catalog); err != nil {
		return nil, err
	}

	doc["id"] = id

	now := e.Now()
	meta, _ := doc["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["resourceType"] = d.ResourceType
	meta["lastModified"] = e.formatTime(now)
	meta["version"] = `W/"` + strconv.Itoa(version) + `"`
	doc["meta"] = meta

	if err := e.hashPassword(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (e *Engine) hashPassword(doc map[string]any) error {
	pw, ok := doc["password"].(string)
	if !ok || pw == "" {
		return nil
	}

	if !e.Passwords.IsHashed(pw) {
		if ok, msg := validator.ValidatePassword(pw, validator.DefaultPasswordRequirements()); !ok {
			return errs.InvalidValue(msg)
		}
	}

	stored, err := e.Passwords.Prepare(pw)
	if err != nil {
		return errs.Internal("password hashing failed", err)
	}

	doc["password"] = stored
	return nil
}

// StripPassword removes the password field from a response body —
// passwords are write-only and never echoed back.
func StripPassword(doc map[string]any) map[string]any {
	delete(doc, "password")
	return doc
}

// EnforceSinglePrimary applies the primary-attribute invariant to every
// multi-valued attribute in doc: at most one element has primary=true.
func EnforceSinglePrimary(resourceType string, doc map[string]any, cat *catalog.Catalog) error {
	for k, v := range doc {
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		attr, _ := cat.Lookup(resourceType, k)
		if !attr.MultiValued {
			continue
		}

		seenPrimary := false
		for _, el := range arr {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			if p, ok := m["primary"].(bool); ok && p {
				if seenPrimary {
					m["primary"] = false
				} else {
					seenPrimary = true
				}
			}
		}
	}
	return nil
}

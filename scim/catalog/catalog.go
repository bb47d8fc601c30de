// Package catalog holds the static, process-lifetime description of the
// User, Group, and EnterpriseUser schemas. Every other
// component — normalizer, filter compiler, patch engine, projection —
// consults it rather than hard-coding attribute lists.
package catalog

import "strings"

// Type is the SCIM attribute data type.
type Type string

const (
	TypeString    Type = "string"
	TypeBoolean   Type = "boolean"
	TypeInteger   Type = "integer"
	TypeDecimal   Type = "decimal"
	TypeDateTime  Type = "dateTime"
	TypeReference Type = "reference"
	TypeComplex   Type = "complex"
)

// Mutability constrains who can set an attribute and when.
type Mutability string

const (
	MutabilityReadOnly  Mutability = "readOnly"
	MutabilityReadWrite Mutability = "readWrite"
	MutabilityImmutable Mutability = "immutable"
	MutabilityWriteOnly Mutability = "writeOnly"
)

// Returned controls whether an attribute is included in responses by default.
type Returned string

const (
	ReturnedAlways  Returned = "always"
	ReturnedNever   Returned = "never"
	ReturnedDefault Returned = "default"
	ReturnedRequest Returned = "request"
)

// Uniqueness describes the scope over which an attribute's value must be unique.
type Uniqueness string

const (
	UniquenessNone   Uniqueness = "none"
	UniquenessServer Uniqueness = "server"
	UniquenessGlobal Uniqueness = "global"
)

// Attribute is one entry of a schema, possibly carrying sub-attributes for
// complex (and multi-valued complex) types.
type Attribute struct {
	Name          string
	Type          Type
	MultiValued   bool
	Required      bool
	CaseExact     bool
	Mutability    Mutability
	Returned      Returned
	Uniqueness    Uniqueness
	SubAttributes []Attribute
}

func (a Attribute) subAttr(name string) (Attribute, bool) {
	for _, s := range a.SubAttributes {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Attribute{}, false
}

// Schema is a full SCIM schema: a URN plus its top-level attributes.
type Schema struct {
	ID         string
	Name       string
	Attributes []Attribute
}

func (s Schema) attr(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Attribute{}, false
}

// unknownAttribute is returned by Lookup for any path the catalog has no
// entry for: case-insensitive, single-valued, readWrite, default-returned —
// the default treatment for unrecognized custom attributes.
var unknownAttribute = Attribute{
	Type:       TypeString,
	CaseExact:  false,
	Mutability: MutabilityReadWrite,
	Returned:   ReturnedDefault,
	Uniqueness: UniquenessNone,
}

// Catalog is the process-lifetime, read-only schema table.
type Catalog struct {
	schemas map[string]Schema
	byName  map[string]Schema // "User", "Group" -> core schema, for unqualified lookups
}

// New builds the catalog with the built-in User, Group, and EnterpriseUser
// schemas. It never mutates after construction.
func New() *Catalog {
	c := &Catalog{schemas: map[string]Schema{}, byName: map[string]Schema{}}
	for _, s := range []Schema{userSchema(), groupSchema(), enterpriseUserSchema(), metaSchema()} {
		c.schemas[s.ID] = s
		c.byName[s.Name] = s
	}
	return c
}

// SchemaByURN returns the schema registered under a full URN.
func (c *Catalog) SchemaByURN(urn string) (Schema, bool) {
	s, ok := c.schemas[urn]
	return s, ok
}

// SchemaByName returns the schema registered for an unqualified resource
// type name ("User", "Group").
func (c *Catalog) SchemaByName(name string) (Schema, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Lookup resolves a dotted attribute path (optionally schema-URN-qualified,
// e.g. "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User:manager.value")
// against resourceType's schema plus the resource's extensions. Missing
// attributes return unknownAttribute, false — "no information".
func (c *Catalog) Lookup(resourceType, path string) (Attribute, bool) {
	schemaName := resourceType
	rest := path

	if idx := strings.LastIndex(path, ":"); idx >= 0 {
		urn := path[:idx]
		rest = path[idx+1:]
		if s, ok := c.schemas[urn]; ok {
			return c.lookupIn(s, rest)
		}
		// Unknown URN prefix: fall through treating the whole thing as unknown.
		return unknownAttribute, false
	}

	if sub, ok := strings.CutPrefix(strings.ToLower(rest), "meta."); ok {
		if meta, ok := c.byName["Meta"]; ok {
			return c.lookupIn(meta, sub)
		}
	}

	s, ok := c.byName[schemaName]
	if !ok {
		return unknownAttribute, false
	}

	found, ok := c.lookupIn(s, rest)
	if ok {
		return found, true
	}

	// Core schema didn't have it; consult EnterpriseUser as an implicit
	// extension of User the way unqualified "employeeNumber" etc. resolve
	// in practice.
	if resourceType == "User" {
		if ext, ok := c.schemas[enterpriseUserURN]; ok {
			if found, ok := c.lookupIn(ext, rest); ok {
				return found, true
			}
		}
	}

	return unknownAttribute, false
}

func (c *Catalog) lookupIn(s Schema, dotted string) (Attribute, bool) {
	segs := strings.Split(dotted, ".")
	attr, ok := s.attr(segs[0])
	if !ok {
		return unknownAttribute, false
	}

	for _, seg := range segs[1:] {
		attr, ok = attr.subAttr(seg)
		if !ok {
			return unknownAttribute, false
		}
	}

	return attr, true
}

// CaseExact is the single authority for "does this attribute's string value
// compare case-sensitively" — normalizer, filter compiler, duplicate-name check, and sort key
// all call this instead of hard-coding attribute lists.
func (c *Catalog) CaseExact(resourceType, path string) bool {
	attr, _ := c.Lookup(resourceType, path)
	return attr.CaseExact
}

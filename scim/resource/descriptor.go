// Package resource implements the resource lifecycle engine:
// validation, id/meta assignment, password hashing, and finalization for
// create/update/patch/delete, shared across User and Group through one
// descriptor-parameterized pipeline.
package resource

// Descriptor captures what differs between the User and Group pipelines:
// the resource type name, its core schema URN, and the attribute that is
// unique per tenant.
type Descriptor struct {
	ResourceType string // "User" or "Group"
	SchemaURN    string
	UniqueAttr   string // "userName" for User, "displayName" for Group
}

// MaxMultiValuedElements bounds any single multi-valued attribute array,
// a DoS-shaped guard against unbounded request bodies.
const MaxMultiValuedElements = 20

// MaxFormattedNameRunes bounds name.formatted.
const MaxFormattedNameRunes = 256

// Users is the built-in User descriptor.
var Users = Descriptor{ResourceType: "User", SchemaURN: "urn:ietf:params:scim:schemas:core:2.0:User", UniqueAttr: "userName"}

// Groups is the built-in Group descriptor.
var Groups = Descriptor{ResourceType: "Group", SchemaURN: "urn:ietf:params:scim:schemas:core:2.0:Group", UniqueAttr: "displayName"}

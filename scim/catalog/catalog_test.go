package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_CoreAttribute(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", "userName")
	assert.True(t, ok)
	assert.Equal(t, Uniqueness("server"), attr.Uniqueness)
	assert.False(t, attr.CaseExact)
}

func TestLookup_DottedSubAttribute(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", "name.givenName")
	assert.True(t, ok)
	assert.Equal(t, TypeString, attr.Type)
}

func TestLookup_MultiValuedSubAttribute(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", "emails.value")
	assert.True(t, ok)
	assert.False(t, attr.CaseExact)
}

func TestLookup_UnknownReturnsDefaultShape(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", "customWidget")
	assert.False(t, ok)
	assert.False(t, attr.CaseExact)
	assert.False(t, attr.MultiValued)
}

func TestLookup_EnterpriseImplicitExtension(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", "employeeNumber")
	assert.True(t, ok)
	assert.Equal(t, TypeString, attr.Type)
}

func TestLookup_SchemaQualifiedPath(t *testing.T) {
	c := New()

	attr, ok := c.Lookup("User", EnterpriseUserURN+":manager.value")
	assert.True(t, ok)
	assert.True(t, attr.CaseExact)
}

func TestCaseExact_IDIsCaseExact(t *testing.T) {
	c := New()
	assert.True(t, c.CaseExact("User", "id"))
	assert.False(t, c.CaseExact("User", "userName"))
}

func TestCaseExact_PhotosValueIsCaseExact(t *testing.T) {
	c := New()
	assert.True(t, c.CaseExact("User", "photos.value"))
}

func TestSchemaByURN(t *testing.T) {
	c := New()
	s, ok := c.SchemaByURN(GroupURN)
	assert.True(t, ok)
	assert.Equal(t, "Group", s.Name)
}

package sqlcompile

import (
	"testing"

	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, resourceType, f string, d Dialect) (string, []any) {
	t.Helper()
	expr, err := filter.Parse(f)
	require.NoError(t, err)

	where, args, err := Compile(resourceType, expr, catalog.New(), d)
	require.NoError(t, err)
	return where, args
}

func TestCompile_StructuredColumnID(t *testing.T) {
	where, args := compile(t, "User", `id eq "abc"`, Postgres{})
	assert.Equal(t, `id = $1`, where)
	assert.Equal(t, []any{"abc"}, args)
}

func TestCompile_UserNameMapsToDisplayNameColumn(t *testing.T) {
	where, args := compile(t, "User", `userName eq "Alice"`, Postgres{})
	assert.Equal(t, `LOWER(display_name) = $1`, where)
	assert.Equal(t, []any{"alice"}, args)
}

func TestCompile_CaseInsensitiveUsesDataNorm(t *testing.T) {
	where, args := compile(t, "User", `displayName eq "Alice"`, Postgres{})
	assert.Contains(t, where, "data_norm")
	assert.Equal(t, []any{"alice"}, args)
}

func TestCompile_CaseExactBindsValueVerbatim(t *testing.T) {
	where, args := compile(t, "User", `externalId eq "AbC"`, Postgres{})
	assert.Equal(t, "external_id = $1", where)
	assert.Equal(t, []any{"AbC"}, args)
}

func TestCompile_ContainsUsesLike(t *testing.T) {
	where, args := compile(t, "User", `displayName co "ali"`, Postgres{})
	assert.Contains(t, where, "LIKE")
	assert.Equal(t, []any{"%ali%"}, args)
}

func TestCompile_ComplexAttributeExists(t *testing.T) {
	where, args := compile(t, "User", `emails[type eq "work" and value co "@acme"]`, Postgres{})
	assert.Contains(t, where, "EXISTS")
	assert.Contains(t, where, "jsonb_array_elements")
	assert.Equal(t, []any{"work", "%@acme%"}, args)
}

func TestCompile_MultiValuedDottedShortcut(t *testing.T) {
	where, _ := compile(t, "User", `emails.value co "@acme"`, Postgres{})
	assert.Contains(t, where, "EXISTS")
}

func TestCompile_SQLiteDialectUsesJSONEach(t *testing.T) {
	where, _ := compile(t, "User", `emails[type eq "work"]`, SQLite{})
	assert.Contains(t, where, "json_each")
	assert.Contains(t, where, "?")
}

func TestCompile_BooleanCompare(t *testing.T) {
	where, args := compile(t, "User", `active eq true`, Postgres{})
	assert.Contains(t, where, "'true'")
	assert.Empty(t, args)
}

func TestCompile_NumberCompare(t *testing.T) {
	where, args := compile(t, "User", `age gt 21`, Postgres{})
	assert.Contains(t, where, "CAST")
	assert.Equal(t, []any{float64(21)}, args)
}

func TestCompile_BareMultiValuedProjectsFirstValue(t *testing.T) {
	where, _ := compile(t, "User", `emails eq "a@x.com"`, Postgres{})
	assert.Contains(t, where, "{emails,0,value}")
}

func TestCompile_SQLiteBooleanUsesNumericLiteral(t *testing.T) {
	where, args := compile(t, "User", `active eq true`, SQLite{})
	assert.Contains(t, where, "= 1")
	assert.Empty(t, args)
}

func TestCompile_PresentAttribute(t *testing.T) {
	where, _ := compile(t, "User", `title pr`, Postgres{})
	assert.Contains(t, where, "IS NOT NULL")
}

func TestCompile_AndOrNot(t *testing.T) {
	where, _ := compile(t, "User", `not (active eq true) and title pr`, Postgres{})
	assert.Contains(t, where, "NOT")
	assert.Contains(t, where, "AND")
}

func TestCompile_CrossOracleAgreesWithInMemoryEval(t *testing.T) {
	exprText := `emails[type eq "work" and value co "@acme"]`
	expr, err := filter.Parse(exprText)
	require.NoError(t, err)

	matching := map[string]any{
		"emails": []any{
			map[string]any{"type": "work", "value": "alice@acme.com"},
		},
	}
	notMatching := map[string]any{
		"emails": []any{
			map[string]any{"type": "home", "value": "alice@acme.com"},
		},
	}

	assert.True(t, filter.Eval(expr, matching))
	assert.False(t, filter.Eval(expr, notMatching))

	// The SQL side compiles without error for the same AST — asserting the
	// WHERE fragment shape is the SQL half of the oracle; true cross-oracle
	// execution equivalence is exercised against a live SQLite connection
	// in scim/storage's tests.
	where, args, err := Compile("User", expr, catalog.New(), SQLite{})
	require.NoError(t, err)
	assert.NotEmpty(t, where)
	assert.Equal(t, []any{"work", "%@acme%"}, args)
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Expr {
	t.Helper()
	expr, err := Parse(s)
	require.NoError(t, err)
	return expr
}

func TestEval_SimpleCompare(t *testing.T) {
	doc := map[string]any{"userName": "Alice"}

	assert.True(t, Eval(mustParse(t, `userName eq "alice"`), doc))
	assert.True(t, Eval(mustParse(t, `userName co "lic"`), doc))
	assert.False(t, Eval(mustParse(t, `userName eq "bob"`), doc))
}

func TestEval_AbsentAttribute(t *testing.T) {
	doc := map[string]any{"userName": "alice"}

	assert.False(t, Eval(mustParse(t, `title eq "x"`), doc))
	assert.True(t, Eval(mustParse(t, `title ne "x"`), doc))
	assert.False(t, Eval(mustParse(t, `title pr`), doc))
}

func TestEval_PresentOnEmptyValue(t *testing.T) {
	doc := map[string]any{"title": ""}
	assert.False(t, Eval(mustParse(t, `title pr`), doc))

	doc["title"] = "Engineer"
	assert.True(t, Eval(mustParse(t, `title pr`), doc))
}

func TestEval_BoolAndNumber(t *testing.T) {
	doc := map[string]any{"active": true, "age": float64(30)}

	assert.True(t, Eval(mustParse(t, `active eq true`), doc))
	assert.False(t, Eval(mustParse(t, `active eq false`), doc))
	assert.True(t, Eval(mustParse(t, `age gt 21`), doc))
	assert.False(t, Eval(mustParse(t, `age lt 21`), doc))
}

func TestEval_ComplexOverMultiValued(t *testing.T) {
	doc := map[string]any{
		"emails": []any{
			map[string]any{"type": "work", "value": "a@acme.com"},
			map[string]any{"type": "home", "value": "a@example.com"},
		},
	}

	assert.True(t, Eval(mustParse(t, `emails[type eq "work" and value co "@acme"]`), doc))
	assert.False(t, Eval(mustParse(t, `emails[type eq "home" and value co "@acme"]`), doc))
}

func TestEval_DottedPathFansOutOverArray(t *testing.T) {
	doc := map[string]any{
		"emails": []any{
			map[string]any{"value": "a@acme.com"},
			map[string]any{"value": "b@example.com"},
		},
	}

	// Must agree with the EXISTS form the SQL compiler emits for the same
	// shortcut path.
	assert.True(t, Eval(mustParse(t, `emails.value co "@acme"`), doc))
	assert.True(t, Eval(mustParse(t, `emails.value co "@example"`), doc))
	assert.False(t, Eval(mustParse(t, `emails.value co "@other"`), doc))
}

func TestEval_DottedPathThroughComplexAttribute(t *testing.T) {
	doc := map[string]any{
		"name": map[string]any{"givenName": "Alice"},
	}
	assert.True(t, Eval(mustParse(t, `name.givenName eq "alice"`), doc))
}

func TestEval_LogicalOperators(t *testing.T) {
	doc := map[string]any{"userName": "alice", "active": true}

	assert.True(t, Eval(mustParse(t, `userName eq "alice" and active eq true`), doc))
	assert.True(t, Eval(mustParse(t, `userName eq "bob" or active eq true`), doc))
	assert.False(t, Eval(mustParse(t, `not (active eq true)`), doc))
}

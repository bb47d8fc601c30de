package patch

import (
	"testing"

	"github.com/scimhub/core/scim/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(emails []any) map[string]any {
	return map[string]any{
		"schemas":  []any{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"userName": "alice",
		"emails":   emails,
	}
}

func TestApply_ValuePathReplace(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "old@x", "primary": true},
		map[string]any{"type": "home", "value": "h@x"},
	})

	err := Apply(d, []Operation{{
		Op:    OpReplace,
		Path:  `emails[type eq "work"].value`,
		Value: "new@x",
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	assert.Equal(t, "new@x", emails[0].(map[string]any)["value"])
	assert.Equal(t, "h@x", emails[1].(map[string]any)["value"])
}

func TestApply_ValuePathRemove(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "w@x"},
		map[string]any{"type": "home", "value": "h@x"},
	})

	err := Apply(d, []Operation{{
		Op:   OpRemove,
		Path: `emails[type eq "work"]`,
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 1)
	assert.Equal(t, "home", emails[0].(map[string]any)["type"])
}

func TestApply_ValuePathAddBuildsElementFromFilterLiteral(t *testing.T) {
	d := doc([]any{})

	err := Apply(d, []Operation{{
		Op:    OpAdd,
		Path:  `emails[type eq "work"]`,
		Value: map[string]any{"value": "w@x"},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 1)
	el := emails[0].(map[string]any)
	assert.Equal(t, "work", el["type"])
	assert.Equal(t, "w@x", el["value"])
}

func TestApply_AttrPathAddIncomingPrimaryWins(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "w@x", "primary": true},
	})

	err := Apply(d, []Operation{{
		Op:   OpAdd,
		Path: "emails",
		Value: []any{
			map[string]any{"type": "home", "value": "h@x", "primary": true},
		},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	// The incoming primary clears the pre-existing one.
	emails := d["emails"].([]any)
	require.Len(t, emails, 2)
	assert.Equal(t, false, emails[0].(map[string]any)["primary"])
	assert.Equal(t, true, emails[1].(map[string]any)["primary"])
}

func TestApply_AttrPathAddWithoutIncomingPrimaryKeepsExisting(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "w@x", "primary": true},
	})

	err := Apply(d, []Operation{{
		Op:   OpAdd,
		Path: "emails",
		Value: []any{
			map[string]any{"type": "home", "value": "h@x"},
		},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 2)
	assert.Equal(t, true, emails[0].(map[string]any)["primary"])
	assert.Nil(t, emails[1].(map[string]any)["primary"])
}

func TestApply_AttrPathAddMultipleIncomingPrimariesKeepFirst(t *testing.T) {
	d := doc([]any{})

	err := Apply(d, []Operation{{
		Op:   OpAdd,
		Path: "emails",
		Value: []any{
			map[string]any{"type": "work", "value": "a@x", "primary": true},
			map[string]any{"type": "home", "value": "b@x", "primary": true},
		},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 2)
	assert.Equal(t, true, emails[0].(map[string]any)["primary"])
	assert.Equal(t, false, emails[1].(map[string]any)["primary"])
}

func TestApply_ValuePathReplaceWithPrimaryClearsOthers(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "w@x", "primary": true},
		map[string]any{"type": "home", "value": "h@x"},
	})

	err := Apply(d, []Operation{{
		Op:    OpReplace,
		Path:  `emails[type eq "home"]`,
		Value: map[string]any{"type": "home", "value": "h2@x", "primary": true},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 2)
	assert.Equal(t, false, emails[0].(map[string]any)["primary"])
	assert.Equal(t, true, emails[1].(map[string]any)["primary"])
	assert.Equal(t, "h2@x", emails[1].(map[string]any)["value"])
}

func TestApply_ReplaceEmptyArrayClearsAttribute(t *testing.T) {
	d := doc([]any{map[string]any{"value": "w@x"}})

	err := Apply(d, []Operation{{
		Op:    OpReplace,
		Path:  "emails",
		Value: []any{},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	_, present := d["emails"]
	assert.False(t, present)
}

func TestApply_RemoveByValueArraySelective(t *testing.T) {
	d := doc([]any{
		map[string]any{"type": "work", "value": "w@x"},
		map[string]any{"type": "home", "value": "h@x"},
	})

	err := Apply(d, []Operation{{
		Op:   OpRemove,
		Path: "emails",
		Value: []any{
			map[string]any{"value": "w@x"},
		},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	emails := d["emails"].([]any)
	require.Len(t, emails, 1)
	assert.Equal(t, "home", emails[0].(map[string]any)["type"])
}

func TestApply_RemoveOnMissingKeyIsNoop(t *testing.T) {
	d := doc(nil)

	err := Apply(d, []Operation{{Op: OpRemove, Path: "title"}}, "User", catalog.New(), Options{})
	require.NoError(t, err)
}

func TestApply_ReplaceValuePathNoMatchFails(t *testing.T) {
	d := doc([]any{map[string]any{"type": "home", "value": "h@x"}})

	err := Apply(d, []Operation{{
		Op:    OpReplace,
		Path:  `emails[type eq "work"].value`,
		Value: "x",
	}}, "User", catalog.New(), Options{})
	require.Error(t, err)
}

func TestApply_UnknownOpFails(t *testing.T) {
	d := doc(nil)
	err := Apply(d, []Operation{{Op: "frobnicate", Path: "title"}}, "User", catalog.New(), Options{})
	require.Error(t, err)
}

func TestApply_SchemaQualifiedPathAddsToSchemas(t *testing.T) {
	d := doc(nil)

	err := Apply(d, []Operation{{
		Op:    OpReplace,
		Path:  "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User:department",
		Value: "eng",
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	schemas := d["schemas"].([]any)
	assert.Contains(t, schemas, "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User")
}

func TestApply_NoPathMergesObjectIntoRoot(t *testing.T) {
	d := doc(nil)

	err := Apply(d, []Operation{{
		Op:    OpAdd,
		Value: map[string]any{"active": true},
	}}, "User", catalog.New(), Options{})
	require.NoError(t, err)

	assert.Equal(t, true, d["active"])
}

package storage

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/filter"
	"github.com/scimhub/core/scim/resource"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestBackend(t *testing.T) (*Backend, *resource.Engine) {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	cat := catalog.New()
	b := New(db, SQLite, cat)

	require.NoError(t, b.EnsureTenant(context.Background(), "1"))

	engine := resource.NewEngine(cat)
	return b, engine
}

func TestBackend_CreateAndGetUser(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))

	got, version, err := b.GetUser(ctx, "1", doc["id"].(string), false)
	require.NoError(t, err)
	require.Equal(t, 1, version)
	require.Equal(t, "alice", got["userName"])

	response := resource.Finalize(resource.Users, got, "https://scim.example.com/v2")
	meta := response["meta"].(map[string]any)
	require.Equal(t, "https://scim.example.com/v2/Users/"+doc["id"].(string), meta["location"])
}

// A create/read round-trip stores the hashed password but never surfaces
// it in the finalized response document.
func TestBackend_RoundTripRedactsPassword(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{
		"userName": "alice",
		"password": "Abcdef1!",
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))
	id := doc["id"].(string)

	got, _, err := b.GetUser(ctx, "1", id, false)
	require.NoError(t, err)
	stored, _ := got["password"].(string)
	require.NotEmpty(t, stored)
	require.NotEqual(t, "Abcdef1!", stored)

	response := resource.Finalize(resource.Users, got, "https://scim.example.com/v2")
	_, present := response["password"]
	require.False(t, present)

	// The update path redacts the same way.
	updated, err := engine.PrepareUpdate(resource.Users, id, 2, map[string]any{
		"userName": "alice",
		"password": "Abcdef1!x",
	})
	require.NoError(t, err)
	require.NoError(t, b.UpdateUser(ctx, "1", id, 1, updated))

	got, _, err = b.GetUser(ctx, "1", id, false)
	require.NoError(t, err)
	response = resource.Finalize(resource.Users, got, "https://scim.example.com/v2")
	_, present = response["password"]
	require.False(t, present)
}

func TestBackend_DuplicateUserNameRejected(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc1, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "Alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc1))

	doc2, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.Error(t, b.CreateUser(ctx, "1", doc2))
}

func TestBackend_UpdateUserBumpsVersionAndEnforcesIfMatch(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))
	id := doc["id"].(string)

	updated, err := engine.PrepareUpdate(resource.Users, id, 2, map[string]any{"userName": "alice", "title": "Engineer"})
	require.NoError(t, err)

	require.Error(t, b.UpdateUser(ctx, "1", id, 5, updated)) // wrong If-Match version
	require.NoError(t, b.UpdateUser(ctx, "1", id, 1, updated))

	got, version, err := b.GetUser(ctx, "1", id, false)
	require.NoError(t, err)
	require.Equal(t, 2, version)
	require.Equal(t, "Engineer", got["title"])
}

func TestBackend_DeleteUserRemovesMembership(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	userDoc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", userDoc))
	userID := userDoc["id"].(string)

	groupDoc, err := engine.PrepareCreate(resource.Groups, map[string]any{
		"displayName": "admins",
		"members":     []any{map[string]any{"value": userID, "type": "User"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateGroup(ctx, "1", groupDoc))
	groupID := groupDoc["id"].(string)

	require.NoError(t, b.DeleteUser(ctx, "1", userID))

	got, _, err := b.GetGroup(ctx, "1", groupID)
	require.NoError(t, err)
	members, _ := got["members"].([]any)
	require.Empty(t, members)
}

func TestBackend_DeleteGroupRemovesNestedMembership(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	childDoc, err := engine.PrepareCreate(resource.Groups, map[string]any{"displayName": "child"})
	require.NoError(t, err)
	require.NoError(t, b.CreateGroup(ctx, "1", childDoc))
	childID := childDoc["id"].(string)

	parentDoc, err := engine.PrepareCreate(resource.Groups, map[string]any{
		"displayName": "parent",
		"members":     []any{map[string]any{"value": childID, "type": "Group"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateGroup(ctx, "1", parentDoc))
	parentID := parentDoc["id"].(string)

	require.NoError(t, b.DeleteGroup(ctx, "1", parentID))

	got, _, err := b.GetGroup(ctx, "1", childID)
	require.NoError(t, err)
	require.Equal(t, "child", got["displayName"])
}

func TestBackend_ListUsersWithFilterAndPagination(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": name})
		require.NoError(t, err)
		require.NoError(t, b.CreateUser(ctx, "1", doc))
	}

	expr, err := filter.Parse(`userName eq "bob"`)
	require.NoError(t, err)

	page, err := b.ListUsers(ctx, "1", ListOptions{Filter: expr}, false)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalResults)
	require.Equal(t, "bob", page.Resources[0]["userName"])

	all, err := b.ListUsers(ctx, "1", ListOptions{Count: 2, CountSet: true}, false)
	require.NoError(t, err)
	require.Equal(t, 3, all.TotalResults)
	require.Len(t, all.Resources, 2)
}

func TestBackend_ComplexFilterOverMultiValuedEmails(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	alice, err := engine.PrepareCreate(resource.Users, map[string]any{
		"userName": "alice",
		"emails":   []any{map[string]any{"type": "work", "value": "alice@company.com"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", alice))

	bob, err := engine.PrepareCreate(resource.Users, map[string]any{
		"userName": "bob",
		"emails":   []any{map[string]any{"type": "work", "value": "bob@other.com"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", bob))

	expr, err := filter.Parse(`emails[value co "@company"]`)
	require.NoError(t, err)

	page, err := b.ListUsers(ctx, "1", ListOptions{Filter: expr}, false)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalResults)
	require.Equal(t, "alice", page.Resources[0]["userName"])
}

// The in-memory evaluator and the SQL path must agree on whether a stored
// resource matches a filter.
func TestBackend_FilterCrossOracle(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{
		"userName": "Alice",
		"title":    "Engineer",
		"active":   true,
		"emails": []any{
			map[string]any{"type": "work", "value": "Alice@Company.com", "primary": true},
			map[string]any{"type": "home", "value": "alice@home.example"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))

	filters := []string{
		`userName eq "ALICE"`,
		`userName eq "bob"`,
		`userName sw "al"`,
		`userName ew "ice"`,
		`title pr`,
		`nickName pr`,
		`active eq true`,
		`active eq false`,
		`emails[type eq "work"]`,
		`emails[type eq "other"]`,
		`emails[type eq "work" and value co "@company"]`,
		`emails.value co "@home"`,
		`emails.value co "@nowhere"`,
		`title eq "engineer" and active eq true`,
		`title eq "nope" or userName eq "alice"`,
		`not (userName eq "alice")`,
	}

	for _, f := range filters {
		expr, err := filter.Parse(f)
		require.NoError(t, err, f)

		page, err := b.ListUsers(ctx, "1", ListOptions{Filter: expr}, false)
		require.NoError(t, err, f)

		inMemory := filter.Eval(expr, doc)
		viaSQL := page.TotalResults == 1
		require.Equal(t, inMemory, viaSQL, "oracle disagreement for %q", f)
	}
}

func TestBackend_ListSortsAndPaginates(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	for _, name := range []string{"Carol", "alice", "Bob"} {
		doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": name})
		require.NoError(t, err)
		require.NoError(t, b.CreateUser(ctx, "1", doc))
	}

	page, err := b.ListUsers(ctx, "1", ListOptions{SortBy: "userName"}, false)
	require.NoError(t, err)
	require.Equal(t, "alice", page.Resources[0]["userName"])
	require.Equal(t, "Bob", page.Resources[1]["userName"])
	require.Equal(t, "Carol", page.Resources[2]["userName"])

	second, err := b.ListUsers(ctx, "1", ListOptions{SortBy: "userName", StartIndex: 2, Count: 1, CountSet: true}, false)
	require.NoError(t, err)
	require.Equal(t, 3, second.TotalResults)
	require.Len(t, second.Resources, 1)
	require.Equal(t, "Bob", second.Resources[0]["userName"])
	require.Equal(t, 2, second.StartIndex)
}

func TestBackend_GroupReadHydratesMemberDisplay(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	user, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", user))
	userID := user["id"].(string)

	group, err := engine.PrepareCreate(resource.Groups, map[string]any{
		"displayName": "admins",
		"members":     []any{map[string]any{"value": userID, "type": "User"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateGroup(ctx, "1", group))

	got, _, err := b.GetGroup(ctx, "1", group["id"].(string))
	require.NoError(t, err)

	members := got["members"].([]any)
	require.Len(t, members, 1)
	m := members[0].(map[string]any)
	require.Equal(t, userID, m["value"])
	require.Equal(t, "User", m["type"])
	require.Equal(t, "alice", m["display"])
	require.Equal(t, "/1/Users/"+userID, m["$ref"])
}

func TestBackend_UserReadHydratesGroupBackrefs(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	user, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", user))
	userID := user["id"].(string)

	group, err := engine.PrepareCreate(resource.Groups, map[string]any{
		"displayName": "admins",
		"members":     []any{map[string]any{"value": userID, "type": "User"}},
	})
	require.NoError(t, err)
	require.NoError(t, b.CreateGroup(ctx, "1", group))

	got, _, err := b.GetUser(ctx, "1", userID, true)
	require.NoError(t, err)

	groups := got["groups"].([]any)
	require.Len(t, groups, 1)
	g := groups[0].(map[string]any)
	require.Equal(t, group["id"].(string), g["value"])
	require.Equal(t, "admins", g["display"])
}

func TestBackend_TenantsAreIsolated(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.EnsureTenant(ctx, "2"))

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))

	_, _, err = b.GetUser(ctx, "2", doc["id"].(string), false)
	require.Error(t, err)

	// The same userName is free in the other tenant.
	other, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "2", other))
}

func TestBackend_DropTenantRemovesData(t *testing.T) {
	b, engine := newTestBackend(t)
	ctx := context.Background()

	doc, err := engine.PrepareCreate(resource.Users, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.NoError(t, b.CreateUser(ctx, "1", doc))

	require.NoError(t, b.DropTenant(ctx, "1"))
	require.NoError(t, b.EnsureTenant(ctx, "1"))

	page, err := b.ListUsers(ctx, "1", ListOptions{}, false)
	require.NoError(t, err)
	require.Zero(t, page.TotalResults)
}

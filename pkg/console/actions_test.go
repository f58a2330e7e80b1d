package console_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/console-client/pkg/console"
)

func allHandlers(calls map[string]int) console.Handlers {
	return console.Handlers{
		OnNew:         func(subtype string) { calls["new:"+subtype]++ },
		OnEdit:        func(record console.Record) { calls["edit"]++ },
		OnDelete:      func(selection []console.Record) { calls["delete"] += len(selection) },
		OnPermissions: func(selection []console.Record) { calls["permissions"]++ },
	}
}

func TestActionSet_EmptySelectionState(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionAll, nil, allHandlers(map[string]int{}))

	newState, ok := set.State(console.ButtonNew)
	require.True(t, ok)
	assert.True(t, newState.Enabled)

	editState, _ := set.State(console.ButtonEdit)
	assert.False(t, editState.Enabled)

	deleteState, _ := set.State(console.ButtonDelete)
	assert.False(t, deleteState.Enabled)

	permState, _ := set.State(console.ButtonPermissions)
	assert.False(t, permState.Enabled)
}

func TestActionSet_SingleAndMultiSelection(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionAll, nil, allHandlers(map[string]int{}))

	set.Select(console.Record{"id": "1"})

	editState, _ := set.State(console.ButtonEdit)
	assert.True(t, editState.Enabled)

	deleteState, _ := set.State(console.ButtonDelete)
	assert.True(t, deleteState.Enabled)

	set.Select(console.Record{"id": "2"})

	// Edit needs exactly one row; delete keeps working on many.
	editState, _ = set.State(console.ButtonEdit)
	assert.False(t, editState.Enabled)

	deleteState, _ = set.State(console.ButtonDelete)
	assert.True(t, deleteState.Enabled)

	set.Deselect("1")

	editState, _ = set.State(console.ButtonEdit)
	assert.True(t, editState.Enabled)

	set.ClearSelection()

	deleteState, _ = set.State(console.ButtonDelete)
	assert.False(t, deleteState.Enabled)
}

func TestActionSet_PermissionGating(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionRead, nil, allHandlers(map[string]int{}))
	set.Select(console.Record{"id": "1"})

	for _, name := range []string{console.ButtonNew, console.ButtonEdit, console.ButtonDelete, console.ButtonPermissions} {
		state, ok := set.State(name)
		require.True(t, ok, name)
		assert.False(t, state.Enabled, name)
	}

	// Management unlocks CRUD but not the grants editor.
	set.SetPermission(console.PermissionManagement)

	editState, _ := set.State(console.ButtonEdit)
	assert.True(t, editState.Enabled)

	permState, _ := set.State(console.ButtonPermissions)
	assert.False(t, permState.Enabled)

	set.SetPermission(console.PermissionAll)

	permState, _ = set.State(console.ButtonPermissions)
	assert.True(t, permState.Enabled)
}

func TestActionSet_PolymorphicNewMenu(t *testing.T) {
	t.Parallel()

	types := console.TypeMap{
		"saml": {Type: "saml", Name: "SAML", Group: ""},
		"ldap": {Type: "ldap", Name: "ldap directory", Group: ""},
		"int":  {Type: "int", Name: "Internal DB", Group: "Builtin"},
	}

	set := console.NewActionSet(console.PermissionAll, types, allHandlers(map[string]int{}))

	state, ok := set.State(console.ButtonNew)
	require.True(t, ok)
	require.Len(t, state.Menu, 3)

	// Ungrouped entries sort before grouped ones, names case-insensitively.
	assert.Equal(t, "ldap", state.Menu[0].Type)
	assert.Equal(t, "saml", state.Menu[1].Type)
	assert.Equal(t, "int", state.Menu[2].Type)
}

func TestActionSet_ActivateDispatch(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	set := console.NewActionSet(console.PermissionAll, nil, allHandlers(calls))

	require.NoError(t, set.Activate(console.ButtonNew))
	assert.Equal(t, 1, calls["new:"])

	set.Select(console.Record{"id": "1"})
	set.Select(console.Record{"id": "2"})

	require.NoError(t, set.Activate(console.ButtonDelete))
	assert.Equal(t, 2, calls["delete"])

	err := set.Activate(console.ButtonEdit)
	require.ErrorIs(t, err, console.ErrButtonDisabled)

	set.Deselect("2")
	require.NoError(t, set.Activate(console.ButtonEdit))
	assert.Equal(t, 1, calls["edit"])
}

func TestActionSet_ActivateNewRequiresDeclaredSubtype(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	types := console.TypeMap{"ldap": {Type: "ldap", Name: "LDAP"}}
	set := console.NewActionSet(console.PermissionAll, types, allHandlers(calls))

	// Polymorphic kinds reject the bare activation.
	err := set.Activate(console.ButtonNew)
	require.ErrorIs(t, err, console.ErrButtonDisabled)

	err = set.ActivateNew("saml")
	require.ErrorIs(t, err, console.ErrUnknownButton)

	require.NoError(t, set.ActivateNew("ldap"))
	assert.Equal(t, 1, calls["new:ldap"])
}

func TestActionSet_ActivateUnknownButton(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionAll, nil, allHandlers(map[string]int{}))

	err := set.Activate("launch")
	require.ErrorIs(t, err, console.ErrUnknownButton)
}

func TestActionSet_CustomButton(t *testing.T) {
	t.Parallel()

	clicked := 0

	set := console.NewActionSet(console.PermissionManagement, nil, console.Handlers{})
	set.AddCustom(console.CustomButton{
		Name:       "publish",
		Permission: console.PermissionManagement,
		Click:      func(selection []console.Record) { clicked += len(selection) },
		Select: func(selection []console.Record) bool {
			return len(selection) == 1
		},
	})

	state, ok := set.State("publish")
	require.True(t, ok)
	assert.False(t, state.Enabled)

	set.Select(console.Record{"id": "1"})

	state, _ = set.State("publish")
	assert.True(t, state.Enabled)

	require.NoError(t, set.Activate("publish"))
	assert.Equal(t, 1, clicked)

	// Dropping below the button's permission disables it regardless of the
	// selection predicate.
	set.SetPermission(console.PermissionRead)

	state, _ = set.State("publish")
	assert.False(t, state.Enabled)
}

func TestActionSet_NilHandlerOmitsButton(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionAll, nil, console.Handlers{
		OnEdit: func(record console.Record) {},
	})

	_, ok := set.State(console.ButtonNew)
	assert.False(t, ok)

	_, ok = set.State(console.ButtonEdit)
	assert.True(t, ok)
}

func TestActionSet_SelectReplacesStaleRecord(t *testing.T) {
	t.Parallel()

	set := console.NewActionSet(console.PermissionAll, nil, allHandlers(map[string]int{}))

	set.Select(console.Record{"id": "1", "name": "old"})
	set.Select(console.Record{"id": "1", "name": "new"})

	selection := set.Selection()
	require.Len(t, selection, 1)
	assert.Equal(t, "new", selection[0]["name"])
}

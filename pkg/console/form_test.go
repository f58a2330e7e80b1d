package console_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/console-client/pkg/console"
)

func choiceField(name string, fills *console.Fills, values ...console.Choice) console.FormField {
	return console.FormField{
		Name: name,
		GUI: console.FieldGUI{
			Type:   console.FieldChoice,
			Label:  name,
			Values: values,
			Fills:  fills,
		},
	}
}

func TestBuildForm_EffectiveValuePrecedence(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		{Name: "host", Value: "declared", GUI: console.FieldGUI{Type: console.FieldText, Default: "default"}},
		{Name: "port", GUI: console.FieldGUI{Type: console.FieldNumeric, Default: "443"}},
		{Name: "name", GUI: console.FieldGUI{Type: console.FieldText}},
	}

	existing := console.Record{"host": "from-record"}

	form, err := console.BuildForm(descriptors, existing, nil)
	require.NoError(t, err)

	host, _ := form.Field("host")
	assert.Equal(t, "from-record", host.Value)

	port, _ := form.Field("port")
	assert.Equal(t, "443", port.Value)

	name, _ := form.Field("name")
	assert.Nil(t, name.Value)
}

func TestBuildForm_MultiChoiceReducesToIDs(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		{Name: "networks", GUI: console.FieldGUI{Type: console.FieldMultiChoice}},
	}

	existing := console.Record{
		"networks": []interface{}{
			map[string]interface{}{"id": "net-1", "name": "LAN"},
			map[string]interface{}{"id": "net-2", "name": "DMZ"},
		},
	}

	form, err := console.BuildForm(descriptors, existing, nil)
	require.NoError(t, err)

	field, _ := form.Field("networks")
	assert.Equal(t, []string{"net-1", "net-2"}, field.Value)
}

func TestBuildForm_RejectsDeclaredFillerCycle(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		choiceField("a", &console.Fills{Callback: "fillB", Parameters: []string{"a"}, Targets: []string{"b"}}),
		choiceField("b", &console.Fills{Callback: "fillA", Parameters: []string{"b"}, Targets: []string{"a"}}),
	}

	_, err := console.BuildForm(descriptors, nil, nil)
	require.ErrorIs(t, err, console.ErrFillerCycle)
}

func TestBuildForm_RejectsLegacySingularTargetCycle(t *testing.T) {
	t.Parallel()

	raw := `[
		{"name": "a", "gui": {"type": "choice", "label": "a",
			"fills": {"callbackName": "fillB", "parameters": ["a"], "target": "b"}}},
		{"name": "b", "gui": {"type": "choice", "label": "b",
			"fills": {"callbackName": "fillA", "parameters": ["b"], "target": "a"}}}
	]`

	var descriptors []console.FormField
	require.NoError(t, json.Unmarshal([]byte(raw), &descriptors))

	fills := descriptors[0].GUI.Fills
	require.NotNil(t, fills)
	assert.Equal(t, []string{"b"}, fills.Targets)

	_, err := console.BuildForm(descriptors, nil, nil)
	require.ErrorIs(t, err, console.ErrFillerCycle)
}

func TestForm_SetValueRunsFillerCascade(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		choiceField("datacenter",
			&console.Fills{Callback: "listMachines", Parameters: []string{"datacenter"}, Targets: []string{"machine"}},
			console.Choice{ID: "dc-1", Text: "Primary"},
			console.Choice{ID: "dc-2", Text: "Secondary"},
		),
		choiceField("machine", nil),
	}

	calls := 0

	resolver := console.FillerResolverFunc(func(ctx context.Context, callback string, params map[string]string) ([]console.FieldUpdate, error) {
		calls++

		assert.Equal(t, "listMachines", callback)
		assert.Equal(t, map[string]string{"datacenter": "dc-2"}, params)

		return []console.FieldUpdate{
			{Name: "machine", Values: []console.Choice{{ID: "m-1", Text: "vm-01"}, {ID: "m-2", Text: "vm-02"}}},
		}, nil
	})

	form, err := console.BuildForm(descriptors, nil, resolver)
	require.NoError(t, err)

	require.NoError(t, form.SetValue(context.Background(), "datacenter", "dc-2"))

	assert.Equal(t, 1, calls)

	machine, _ := form.Field("machine")
	assert.Len(t, machine.Options, 2)
}

func TestForm_CascadePreservesStillValidSelection(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		choiceField("datacenter",
			&console.Fills{Callback: "listMachines", Parameters: []string{"datacenter"}, Targets: []string{"machine"}},
			console.Choice{ID: "dc-1", Text: "Primary"},
		),
		choiceField("machine", nil, console.Choice{ID: "m-1", Text: "vm-01"}),
	}

	updates := []console.FieldUpdate{
		{Name: "machine", Values: []console.Choice{{ID: "m-1", Text: "vm-01"}, {ID: "m-9", Text: "vm-09"}}},
	}

	resolver := console.FillerResolverFunc(func(ctx context.Context, callback string, params map[string]string) ([]console.FieldUpdate, error) {
		return updates, nil
	})

	form, err := console.BuildForm(descriptors, nil, resolver)
	require.NoError(t, err)

	require.NoError(t, form.SetValue(context.Background(), "machine", "m-1"))
	require.NoError(t, form.SetValue(context.Background(), "datacenter", "dc-1"))

	machine, _ := form.Field("machine")
	assert.Equal(t, "m-1", machine.Value)

	// A refill that no longer contains the selection clears it.
	updates = []console.FieldUpdate{
		{Name: "machine", Values: []console.Choice{{ID: "m-9", Text: "vm-09"}}},
	}

	require.NoError(t, form.SetValue(context.Background(), "datacenter", "dc-1"))
	assert.Nil(t, machine.Value)
}

func TestForm_ChainedCascadeStopsOnRuntimeCycle(t *testing.T) {
	t.Parallel()

	// a fills b, b fills a, but targets are undeclared so the build cannot
	// reject them; the runtime visited set must break the loop.
	descriptors := []console.FormField{
		choiceField("a", &console.Fills{Callback: "fill", Parameters: []string{"a"}}),
		choiceField("b", &console.Fills{Callback: "fill", Parameters: []string{"b"}}),
	}

	calls := 0

	resolver := console.FillerResolverFunc(func(ctx context.Context, callback string, params map[string]string) ([]console.FieldUpdate, error) {
		calls++

		if _, ok := params["a"]; ok {
			return []console.FieldUpdate{{Name: "b", Values: []console.Choice{{ID: "x"}}}}, nil
		}

		return []console.FieldUpdate{{Name: "a", Values: []console.Choice{{ID: "y"}}}}, nil
	})

	form, err := console.BuildForm(descriptors, nil, resolver)
	require.NoError(t, err)

	require.NoError(t, form.SetValue(context.Background(), "a", "v"))
	assert.LessOrEqual(t, calls, 2)
}

func TestForm_SetValueUnknownField(t *testing.T) {
	t.Parallel()

	form, err := console.BuildForm(nil, nil, nil)
	require.NoError(t, err)

	err = form.SetValue(context.Background(), "ghost", 1)
	require.ErrorIs(t, err, console.ErrUnknownField)
}

func TestForm_SetValueWithoutResolver(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		choiceField("a", &console.Fills{Callback: "fill", Parameters: []string{"a"}, Targets: []string{"b"}}),
		choiceField("b", nil),
	}

	form, err := console.BuildForm(descriptors, nil, nil)
	require.NoError(t, err)

	err = form.SetValue(context.Background(), "a", "v")
	require.ErrorIs(t, err, console.ErrNoFillerResolver)
}

func TestForm_ValuesCoercesWidgetEncodings(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		{Name: "active", GUI: console.FieldGUI{Type: console.FieldCheckbox}},
		{Name: "port", GUI: console.FieldGUI{Type: console.FieldNumeric}},
		{Name: "host", GUI: console.FieldGUI{Type: console.FieldText}},
	}

	form, err := console.BuildForm(descriptors, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, form.SetValue(ctx, "active", "true"))
	require.NoError(t, form.SetValue(ctx, "port", "8443"))
	require.NoError(t, form.SetValue(ctx, "host", "example.org"))

	values := form.Values()
	assert.Equal(t, true, values["active"])
	assert.InDelta(t, 8443.0, values["port"], 0)
	assert.Equal(t, "example.org", values["host"])
}

func TestForm_DirtyTracksChangedFields(t *testing.T) {
	t.Parallel()

	descriptors := []console.FormField{
		{Name: "host", GUI: console.FieldGUI{Type: console.FieldText, Default: "a"}},
		{Name: "port", GUI: console.FieldGUI{Type: console.FieldNumeric, Default: "443"}},
	}

	form, err := console.BuildForm(descriptors, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, form.Dirty())

	require.NoError(t, form.SetValue(context.Background(), "host", "b"))
	assert.Equal(t, []string{"host"}, form.Dirty())
}

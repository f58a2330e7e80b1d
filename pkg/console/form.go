package console

import (
	"context"
	"fmt"
	"strconv"
)

// FillerResolver resolves a filler callback against the server: the named
// callback receives the current values of the declared parameter fields and
// returns the option lists to install.
type FillerResolver interface {
	ResolveFiller(ctx context.Context, callback string, params map[string]string) ([]FieldUpdate, error)
}

// FillerResolverFunc adapts a function to the FillerResolver interface.
type FillerResolverFunc func(ctx context.Context, callback string, params map[string]string) ([]FieldUpdate, error)

// ResolveFiller implements FillerResolver.
func (f FillerResolverFunc) ResolveFiller(ctx context.Context, callback string, params map[string]string) ([]FieldUpdate, error) {
	return f(ctx, callback, params)
}

// FieldState is one live form field: its descriptor, current value, the
// original value recorded at build time for dirty checks, and the current
// option list for choice-like fields.
type FieldState struct {
	Descriptor FormField
	Value      interface{}
	Original   interface{}
	Options    []Choice
}

// Form is an editable field set built from server schema metadata. Field
// order follows the server's declaration order.
type Form struct {
	fields   []*FieldState
	byName   map[string]*FieldState
	resolver FillerResolver
}

// BuildForm composes a form from the field descriptors of a "gui" response
// and, for edits, the existing record. The effective value of each field is
// existing[field] ?? declared value ?? declared default, recorded as the
// field's original value. Filler bindings with declared targets are cycle
// checked up front; a cycle is a build error, not a runtime hang.
func BuildForm(descriptors []FormField, existing Record, resolver FillerResolver) (*Form, error) {
	form := &Form{
		fields:   make([]*FieldState, 0, len(descriptors)),
		byName:   make(map[string]*FieldState, len(descriptors)),
		resolver: resolver,
	}

	for _, descriptor := range descriptors {
		value := effectiveValue(descriptor, existing)

		state := &FieldState{
			Descriptor: descriptor,
			Value:      value,
			Original:   value,
			Options:    descriptor.GUI.Values,
		}

		form.fields = append(form.fields, state)
		form.byName[descriptor.Name] = state
	}

	err := form.checkFillerCycles()
	if err != nil {
		return nil, err
	}

	return form, nil
}

// effectiveValue resolves a field's initial value. A multi-choice value
// arriving as a list of referenced objects is reduced to bare ids: the wire
// format for submission differs from the one for display.
func effectiveValue(descriptor FormField, existing Record) interface{} {
	var value interface{}

	if existing != nil {
		if v, ok := existing[descriptor.Name]; ok {
			value = v
		}
	}

	if value == nil {
		value = descriptor.Value
	}

	if value == nil {
		value = descriptor.GUI.Default
	}

	if descriptor.GUI.Type == FieldMultiChoice {
		value = reduceToIDs(value)
	}

	return value
}

func reduceToIDs(value interface{}) interface{} {
	list, ok := value.([]interface{})
	if !ok {
		return value
	}

	ids := make([]string, 0, len(list))

	for _, item := range list {
		switch v := item.(type) {
		case map[string]interface{}:
			if id, ok := v["id"].(string); ok {
				ids = append(ids, id)
			}
		case string:
			ids = append(ids, v)
		default:
			ids = append(ids, fmt.Sprintf("%v", v))
		}
	}

	return ids
}

// Fields returns the form's fields in declaration order.
func (f *Form) Fields() []*FieldState {
	return f.fields
}

// Field returns one field by name.
func (f *Form) Field(name string) (*FieldState, bool) {
	state, ok := f.byName[name]

	return state, ok
}

// SetValue updates a field and runs its filler cascade, if any. The cascade
// resolves the declared callback with the current values of all parameter
// fields, replaces each named target's option list, re-selects the target's
// previous value when still present, and then triggers the target's own
// dependents in turn.
func (f *Form) SetValue(ctx context.Context, name string, value interface{}) error {
	state, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	state.Value = value

	if state.Descriptor.GUI.Fills == nil {
		return nil
	}

	visited := map[string]bool{name: true}

	return f.cascade(ctx, state, visited)
}

func (f *Form) cascade(ctx context.Context, source *FieldState, visited map[string]bool) error {
	fills := source.Descriptor.GUI.Fills
	if fills == nil {
		return nil
	}

	if f.resolver == nil {
		return ErrNoFillerResolver
	}

	params := make(map[string]string, len(fills.Parameters))

	for _, param := range fills.Parameters {
		if state, ok := f.byName[param]; ok {
			params[param] = stringValue(state.Value)
		}
	}

	updates, err := f.resolver.ResolveFiller(ctx, fills.Callback, params)
	if err != nil {
		return fmt.Errorf("resolving filler %s: %w", fills.Callback, err)
	}

	for _, update := range updates {
		target, ok := f.byName[update.Name]
		if !ok {
			continue
		}

		target.Options = update.Values

		// Keep the previous selection when the new option set still
		// contains it; otherwise the field ends up unselected.
		if !choicesContain(update.Values, stringValue(target.Value)) {
			target.Value = nil
		}

		// visited breaks undeclared runtime cycles; declared ones were
		// rejected at build time.
		if target.Descriptor.GUI.Fills != nil && !visited[update.Name] {
			visited[update.Name] = true

			err = f.cascade(ctx, target, visited)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Values extracts the current field values as a submission record.
// Checkbox fields are coerced to real booleans and numeric fields to
// numbers, whatever loose encoding the widget handed back.
func (f *Form) Values() Record {
	record := make(Record, len(f.fields))

	for _, state := range f.fields {
		switch state.Descriptor.GUI.Type {
		case FieldCheckbox:
			record[state.Descriptor.Name] = truthy(state.Value)
		case FieldNumeric:
			record[state.Descriptor.Name] = numericValue(state.Value)
		default:
			record[state.Descriptor.Name] = state.Value
		}
	}

	return record
}

// Dirty returns the names of fields whose value differs from the original
// recorded at build time, in declaration order.
func (f *Form) Dirty() []string {
	var dirty []string

	for _, state := range f.fields {
		if stringValue(state.Value) != stringValue(state.Original) {
			dirty = append(dirty, state.Descriptor.Name)
		}
	}

	return dirty
}

// checkFillerCycles walks the declared filler dependency graph (declaring
// field -> declared targets) and rejects cycles.
func (f *Form) checkFillerCycles() error {
	const (
		unseen = iota
		visiting
		done
	)

	colors := make(map[string]int, len(f.fields))

	var visit func(name string) error

	visit = func(name string) error {
		switch colors[name] {
		case visiting:
			return fmt.Errorf("%w: at field %s", ErrFillerCycle, name)
		case done:
			return nil
		}

		colors[name] = visiting

		if state, ok := f.byName[name]; ok && state.Descriptor.GUI.Fills != nil {
			for _, target := range state.Descriptor.GUI.Fills.Targets {
				err := visit(target)
				if err != nil {
					return err
				}
			}
		}

		colors[name] = done

		return nil
	}

	for _, state := range f.fields {
		err := visit(state.Descriptor.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func choicesContain(choices []Choice, id string) bool {
	for _, choice := range choices {
		if choice.ID == id {
			return true
		}
	}

	return false
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numericValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if number, err := strconv.ParseFloat(v, 64); err == nil {
			return number
		}

		return v
	default:
		return v
	}
}

package console

import (
	"fmt"
	"sort"
	"strings"
)

// Stock action button names.
const (
	ButtonNew         = "new"
	ButtonEdit        = "edit"
	ButtonDelete      = "delete"
	ButtonPermissions = "permissions"
)

// Handlers are the CRUD callbacks an action set dispatches to. A nil
// handler leaves its stock button out of the set.
type Handlers struct {
	// OnNew receives the chosen sub-type id, or "" for non-polymorphic
	// kinds.
	OnNew func(subtype string)

	// OnEdit receives the single selected record.
	OnEdit func(record Record)

	// OnDelete receives every selected record; deletion of each is
	// independent (see BatchExecutor for the reporting contract).
	OnDelete func(selection []Record)

	// OnPermissions receives the selected records.
	OnPermissions func(selection []Record)
}

// CustomButton is a caller-defined action. The engine invokes Select on
// every selection change to compute enablement and Click on activation.
type CustomButton struct {
	Name       string
	Permission Permission
	Click      func(selection []Record)
	Select     func(selection []Record) bool
}

// MenuItem is one entry of a polymorphic "New" menu.
type MenuItem struct {
	Type  string
	Name  string
	Group string
	Icon  string
}

// ButtonState is the computed enablement of one action button. For a
// polymorphic "new" button, Menu carries one sub-action per declared type.
type ButtonState struct {
	Name    string
	Enabled bool
	Menu    []MenuItem
}

// ActionSet tracks the row selection of one listing and keeps every action
// button's state consistent with it. Button state is a pure function of
// (selection, resource permission, type map) and is recomputed synchronously
// on every change to any of the three; it is never left stale.
type ActionSet struct {
	permission Permission
	types      TypeMap
	handlers   Handlers
	custom     []CustomButton

	selection []Record
	index     map[string]int

	states map[string]ButtonState
}

// NewActionSet creates an action set for a listing with the resource's
// permission level and type map.
func NewActionSet(permission Permission, types TypeMap, handlers Handlers) *ActionSet {
	set := &ActionSet{
		permission: permission,
		types:      types,
		handlers:   handlers,
		index:      make(map[string]int),
	}

	set.recompute()

	return set
}

// AddCustom registers a caller-defined button.
func (s *ActionSet) AddCustom(button CustomButton) {
	s.custom = append(s.custom, button)
	s.recompute()
}

// SetPermission replaces the permission level (e.g. after an async
// permission fetch resolves).
func (s *ActionSet) SetPermission(permission Permission) {
	s.permission = permission
	s.recompute()
}

// SetTypes replaces the type map once an async types fetch resolves.
func (s *ActionSet) SetTypes(types TypeMap) {
	s.types = types
	s.recompute()
}

// Select adds a row to the selection. Re-selecting a row replaces its
// stored record, so a refreshed fetch updates stale row data.
func (s *ActionSet) Select(record Record) {
	id := record.ID()

	if pos, ok := s.index[id]; ok {
		s.selection[pos] = record
	} else {
		s.index[id] = len(s.selection)
		s.selection = append(s.selection, record)
	}

	s.recompute()
}

// Deselect removes a row from the selection.
func (s *ActionSet) Deselect(id string) {
	pos, ok := s.index[id]
	if !ok {
		return
	}

	s.selection = append(s.selection[:pos], s.selection[pos+1:]...)
	delete(s.index, id)

	for i := pos; i < len(s.selection); i++ {
		s.index[s.selection[i].ID()] = i
	}

	s.recompute()
}

// ClearSelection empties the selection.
func (s *ActionSet) ClearSelection() {
	s.selection = nil
	s.index = make(map[string]int)
	s.recompute()
}

// Selection returns the selected records in selection order.
func (s *ActionSet) Selection() []Record {
	out := make([]Record, len(s.selection))
	copy(out, s.selection)

	return out
}

// State returns the current state of one button.
func (s *ActionSet) State(name string) (ButtonState, bool) {
	state, ok := s.states[name]

	return state, ok
}

// States returns a copy of every button's current state.
func (s *ActionSet) States() map[string]ButtonState {
	out := make(map[string]ButtonState, len(s.states))
	for name, state := range s.states {
		out[name] = state
	}

	return out
}

// NewMenu builds the polymorphic "New" sub-actions: one per declared type,
// sorted by display name (grouped entries sort by group first). Empty for
// non-polymorphic kinds.
func (s *ActionSet) NewMenu() []MenuItem {
	items := make([]MenuItem, 0, len(s.types))

	for _, info := range s.types {
		items = append(items, MenuItem{
			Type:  info.Type,
			Name:  info.Name,
			Group: info.Group,
			Icon:  info.Icon,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Group != items[j].Group {
			return items[i].Group < items[j].Group
		}

		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	return items
}

// Activate dispatches a button's handler. Activating "new" on a
// polymorphic resource requires ActivateNew with a sub-type.
func (s *ActionSet) Activate(name string) error {
	state, ok := s.states[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownButton, name)
	}

	if !state.Enabled {
		return fmt.Errorf("%w: %s", ErrButtonDisabled, name)
	}

	switch name {
	case ButtonNew:
		if len(s.types) > 0 {
			return fmt.Errorf("%w: use ActivateNew with a sub-type", ErrButtonDisabled)
		}

		s.handlers.OnNew("")
	case ButtonEdit:
		s.handlers.OnEdit(s.selection[0])
	case ButtonDelete:
		s.handlers.OnDelete(s.Selection())
	case ButtonPermissions:
		s.handlers.OnPermissions(s.Selection())
	default:
		for _, button := range s.custom {
			if button.Name == name {
				button.Click(s.Selection())

				return nil
			}
		}
	}

	return nil
}

// ActivateNew dispatches the "new" handler for one declared sub-type.
func (s *ActionSet) ActivateNew(subtype string) error {
	state, ok := s.states[ButtonNew]
	if !ok || !state.Enabled {
		return fmt.Errorf("%w: %s", ErrButtonDisabled, ButtonNew)
	}

	if _, ok := s.types[subtype]; !ok {
		return fmt.Errorf("%w: unknown sub-type %s", ErrUnknownButton, subtype)
	}

	s.handlers.OnNew(subtype)

	return nil
}

func (s *ActionSet) recompute() {
	states := make(map[string]ButtonState)
	count := len(s.selection)

	if s.handlers.OnNew != nil {
		state := ButtonState{
			Name:    ButtonNew,
			Enabled: s.permission.Meets(PermissionManagement),
		}
		if state.Enabled && len(s.types) > 0 {
			state.Menu = s.NewMenu()
		}

		states[ButtonNew] = state
	}

	if s.handlers.OnEdit != nil {
		states[ButtonEdit] = ButtonState{
			Name:    ButtonEdit,
			Enabled: s.permission.Meets(PermissionManagement) && count == 1,
		}
	}

	if s.handlers.OnDelete != nil {
		states[ButtonDelete] = ButtonState{
			Name:    ButtonDelete,
			Enabled: s.permission.Meets(PermissionManagement) && count >= 1,
		}
	}

	if s.handlers.OnPermissions != nil {
		states[ButtonPermissions] = ButtonState{
			Name:    ButtonPermissions,
			Enabled: s.permission.Meets(PermissionAll) && count >= 1,
		}
	}

	for _, button := range s.custom {
		enabled := s.permission.Meets(button.Permission)
		if enabled && button.Select != nil {
			enabled = button.Select(s.Selection())
		}

		states[button.Name] = ButtonState{Name: button.Name, Enabled: enabled}
	}

	s.states = states
}

package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ActionKey is the argument that selects an action on multi-action tools.
const ActionKey = "action"

// Handler executes one action of a tool.
type Handler func(ctx context.Context, args Args) (Output, error)

// Action binds an action name to its handler and required arguments.
type Action struct {
	Name        string
	Description string
	Required    []string
	Handler     Handler
}

// Actions is a verified action table. Construction fails when an action has
// no handler or a name is declared twice, so a tool with a broken table
// never reaches the registry.
type Actions struct {
	order  []string
	byName map[string]Action
}

// NewActions builds an action table.
func NewActions(actions ...Action) (*Actions, error) {
	if len(actions) == 0 {
		return nil, errors.New("action table is empty")
	}
	t := &Actions{byName: make(map[string]Action, len(actions))}
	for _, a := range actions {
		if a.Name == "" {
			return nil, errors.New("action name must not be empty")
		}
		if a.Handler == nil {
			return nil, fmt.Errorf("action %q has no handler", a.Name)
		}
		if _, dup := t.byName[a.Name]; dup {
			return nil, fmt.Errorf("action %q declared twice", a.Name)
		}
		t.byName[a.Name] = a
		t.order = append(t.order, a.Name)
	}
	return t, nil
}

// MustActions is like NewActions but panics on an invalid table. It is
// meant for tool constructors where the table is a literal.
func MustActions(actions ...Action) *Actions {
	t, err := NewActions(actions...)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the action names in declaration order.
func (t *Actions) Names() []string {
	return append([]string(nil), t.order...)
}

// Lookup returns the action selected by args.
func (t *Actions) Lookup(args Args) (Action, error) {
	name, ok := args.String(ActionKey)
	if !ok || strings.TrimSpace(name) == "" {
		return Action{}, fmt.Errorf("%w: %s", ErrMissingArgument, ActionKey)
	}
	a, ok := t.byName[name]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnknownAction, name, strings.Join(t.order, ", "))
	}
	return a, nil
}

// Validate checks that the selected action exists and its required
// arguments are present.
func (t *Actions) Validate(args Args) error {
	a, err := t.Lookup(args)
	if err != nil {
		return err
	}
	var errs []error
	for _, key := range a.Required {
		if !args.Has(key) {
			errs = append(errs, fmt.Errorf("%w: action %s requires %s", ErrMissingArgument, a.Name, key))
		}
	}
	return errors.Join(errs...)
}

// Run executes the selected action. An unknown action is a validation
// failure, never a fault.
func (t *Actions) Run(ctx context.Context, args Args) (Output, error) {
	a, err := t.Lookup(args)
	if err != nil {
		return Fail(ConditionValidation, "%v", err), nil
	}
	return a.Handler(ctx, args)
}

// Schema returns a schema whose first parameter is the action selector,
// followed by params.
func (t *Actions) Schema(params ...Param) Schema {
	action := Param{
		Name:        ActionKey,
		Type:        TypeString,
		Description: "Operation to perform",
		Required:    true,
		Enum:        t.Names(),
	}
	return Schema{Params: append([]Param{action}, params...)}
}

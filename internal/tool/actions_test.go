package tool

import (
	"context"
	"errors"
	"testing"
)

func okHandler(content string) Handler {
	return func(context.Context, Args) (Output, error) { return Text(content), nil }
}

func TestNewActions_Verification(t *testing.T) {
	t.Parallel()

	if _, err := NewActions(); err == nil {
		t.Error("expected error for empty table")
	}
	if _, err := NewActions(Action{Name: "read"}); err == nil {
		t.Error("expected error for missing handler")
	}
	if _, err := NewActions(
		Action{Name: "read", Handler: okHandler("a")},
		Action{Name: "read", Handler: okHandler("b")},
	); err == nil {
		t.Error("expected error for duplicate action")
	}
}

func TestMustActions_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustActions(Action{Name: "broken"})
}

func TestActions_ValidateAndRun(t *testing.T) {
	t.Parallel()

	table := MustActions(
		Action{Name: "query", Required: []string{"sql"}, Handler: okHandler("rows")},
		Action{Name: "status", Handler: okHandler("connected")},
	)

	if err := table.Validate(Args{}); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("missing action: got %v", err)
	}
	if err := table.Validate(Args{"action": "drop"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action: got %v", err)
	}
	if err := table.Validate(Args{"action": "query"}); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("missing sql: got %v", err)
	}
	if err := table.Validate(Args{"action": "query", "sql": "select 1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	out, err := table.Run(t.Context(), Args{"action": "status"})
	if err != nil || out.Content != "connected" {
		t.Fatalf("Run(status) = %+v, %v", out, err)
	}

	out, err = table.Run(t.Context(), Args{"action": "nope"})
	if err != nil {
		t.Fatalf("unknown action must not be an error: %v", err)
	}
	if !out.IsError || out.Condition != ConditionValidation {
		t.Fatalf("unknown action output = %+v", out)
	}
}

func TestActions_Schema(t *testing.T) {
	t.Parallel()

	table := MustActions(
		Action{Name: "read", Handler: okHandler("")},
		Action{Name: "write", Handler: okHandler("")},
	)
	s := table.Schema(Param{Name: "path", Type: TypeString})

	p, ok := s.Param(ActionKey)
	if !ok || !p.Required || len(p.Enum) != 2 {
		t.Fatalf("action param = %+v", p)
	}
	if err := s.Validate(Args{"action": "delete"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected enum violation, got %v", err)
	}
}

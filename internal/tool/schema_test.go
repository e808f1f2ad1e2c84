package tool

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSchemaValidate(t *testing.T) {
	t.Parallel()

	schema := Schema{Params: []Param{
		{Name: "expression", Type: TypeString, Required: true, NotBlank: true},
		{Name: "precision", Type: TypeInteger},
		{Name: "mode", Type: TypeString, Enum: []string{"statements", "expression"}},
		{Name: "timeout", Type: TypeNumber},
		{Name: "verbose", Type: TypeBoolean},
	}}

	tests := []struct {
		name    string
		args    Args
		wantErr error
	}{
		{name: "valid", args: Args{"expression": "1+1", "precision": 2.0, "timeout": 1.5}},
		{name: "yaml int precision", args: Args{"expression": "1+1", "precision": 3}},
		{name: "missing required", args: Args{}, wantErr: ErrMissingArgument},
		{name: "nil required", args: Args{"expression": nil}, wantErr: ErrMissingArgument},
		{name: "blank", args: Args{"expression": "   "}, wantErr: ErrInvalidArgument},
		{name: "wrong type", args: Args{"expression": 12}, wantErr: ErrInvalidArgument},
		{name: "fractional integer", args: Args{"expression": "1", "precision": 1.5}, wantErr: ErrInvalidArgument},
		{name: "string number", args: Args{"expression": "1", "timeout": "3"}, wantErr: ErrInvalidArgument},
		{name: "enum", args: Args{"expression": "1", "mode": "eval"}, wantErr: ErrInvalidArgument},
		{name: "bool", args: Args{"expression": "1", "verbose": "yes"}, wantErr: ErrInvalidArgument},
		{name: "unknown key", args: Args{"expression": "1", "extra": true}, wantErr: ErrUnknownArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := schema.Validate(tt.args)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSchemaValidate_AllowExtra(t *testing.T) {
	t.Parallel()

	s := Schema{AllowExtra: true}
	if err := s.Validate(Args{"anything": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchemaJSONSchema(t *testing.T) {
	t.Parallel()

	s := Schema{Params: []Param{
		{Name: "sql", Type: TypeString, Required: true, Description: "SELECT statement"},
		{Name: "mode", Type: TypeString, Enum: []string{"a", "b"}},
		{Name: "value", Type: TypeAny},
	}}

	var doc struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
		Additional bool                      `json:"additionalProperties"`
	}
	if err := json.Unmarshal(s.JSONSchema(), &doc); err != nil {
		t.Fatalf("invalid JSON schema: %v", err)
	}
	if doc.Type != "object" || doc.Additional {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if len(doc.Required) != 1 || doc.Required[0] != "sql" {
		t.Fatalf("required = %v, want [sql]", doc.Required)
	}
	if doc.Properties["sql"]["description"] != "SELECT statement" {
		t.Fatalf("sql property = %v", doc.Properties["sql"])
	}
	if _, typed := doc.Properties["value"]["type"]; typed {
		t.Fatal("any-typed params must not declare a JSON type")
	}
}

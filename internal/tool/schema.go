package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ParamType is the declared type of a tool argument.
type ParamType string

// Supported parameter types. They mirror JSON Schema primitive names.
const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
	TypeAny     ParamType = "any"
)

// Param declares one argument.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`

	// NotBlank rejects strings that are empty after trimming.
	NotBlank bool `json:"not_blank,omitempty"`

	// Enum restricts string values to the listed set.
	Enum []string `json:"enum,omitempty"`
}

// Schema is the typed argument schema a tool declares at registration.
type Schema struct {
	Params []Param `json:"params"`

	// AllowExtra accepts keys not declared in Params.
	AllowExtra bool `json:"allow_extra,omitempty"`
}

// Param returns the declared parameter with the given name.
func (s Schema) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks args against the schema. All violations are reported
// together.
func (s Schema) Validate(args Args) error {
	var errs []error
	for _, p := range s.Params {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingArgument, p.Name))
			}
			continue
		}
		if err := p.check(v); err != nil {
			errs = append(errs, err)
		}
	}
	if !s.AllowExtra {
		var unknown []string
		for k := range args {
			if _, ok := s.Param(k); !ok {
				unknown = append(unknown, k)
			}
		}
		slices.Sort(unknown)
		for _, k := range unknown {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownArgument, k))
		}
	}
	return errors.Join(errs...)
}

func (p Param) check(v any) error {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return p.typeErr(v)
		}
		if p.NotBlank && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, p.Name)
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return fmt.Errorf("%w: %s must be one of %s, got %q",
				ErrInvalidArgument, p.Name, strings.Join(p.Enum, ", "), s)
		}
	case TypeNumber:
		if _, isStr := v.(string); isStr {
			return p.typeErr(v)
		}
		if _, ok := toFloat(v); !ok {
			return p.typeErr(v)
		}
	case TypeInteger:
		if _, isStr := v.(string); isStr {
			return p.typeErr(v)
		}
		if _, ok := toInt(v); !ok {
			return p.typeErr(v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return p.typeErr(v)
		}
	case TypeObject:
		switch v.(type) {
		case map[string]any, Args:
		default:
			return p.typeErr(v)
		}
	case TypeArray:
		if _, ok := v.([]any); !ok {
			return p.typeErr(v)
		}
	case TypeAny, "":
	default:
		return fmt.Errorf("%w: %s has unsupported type %q", ErrInvalidArgument, p.Name, p.Type)
	}
	return nil
}

func (p Param) typeErr(v any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidArgument, p.Name, p.Type, v)
}

// JSONSchema renders the schema as a JSON Schema object, the form MCP
// clients and HTTP callers expect.
func (s Schema) JSONSchema() json.RawMessage {
	props := make(map[string]any, len(s.Params))
	required := make([]string, 0)
	for _, p := range s.Params {
		prop := map[string]any{}
		if p.Type != TypeAny && p.Type != "" {
			prop["type"] = string(p.Type)
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": s.AllowExtra,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return b
}

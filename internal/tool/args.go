package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args is the flat argument mapping passed to a tool.
type Args map[string]any

// Has reports whether key is present with a non-nil value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the string value of key.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns the string value of key, or def when absent.
func (a Args) StringOr(key, def string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return def
}

// Int returns key as an integer. Integral floats, json.Number and
// numeric strings are accepted because plans arrive from JSON and YAML.
func (a Args) Int(key string) (int, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, false
	}
	return toInt(v)
}

// Float returns key as a float64.
func (a Args) Float(key string) (float64, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, false
	}
	return toFloat(v)
}

// Bool returns key as a boolean.
func (a Args) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	cp := make(Args, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// JSON renders the arguments for logs and audit trails.
func (a Args) JSON() string {
	if len(a) == 0 {
		return "{}"
	}
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(a))
	}
	return string(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		return i, err == nil
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

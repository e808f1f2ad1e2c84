package tool

import (
	"encoding/json"
	"testing"
)

func TestArgs_Accessors(t *testing.T) {
	t.Parallel()

	a := Args{
		"name":   "calc",
		"float":  2.0,
		"frac":   2.5,
		"int":    7,
		"num":    json.Number("12"),
		"strnum": " 9 ",
		"flag":   true,
		"strb":   "false",
		"nil":    nil,
	}

	if s, ok := a.String("name"); !ok || s != "calc" {
		t.Errorf("String(name) = %q, %v", s, ok)
	}
	if _, ok := a.String("int"); ok {
		t.Error("String(int) should fail")
	}
	if got := a.StringOr("missing", "def"); got != "def" {
		t.Errorf("StringOr = %q", got)
	}

	intTests := map[string]int{"float": 2, "int": 7, "num": 12, "strnum": 9}
	for key, want := range intTests {
		if got, ok := a.Int(key); !ok || got != want {
			t.Errorf("Int(%s) = %d, %v; want %d", key, got, ok, want)
		}
	}
	if _, ok := a.Int("frac"); ok {
		t.Error("Int(frac) should fail for non-integral values")
	}
	if f, ok := a.Float("frac"); !ok || f != 2.5 {
		t.Errorf("Float(frac) = %v, %v", f, ok)
	}
	if b, ok := a.Bool("flag"); !ok || !b {
		t.Errorf("Bool(flag) = %v, %v", b, ok)
	}
	if b, ok := a.Bool("strb"); !ok || b {
		t.Errorf("Bool(strb) = %v, %v", b, ok)
	}
	if a.Has("nil") || a.Has("missing") || !a.Has("name") {
		t.Error("Has reported wrong presence")
	}
}

func TestArgs_JSON(t *testing.T) {
	t.Parallel()

	if got := (Args{}).JSON(); got != "{}" {
		t.Errorf("empty JSON = %q", got)
	}
	if got := (Args{"a": 1}).JSON(); got != `{"a":1}` {
		t.Errorf("JSON = %q", got)
	}
}

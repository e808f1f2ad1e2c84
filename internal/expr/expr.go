// Package expr evaluates arithmetic expressions without ever handing the
// input to a general-purpose interpreter. Input is normalized, parsed by a
// small recursive-descent parser into a closed set of node kinds and
// evaluated against an allow-list of constants and functions.
package expr

import "strings"

// Evaluate normalizes, parses and evaluates s, and formats the result with
// the given precision (NoPrecision for the automatic format).
func Evaluate(s string, precision int) (string, error) {
	v, err := EvaluateValue(s)
	if err != nil {
		return "", err
	}
	return Format(v, precision), nil
}

// EvaluateValue is Evaluate without the formatting step.
func EvaluateValue(s string) (Value, error) {
	n, err := Parse(Normalize(strings.TrimSpace(s)))
	if err != nil {
		return Value{}, err
	}
	return Eval(n)
}

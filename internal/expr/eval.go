package expr

import (
	"fmt"
	"math"
	"slices"
)

// Value is the result of evaluating a node: a number, or a boolean from a
// comparison. Booleans count as 0 and 1 in arithmetic.
type Value struct {
	Num    float64
	Bool   bool
	IsBool bool
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value { return Value{Num: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{Bool: b, IsBool: true} }

// Float returns v as a number.
func (v Value) Float() float64 {
	if v.IsBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Num
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Names returns the allow-listed constant and function names.
func Names() []string {
	names := make([]string, 0, len(constants)+len(functions))
	for n := range constants {
		names = append(names, n)
	}
	for n := range functions {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Eval evaluates a parsed expression.
func Eval(n Node) (Value, error) {
	switch n := n.(type) {
	case Number:
		return NumberValue(n.Value), nil
	case Name:
		if c, ok := constants[n.Ident]; ok {
			return NumberValue(c), nil
		}
		if _, ok := functions[n.Ident]; ok {
			return Value{}, fmt.Errorf("%w: function %s must be called", ErrUnsupportedExpression, n.Ident)
		}
		return Value{}, fmt.Errorf("%w: unknown name %q", ErrUnsupportedExpression, n.Ident)
	case Unary:
		x, err := Eval(n.X)
		if err != nil {
			return Value{}, err
		}
		if n.Op == "-" {
			return NumberValue(-x.Float()), nil
		}
		return NumberValue(x.Float()), nil
	case Binary:
		x, err := Eval(n.X)
		if err != nil {
			return Value{}, err
		}
		y, err := Eval(n.Y)
		if err != nil {
			return Value{}, err
		}
		f, err := binary(n.Op, x.Float(), y.Float())
		if err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	case Call:
		return call(n)
	case Compare:
		return compare(n)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedExpression, n)
	}
}

func binary(op string, x, y float64) (float64, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return 0, ErrDivisionByZero
		}
		return x / y, nil
	case "//":
		if y == 0 {
			return 0, fmt.Errorf("%w: integer division or modulo by zero", ErrDivisionByZero)
		}
		q, _ := floorDivMod(x, y)
		return q, nil
	case "%":
		if y == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", ErrDivisionByZero)
		}
		_, m := floorDivMod(x, y)
		return m, nil
	case "**":
		return power(x, y)
	default:
		return 0, fmt.Errorf("%w: operator %s", ErrUnsupportedExpression, op)
	}
}

// floorDivMod follows Python float semantics: the remainder takes the
// sign of the divisor and the quotient is floored.
func floorDivMod(x, y float64) (float64, float64) {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 {
		if (y < 0) != (mod < 0) {
			mod += y
			div--
		}
	} else {
		mod = math.Copysign(0, y)
	}
	if div == 0 {
		return math.Copysign(0, x/y), mod
	}
	floor := math.Floor(div)
	if div-floor > 0.5 {
		floor++
	}
	return floor, mod
}

func power(x, y float64) (float64, error) {
	if x == 0 && y < 0 {
		return 0, fmt.Errorf("%w: 0 cannot be raised to a negative power", ErrDivisionByZero)
	}
	if x < 0 && y != math.Trunc(y) {
		return 0, fmt.Errorf("%w: negative number raised to a fractional power", ErrDomain)
	}
	r := math.Pow(x, y)
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: result too large", ErrDomain)
	}
	return r, nil
}

func compare(n Compare) (Value, error) {
	left, err := Eval(n.First)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.Ops {
		right, err := Eval(n.Operands[i])
		if err != nil {
			return Value{}, err
		}
		a, b := left.Float(), right.Float()
		var ok bool
		switch op {
		case "<":
			ok = a < b
		case "<=":
			ok = a <= b
		case ">":
			ok = a > b
		case ">=":
			ok = a >= b
		case "==":
			ok = a == b
		case "!=":
			ok = a != b
		}
		if !ok {
			return BoolValue(false), nil
		}
		left = right
	}
	return BoolValue(true), nil
}

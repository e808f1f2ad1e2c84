package expr

import (
	"fmt"
	"math"
)

type function struct {
	minArgs int
	maxArgs int // -1 means variadic
	fn      func(args []Value) (Value, error)
}

var functions = map[string]function{
	"abs": {1, 1, func(a []Value) (Value, error) {
		return NumberValue(math.Abs(a[0].Float())), nil
	}},
	"round": {1, 2, roundFn},
	"max":   {1, -1, extremum(func(a, b float64) bool { return a > b })},
	"min":   {1, -1, extremum(func(a, b float64) bool { return a < b })},
	"sum": {0, -1, func(a []Value) (Value, error) {
		total := 0.0
		for _, v := range a {
			total += v.Float()
		}
		return NumberValue(total), nil
	}},
	"sqrt": {1, 1, unary(func(x float64) (float64, error) {
		if x < 0 {
			return 0, ErrDomain
		}
		return math.Sqrt(x), nil
	})},
	"sin": {1, 1, unary(finite(math.Sin))},
	"cos": {1, 1, unary(finite(math.Cos))},
	"tan": {1, 1, unary(finite(math.Tan))},
	"log": {1, 2, logFn},
	"log10": {1, 1, unary(func(x float64) (float64, error) {
		if x <= 0 {
			return 0, ErrDomain
		}
		r := math.Log10(x)
		// Exact powers of ten give exact exponents.
		if ri := math.Round(r); math.Abs(r-ri) < 1e-9 && math.Pow(10, ri) == x {
			r = ri
		}
		return r, nil
	})},
	"exp": {1, 1, unary(func(x float64) (float64, error) {
		r := math.Exp(x)
		if math.IsInf(r, 1) && !math.IsInf(x, 1) {
			return 0, fmt.Errorf("%w: math range error", ErrDomain)
		}
		return r, nil
	})},
	"ceil":  {1, 1, unary(integral(math.Ceil))},
	"floor": {1, 1, unary(integral(math.Floor))},
}

func call(n Call) (Value, error) {
	f, ok := functions[n.Func]
	if !ok {
		if _, isConst := constants[n.Func]; isConst {
			return Value{}, fmt.Errorf("%w: %s is not callable", ErrUnsupportedExpression, n.Func)
		}
		return Value{}, fmt.Errorf("%w: unknown function %q", ErrUnsupportedExpression, n.Func)
	}
	if len(n.Args) < f.minArgs || (f.maxArgs >= 0 && len(n.Args) > f.maxArgs) {
		return Value{}, fmt.Errorf("%w: %s() %s, got %d", ErrArity, n.Func, arityText(f), len(n.Args))
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	v, err := f.fn(args)
	if err != nil {
		return Value{}, fmt.Errorf("%s(): %w", n.Func, err)
	}
	return v, nil
}

func arityText(f function) string {
	switch {
	case f.maxArgs < 0:
		return fmt.Sprintf("takes at least %d argument(s)", f.minArgs)
	case f.minArgs == f.maxArgs:
		return fmt.Sprintf("takes exactly %d argument(s)", f.minArgs)
	default:
		return fmt.Sprintf("takes %d to %d arguments", f.minArgs, f.maxArgs)
	}
}

func unary(fn func(float64) (float64, error)) func([]Value) (Value, error) {
	return func(a []Value) (Value, error) {
		r, err := fn(a[0].Float())
		if err != nil {
			return Value{}, err
		}
		return NumberValue(r), nil
	}
}

// finite wraps a trigonometric function: infinite input has no result.
func finite(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		if math.IsInf(x, 0) {
			return 0, ErrDomain
		}
		return fn(x), nil
	}
}

func integral(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("%w: cannot convert %v to integer", ErrDomain, x)
		}
		return fn(x), nil
	}
}

func extremum(better func(a, b float64) bool) func([]Value) (Value, error) {
	return func(a []Value) (Value, error) {
		best := a[0]
		for _, v := range a[1:] {
			if better(v.Float(), best.Float()) {
				best = v
			}
		}
		return best, nil
	}
}

// roundFn rounds half to even, as Python's round does.
func roundFn(a []Value) (Value, error) {
	x := a[0].Float()
	if len(a) == 1 {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return Value{}, fmt.Errorf("%w: cannot round %v", ErrDomain, x)
		}
		return NumberValue(math.RoundToEven(x)), nil
	}
	digits := a[1].Float()
	if digits != math.Trunc(digits) {
		return Value{}, fmt.Errorf("%w: ndigits must be an integer", ErrDomain)
	}
	scale := math.Pow(10, digits)
	if math.IsInf(scale, 0) || scale == 0 {
		return NumberValue(x), nil
	}
	return NumberValue(math.RoundToEven(x*scale) / scale), nil
}

func logFn(a []Value) (Value, error) {
	x := a[0].Float()
	if x <= 0 {
		return Value{}, ErrDomain
	}
	if len(a) == 1 {
		return NumberValue(math.Log(x)), nil
	}
	base := a[1].Float()
	if base <= 0 {
		return Value{}, ErrDomain
	}
	if base == 1 {
		return Value{}, ErrDivisionByZero
	}
	return NumberValue(math.Log(x) / math.Log(base)), nil
}

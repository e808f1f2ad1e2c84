package sandbox

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// modules is the allow-listed namespace. Each entry is predeclared under
// its key and can also be loaded with load("<key>", ...).
var modules = map[string]*starlarkstruct.Module{
	"math":     math.Module,
	"json":     json.Module,
	"datetime": time.Module,
	"random":   randomModule,
}

var randomModule = &starlarkstruct.Module{
	Name: "random",
	Members: starlark.StringDict{
		"random":  starlark.NewBuiltin("random", randomFloat),
		"uniform": starlark.NewBuiltin("uniform", randomUniform),
		"randint": starlark.NewBuiltin("randint", randomInt),
		"choice":  starlark.NewBuiltin("choice", randomChoice),
	},
}

func randomFloat(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.Float(rand.Float64()), nil
}

func randomUniform(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var a, z starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &a, &z); err != nil {
		return nil, err
	}
	lo, ok1 := starlark.AsFloat(a)
	hi, ok2 := starlark.AsFloat(z)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%s: bounds must be numbers", b.Name())
	}
	return starlark.Float(lo + (hi-lo)*rand.Float64()), nil
}

func randomInt(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var lo, hi int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &lo, &hi); err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, fmt.Errorf("%s: empty range [%d, %d]", b.Name(), lo, hi)
	}
	return starlark.MakeInt(lo + rand.IntN(hi-lo+1)), nil
}

func randomChoice(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seq starlark.Indexable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &seq); err != nil {
		return nil, err
	}
	if seq.Len() == 0 {
		return nil, fmt.Errorf("%s: cannot choose from an empty sequence", b.Name())
	}
	return seq.Index(rand.IntN(seq.Len())), nil
}

// loadModule resolves load("<name>", ...). The returned dict holds the
// module's members and the module itself under its own name.
func loadModule(_ *starlark.Thread, name string) (starlark.StringDict, error) {
	m, ok := modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not available (available: %s)", name, strings.Join(ModuleNames(), ", "))
	}
	dict := make(starlark.StringDict, len(m.Members)+1)
	for k, v := range m.Members {
		dict[k] = v
	}
	dict[name] = m
	return dict, nil
}

// ModuleNames lists the importable modules in a stable order.
func ModuleNames() []string {
	return []string{"datetime", "json", "math", "random"}
}

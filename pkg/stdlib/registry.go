// Package stdlib implements the builtin functions exposed to Pris
// documents: the frame primitives (line, fill_rectangle, fit), text
// layout (t, glyph), image embedding, and conversions.
package stdlib

import (
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/types"
)

// BuiltinFunc is the signature of all builtins: external resources, the
// caller's environment for ambient styling lookups, and the evaluated
// arguments.
type BuiltinFunc func(res *resources.Manager, env *types.Env, args []types.Value) (types.Value, error)

// Registry holds the builtin functions and implements the evaluator's
// Builtins interface.
type Registry struct {
	res   *resources.Manager
	funcs map[string]BuiltinFunc
}

// NewRegistry creates a registry with all builtins registered.
func NewRegistry(res *resources.Manager) *Registry {
	r := &Registry{
		res:   res,
		funcs: make(map[string]BuiltinFunc),
	}
	r.Register("fit", fit)
	r.Register("line", line)
	r.Register("fill_rectangle", fillRectangle)
	r.Register("str", str)
	r.Register("t", t)
	r.Register("glyph", glyph)
	r.Register("image", image)
	return r
}

// Register adds a builtin to the registry.
func (r *Registry) Register(name string, fn BuiltinFunc) {
	r.funcs[name] = fn
}

// Has implements runtime.Builtins.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Call implements runtime.Builtins.
func (r *Registry) Call(name string, env *types.Env, args []types.Value) (types.Value, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return types.Value{}, types.NewUnresolvedNameError([]string{name})
	}
	return fn(r.res, env, args)
}

// validateArgs is the single gate every builtin passes its arguments
// through before destructuring them: the arity check first, then each
// argument's type tag left to right. Past this call, positional
// destructuring without a tag check cannot fail.
func validateArgs(name string, expected []types.ValType, actual []types.Value) error {
	if len(expected) != len(actual) {
		return types.NewArityError(name, len(expected), len(actual))
	}
	for i, ex := range expected {
		if ac := actual[i].Type(); ex != ac {
			return types.NewArgTypeError(name, i, ex, ac)
		}
	}
	return nil
}

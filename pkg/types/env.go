package types

import (
	"fmt"
	"strings"

	"github.com/prislang/pris/pkg/geom"
)

// Env is a scope in the environment chain. Lookup walks outward through
// the enclosing scopes; bindings are write-once within a scope, shadowing
// in a child scope is allowed.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv creates a new root scope.
func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Child creates a scope enclosed by this one.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: make(map[string]Value)}
}

// Define binds a name in this scope. Rebinding a name that already exists
// in this scope is an error; shadowing a name from an enclosing scope is
// not.
func (e *Env) Define(name string, v Value) error {
	if _, exists := e.vars[name]; exists {
		return NewValueError(fmt.Sprintf("'%s' is already defined in this scope", name))
	}
	e.vars[name] = v
	return nil
}

// Names returns the names bound in this scope only, in no particular
// order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}

// lookupLocal finds a name in this scope only.
func (e *Env) lookupLocal(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Lookup resolves a dotted identifier path. The first segment is resolved
// through the scope chain; each further segment descends into the local
// bindings of a frame value.
func (e *Env) Lookup(path []string) (Value, error) {
	v, ok := e.lookupChain(path[0])
	if !ok {
		return Value{}, NewUnresolvedNameError(path)
	}

	for i := 1; i < len(path); i++ {
		if v.Kind() != KindFrame {
			return Value{}, NewTypeError(fmt.Sprintf(
				"'%s' is a %s, it has no member '%s'",
				strings.Join(path[:i], "."), v.Type(), path[i]))
		}
		fe := v.FrameEnv()
		if fe == nil {
			return Value{}, NewUnresolvedNameError(path)
		}
		mv, ok := fe.lookupLocal(path[i])
		if !ok {
			return Value{}, NewUnresolvedNameError(path)
		}
		v = mv
	}
	return v, nil
}

// lookupChain finds a single name, walking outward through the scopes.
func (e *Env) lookupChain(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// LookupStr resolves a path that must hold a string.
func (e *Env) LookupStr(path ...string) (string, error) {
	v, err := e.Lookup(path)
	if err != nil {
		return "", err
	}
	if v.Kind() != KindStr {
		return "", NewTypeError(fmt.Sprintf(
			"'%s' must be a str, but it is a %s", strings.Join(path, "."), v.Type()))
	}
	return v.AsStr(), nil
}

// LookupLen resolves a path that must hold a length: a number with unit
// exponent 1.
func (e *Env) LookupLen(path ...string) (float64, error) {
	v, err := e.Lookup(path)
	if err != nil {
		return 0, err
	}
	if v.Kind() != KindNum || v.Dim() != 1 {
		return 0, NewTypeError(fmt.Sprintf(
			"'%s' must be a %s, but it is a %s",
			strings.Join(path, "."), NumType(1), v.Type()))
	}
	return v.AsNum(), nil
}

// LookupNum resolves a path that must hold a dimensionless number.
func (e *Env) LookupNum(path ...string) (float64, error) {
	v, err := e.Lookup(path)
	if err != nil {
		return 0, err
	}
	if v.Kind() != KindNum || v.Dim() != 0 {
		return 0, NewTypeError(fmt.Sprintf(
			"'%s' must be a %s, but it is a %s",
			strings.Join(path, "."), NumType(0), v.Type()))
	}
	return v.AsNum(), nil
}

// LookupColor resolves a path that must hold a color.
func (e *Env) LookupColor(path ...string) (geom.Color, error) {
	v, err := e.Lookup(path)
	if err != nil {
		return geom.Color{}, err
	}
	if v.Kind() != KindColor {
		return geom.Color{}, NewTypeError(fmt.Sprintf(
			"'%s' must be a color, but it is a %s", strings.Join(path, "."), v.Type()))
	}
	return v.AsColor(), nil
}

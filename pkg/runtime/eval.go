// Package runtime implements the Pris evaluator: a tree walk over parsed
// documents and terms that produces runtime values and composes frames.
package runtime

import (
	"fmt"
	"math"

	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/geom"
	"github.com/prislang/pris/pkg/types"
)

// Builtins resolves builtin functions by name. It is implemented by the
// stdlib registry; the indirection avoids a dependency cycle between the
// evaluator and the builtins, which need the evaluator's environment.
type Builtins interface {
	// Call invokes a named builtin with already-evaluated arguments.
	Call(name string, env *types.Env, args []types.Value) (types.Value, error)

	// Has reports whether a builtin with the given name exists.
	Has(name string) bool
}

// Loader resolves import paths to parsed documents. The CLI provides a
// file-based implementation; tests provide in-memory ones.
type Loader interface {
	Load(path []string) (*ast.Document, error)
}

// Default canvas size in canonical units. One canonical unit is one point;
// the 'w' and 'h' unit literals are fractions of these.
const (
	DefaultCanvasWidth  = 1920.0
	DefaultCanvasHeight = 1080.0
)

// Evaluator evaluates terms and documents. It is single-threaded and
// synchronous: evaluation runs to completion or to the first error.
type Evaluator struct {
	builtins Builtins
	loader   Loader

	// Canvas size in canonical units, used to resolve the w and h unit
	// literals.
	CanvasWidth  float64
	CanvasHeight float64
}

// New creates an evaluator. The loader may be nil, in which case import
// statements fail.
func New(builtins Builtins, loader Loader) *Evaluator {
	return &Evaluator{
		builtins:     builtins,
		loader:       loader,
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
	}
}

// EvalDocument evaluates a top-level document in a child scope of env and
// returns the resulting frame value.
func (ev *Evaluator) EvalDocument(env *types.Env, doc *ast.Document) (types.Value, error) {
	child := env.Child()
	frame := geom.NewFrame()
	ret, err := ev.evalInto(child, frame, doc)
	if err != nil {
		return types.Value{}, err
	}
	if ret != nil {
		return *ret, nil
	}
	return types.NewFrame(frame, child), nil
}

// evalInto runs a document's statements against the given scope and
// frame. It returns a non-nil value when a return statement was hit.
func (ev *Evaluator) evalInto(env *types.Env, frame *geom.Frame, doc *ast.Document) (*types.Value, error) {
	for _, stmt := range doc.Stmts {
		switch s := stmt.(type) {
		case *ast.Assign:
			v, err := ev.EvalTerm(env, s.Term)
			if err != nil {
				return nil, err
			}
			if err := env.Define(s.Name, v); err != nil {
				return nil, err
			}

		case *ast.FuncDef:
			fn := &types.Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
			if err := env.Define(s.Name, types.NewFn(fn)); err != nil {
				return nil, err
			}

		case *ast.Put:
			if err := ev.evalPut(env, frame, s); err != nil {
				return nil, err
			}

		case *ast.Return:
			v, err := ev.EvalTerm(env, s.Term)
			if err != nil {
				return nil, err
			}
			return &v, nil

		case *ast.Import:
			if err := ev.evalImport(env, frame, s); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unsupported statement type %T", stmt)
		}
	}
	return nil, nil
}

// evalPut places a frame into the enclosing frame, at the current anchor
// or at an explicit 1-dimensioned coordinate, and advances the anchor to
// the placed frame's anchor.
func (ev *Evaluator) evalPut(env *types.Env, frame *geom.Frame, s *ast.Put) error {
	v, err := ev.EvalTerm(env, s.Term)
	if err != nil {
		return err
	}
	if v.Kind() != types.KindFrame {
		return types.NewTypeError(fmt.Sprintf(
			"'put' needs a frame, but a %s was given", v.Type()))
	}

	offset := frame.Anchor()
	if s.At != nil {
		at, err := ev.EvalTerm(env, s.At)
		if err != nil {
			return err
		}
		if at.Kind() != types.KindCoord || at.Dim() != 1 {
			return types.NewTypeError(fmt.Sprintf(
				"'at' needs a %s, but a %s was given", types.CoordType(1), at.Type()))
		}
		x, y := at.AsCoord()
		offset = geom.Vec2{X: x, Y: y}
	}

	sub := v.AsFrame()
	frame.PlaceFrame(offset, sub)
	frame.SetAnchor(offset.Add(sub.Anchor()))
	return nil
}

// evalImport loads a document and runs its statements against the current
// scope and frame, binding its top-level names here.
func (ev *Evaluator) evalImport(env *types.Env, frame *geom.Frame, s *ast.Import) error {
	if ev.loader == nil {
		return types.NewMissingFileError(s.Path.String())
	}
	doc, err := ev.loader.Load(s.Path.Path)
	if err != nil {
		return err
	}
	_, err = ev.evalInto(env, frame, doc)
	return err
}

// EvalTerm evaluates a single term in the given scope.
func (ev *Evaluator) EvalTerm(env *types.Env, term ast.Term) (types.Value, error) {
	switch t := term.(type) {
	case *ast.StringLit:
		return types.NewStr(t.Value), nil

	case *ast.Num:
		return ev.evalNum(env, t)

	case *ast.Color:
		return types.NewColor(geom.Color{
			R: float64(t.R) / 255.0,
			G: float64(t.G) / 255.0,
			B: float64(t.B) / 255.0,
		}), nil

	case *ast.Idents:
		return env.Lookup(t.Path)

	case *ast.Coord:
		return ev.evalCoord(env, t)

	case *ast.BinTerm:
		return ev.evalBinTerm(env, t)

	case *ast.FnCall:
		return ev.evalCall(env, t)

	case *ast.Block:
		return ev.EvalDocument(env, t.Body)

	default:
		return types.Value{}, fmt.Errorf("unsupported term type %T", term)
	}
}

// evalNum resolves a number literal's unit to a canonical length. The w
// and h units are fractions of the canvas size; em scales by the ambient
// font size; pt is the canonical unit itself.
func (ev *Evaluator) evalNum(env *types.Env, t *ast.Num) (types.Value, error) {
	switch t.Unit {
	case ast.UnitNone:
		return types.NewNum(t.Value, 0), nil
	case ast.UnitPt:
		return types.NewNum(t.Value, 1), nil
	case ast.UnitW:
		return types.NewNum(t.Value*ev.CanvasWidth, 1), nil
	case ast.UnitH:
		return types.NewNum(t.Value*ev.CanvasHeight, 1), nil
	case ast.UnitEm:
		fontSize, err := env.LookupLen("font_size")
		if err != nil {
			return types.Value{}, err
		}
		return types.NewNum(t.Value*fontSize, 1), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported unit %v", t.Unit)
	}
}

// evalCoord evaluates a coordinate; both components must be numbers with
// the same unit exponent, which becomes the coordinate's exponent.
func (ev *Evaluator) evalCoord(env *types.Env, t *ast.Coord) (types.Value, error) {
	x, err := ev.EvalTerm(env, t.X)
	if err != nil {
		return types.Value{}, err
	}
	y, err := ev.EvalTerm(env, t.Y)
	if err != nil {
		return types.Value{}, err
	}
	if x.Kind() != types.KindNum || y.Kind() != types.KindNum {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"coordinate components must be numbers, found %s and %s", x.Type(), y.Type()))
	}
	if x.Dim() != y.Dim() {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"coordinate components must have the same dimension, found %s and %s",
			x.Type(), y.Type()))
	}
	return types.NewCoord(x.AsNum(), y.AsNum(), x.Dim()), nil
}

// evalBinTerm applies a binary operator with the unit-exponent algebra:
// addition and subtraction need matching exponents, multiplication and
// division add and subtract them, and exponentiation multiplies the base's
// exponent by an integral dimensionless power.
func (ev *Evaluator) evalBinTerm(env *types.Env, t *ast.BinTerm) (types.Value, error) {
	left, err := ev.EvalTerm(env, t.Left)
	if err != nil {
		return types.Value{}, err
	}
	right, err := ev.EvalTerm(env, t.Right)
	if err != nil {
		return types.Value{}, err
	}

	switch t.Op {
	case ast.OpAdd, ast.OpSub:
		return evalAddSub(t.Op, left, right)
	case ast.OpMul:
		return evalMul(left, right)
	case ast.OpDiv:
		return evalDiv(left, right)
	case ast.OpExp:
		return evalExp(left, right)
	default:
		return types.Value{}, fmt.Errorf("unsupported binary operator %v", t.Op)
	}
}

func evalAddSub(op ast.BinOp, left, right types.Value) (types.Value, error) {
	sign := 1.0
	if op == ast.OpSub {
		sign = -1.0
	}

	if left.Kind() == types.KindNum && right.Kind() == types.KindNum {
		if left.Dim() != right.Dim() {
			return types.Value{}, types.NewTypeError(fmt.Sprintf(
				"cannot apply '%s' to a %s and a %s", op, left.Type(), right.Type()))
		}
		return types.NewNum(left.AsNum()+sign*right.AsNum(), left.Dim()), nil
	}

	if left.Kind() == types.KindCoord && right.Kind() == types.KindCoord {
		if left.Dim() != right.Dim() {
			return types.Value{}, types.NewTypeError(fmt.Sprintf(
				"cannot apply '%s' to a %s and a %s", op, left.Type(), right.Type()))
		}
		lx, ly := left.AsCoord()
		rx, ry := right.AsCoord()
		return types.NewCoord(lx+sign*rx, ly+sign*ry, left.Dim()), nil
	}

	return types.Value{}, types.NewTypeError(fmt.Sprintf(
		"cannot apply '%s' to a %s and a %s", op, left.Type(), right.Type()))
}

func evalMul(left, right types.Value) (types.Value, error) {
	// Scaling a coordinate by a number is allowed on either side; the
	// exponents add.
	if left.Kind() == types.KindCoord && right.Kind() == types.KindNum {
		left, right = right, left
	}
	if left.Kind() == types.KindNum && right.Kind() == types.KindCoord {
		x, y := right.AsCoord()
		f := left.AsNum()
		return types.NewCoord(x*f, y*f, left.Dim()+right.Dim()), nil
	}
	if left.Kind() == types.KindNum && right.Kind() == types.KindNum {
		return types.NewNum(left.AsNum()*right.AsNum(), left.Dim()+right.Dim()), nil
	}
	return types.Value{}, types.NewTypeError(fmt.Sprintf(
		"cannot multiply a %s and a %s", left.Type(), right.Type()))
}

func evalDiv(left, right types.Value) (types.Value, error) {
	if right.Kind() != types.KindNum {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"cannot divide a %s by a %s", left.Type(), right.Type()))
	}
	switch left.Kind() {
	case types.KindNum:
		return types.NewNum(left.AsNum()/right.AsNum(), left.Dim()-right.Dim()), nil
	case types.KindCoord:
		x, y := left.AsCoord()
		f := right.AsNum()
		return types.NewCoord(x/f, y/f, left.Dim()-right.Dim()), nil
	default:
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"cannot divide a %s by a %s", left.Type(), right.Type()))
	}
}

func evalExp(left, right types.Value) (types.Value, error) {
	if left.Kind() != types.KindNum || right.Kind() != types.KindNum {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"cannot raise a %s to a %s", left.Type(), right.Type()))
	}
	if right.Dim() != 0 {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"an exponent must be dimensionless, found a %s", right.Type()))
	}

	exp := right.AsNum()
	if left.Dim() != 0 && exp != math.Trunc(exp) {
		return types.Value{}, types.NewTypeError(fmt.Sprintf(
			"cannot raise a %s to the non-integer power %g", left.Type(), exp))
	}
	return types.NewNum(math.Pow(left.AsNum(), exp), left.Dim()*int(exp)), nil
}

// evalCall evaluates the arguments left to right, then dispatches to a
// user-defined function from the environment or to a builtin.
func (ev *Evaluator) evalCall(env *types.Env, t *ast.FnCall) (types.Value, error) {
	args := make([]types.Value, len(t.Args))
	for i, a := range t.Args {
		v, err := ev.EvalTerm(env, a)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v
	}

	// A name bound in the environment shadows a builtin of the same name.
	if v, err := env.Lookup(t.Callee.Path); err == nil {
		if v.Kind() != types.KindFn {
			return types.Value{}, types.NewTypeError(fmt.Sprintf(
				"'%s' is a %s, it cannot be called", t.Callee, v.Type()))
		}
		return ev.callFunction(v.AsFn(), args)
	}

	name := t.Callee.String()
	if ev.builtins != nil && ev.builtins.Has(name) {
		return ev.builtins.Call(name, env, args)
	}
	return types.Value{}, types.NewUnresolvedNameError(t.Callee.Path)
}

// callFunction invokes a user-defined function: a child scope of the
// captured defining environment with the parameters bound, then the body.
func (ev *Evaluator) callFunction(fn *types.Function, args []types.Value) (types.Value, error) {
	if len(args) != len(fn.Params) {
		return types.Value{}, types.NewArityError(fn.Name, len(fn.Params), len(args))
	}

	scope := fn.Env.Child()
	for i, param := range fn.Params {
		if err := scope.Define(param, args[i]); err != nil {
			return types.Value{}, err
		}
	}
	return ev.EvalDocument(scope, fn.Body)
}

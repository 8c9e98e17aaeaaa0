// Package types defines the runtime value model of Pris: dimensioned
// numbers, coordinates, colors, strings, frames, and function values, plus
// the scoped environment and the error taxonomy of the evaluator.
package types

import (
	"fmt"
	"strconv"

	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/geom"
)

// ValueKind is the tag of a runtime value.
type ValueKind int

const (
	KindNum    ValueKind = iota // number with a unit exponent
	KindCoord                   // 2D coordinate with a shared unit exponent
	KindColor                   // RGB color
	KindStr                     // string
	KindFrame                   // frame handle, shared and immutable
	KindFn                      // function value
)

// ValType is a value's type tag together with its unit exponent. The
// exponent only applies to numbers and coordinates: dimension 0 is
// dimensionless, dimension 1 is length-like.
type ValType struct {
	Kind ValueKind
	Dim  int
}

// NumType returns the type of a number with the given dimension.
func NumType(dim int) ValType { return ValType{Kind: KindNum, Dim: dim} }

// CoordType returns the type of a coordinate with the given dimension.
func CoordType(dim int) ValType { return ValType{Kind: KindCoord, Dim: dim} }

// StrType is the type of strings.
var StrType = ValType{Kind: KindStr}

// ColorType is the type of colors.
var ColorType = ValType{Kind: KindColor}

// FrameType is the type of frames.
var FrameType = ValType{Kind: KindFrame}

// FnType is the type of function values.
var FnType = ValType{Kind: KindFn}

// String returns the human-readable type tag used in error messages.
func (t ValType) String() string {
	switch t.Kind {
	case KindNum:
		return "num (dimension " + strconv.Itoa(t.Dim) + ")"
	case KindCoord:
		return "coord (dimension " + strconv.Itoa(t.Dim) + ")"
	case KindColor:
		return "color"
	case KindStr:
		return "str"
	case KindFrame:
		return "frame"
	case KindFn:
		return "function"
	default:
		return "unknown"
	}
}

// Function is a callable value: either a builtin referenced by name, or a
// user-defined function with its body and captured defining environment.
type Function struct {
	Name   string
	Params []string
	Body   *ast.Document // nil for builtins
	Env    *Env          // captured defining environment, nil for builtins
}

// IsBuiltin reports whether the function is a builtin.
func (f *Function) IsBuiltin() bool {
	return f.Body == nil
}

// Value is a Pris runtime value. It uses a tagged union approach: exactly
// the fields for the value's kind are meaningful.
type Value struct {
	kind  ValueKind
	num   float64
	x, y  float64
	dim   int
	color geom.Color
	str   string
	frame *geom.Frame
	env   *Env // frame-local bindings, for dotted member lookup
	fn    *Function
}

// NewNum creates a number value with the given unit exponent.
func NewNum(v float64, dim int) Value {
	return Value{kind: KindNum, num: v, dim: dim}
}

// NewCoord creates a coordinate value with the given shared unit exponent.
func NewCoord(x, y float64, dim int) Value {
	return Value{kind: KindCoord, x: x, y: y, dim: dim}
}

// NewColor creates a color value.
func NewColor(c geom.Color) Value {
	return Value{kind: KindColor, color: c}
}

// NewStr creates a string value.
func NewStr(s string) Value {
	return Value{kind: KindStr, str: s}
}

// NewFrame creates a frame value. The env holds the frame's local
// bindings and may be nil for frames without any.
func NewFrame(f *geom.Frame, env *Env) Value {
	return Value{kind: KindFrame, frame: f, env: env}
}

// NewFn creates a function value.
func NewFn(f *Function) Value {
	return Value{kind: KindFn, fn: f}
}

// Type returns the value's type tag, including the unit exponent for
// numbers and coordinates.
func (v Value) Type() ValType {
	return ValType{Kind: v.kind, Dim: v.dim}
}

// Kind returns the value's kind without the dimension.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Dim returns the unit exponent. Only meaningful for numbers and
// coordinates.
func (v Value) Dim() int {
	return v.dim
}

// AsNum returns the numeric value. Panics if not a number.
func (v Value) AsNum() float64 {
	if v.kind != KindNum {
		panic(fmt.Sprintf("AsNum called on %s value", v.Type()))
	}
	return v.num
}

// AsCoord returns the coordinate components. Panics if not a coordinate.
func (v Value) AsCoord() (x, y float64) {
	if v.kind != KindCoord {
		panic(fmt.Sprintf("AsCoord called on %s value", v.Type()))
	}
	return v.x, v.y
}

// AsColor returns the color. Panics if not a color.
func (v Value) AsColor() geom.Color {
	if v.kind != KindColor {
		panic(fmt.Sprintf("AsColor called on %s value", v.Type()))
	}
	return v.color
}

// AsStr returns the string. Panics if not a string.
func (v Value) AsStr() string {
	if v.kind != KindStr {
		panic(fmt.Sprintf("AsStr called on %s value", v.Type()))
	}
	return v.str
}

// AsFrame returns the frame handle. Panics if not a frame.
func (v Value) AsFrame() *geom.Frame {
	if v.kind != KindFrame {
		panic(fmt.Sprintf("AsFrame called on %s value", v.Type()))
	}
	return v.frame
}

// FrameEnv returns the frame's local bindings, which may be nil. Panics if
// not a frame.
func (v Value) FrameEnv() *Env {
	if v.kind != KindFrame {
		panic(fmt.Sprintf("FrameEnv called on %s value", v.Type()))
	}
	return v.env
}

// AsFn returns the function value. Panics if not a function.
func (v Value) AsFn() *Function {
	if v.kind != KindFn {
		panic(fmt.Sprintf("AsFn called on %s value", v.Type()))
	}
	return v.fn
}

// String returns a human-readable representation for debugging.
func (v Value) String() string {
	switch v.kind {
	case KindNum:
		s := strconv.FormatFloat(v.num, 'g', -1, 64)
		if v.dim != 0 {
			s += fmt.Sprintf(" (dimension %d)", v.dim)
		}
		return s
	case KindCoord:
		return fmt.Sprintf("(%g, %g)", v.x, v.y)
	case KindColor:
		return fmt.Sprintf("#%02x%02x%02x",
			uint8(v.color.R*255.0+0.5), uint8(v.color.G*255.0+0.5), uint8(v.color.B*255.0+0.5))
	case KindStr:
		return v.str
	case KindFrame:
		return fmt.Sprintf("<frame with %d elements>", len(v.frame.Elements()))
	case KindFn:
		return fmt.Sprintf("<function %s>", v.fn.Name)
	}
	return "<unknown>"
}

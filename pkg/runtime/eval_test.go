package runtime

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/geom"
	"github.com/prislang/pris/pkg/parser"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/stdlib"
	"github.com/prislang/pris/pkg/types"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	res := resources.NewManager(nil, nil)
	return New(stdlib.NewRegistry(res), nil)
}

func evalTerm(t *testing.T, ev *Evaluator, env *types.Env, src string) types.Value {
	t.Helper()
	term, err := parser.ParseTerm([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := ev.EvalTerm(env, term)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func evalTermErr(t *testing.T, ev *Evaluator, env *types.Env, src string) error {
	t.Helper()
	term, err := parser.ParseTerm([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	_, err = ev.EvalTerm(env, term)
	if err == nil {
		t.Fatalf("eval %q: expected an error", src)
	}
	return err
}

func evalDoc(t *testing.T, ev *Evaluator, src string) types.Value {
	t.Helper()
	doc, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := ev.EvalDocument(types.NewEnv(), doc)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	return v
}

func TestEvalLiterals(t *testing.T) {
	ev := newTestEvaluator(t)
	env := types.NewEnv()

	v := evalTerm(t, ev, env, "17.5")
	if v.AsNum() != 17.5 || v.Dim() != 0 {
		t.Errorf("number: got %v dim %d", v.AsNum(), v.Dim())
	}

	v = evalTerm(t, ev, env, "32pt")
	if v.AsNum() != 32 || v.Dim() != 1 {
		t.Errorf("points: got %v dim %d", v.AsNum(), v.Dim())
	}

	// The w and h units are fractions of the default canvas.
	v = evalTerm(t, ev, env, "0.5w")
	if v.AsNum() != 0.5*DefaultCanvasWidth || v.Dim() != 1 {
		t.Errorf("width fraction: got %v dim %d", v.AsNum(), v.Dim())
	}
	v = evalTerm(t, ev, env, "1h")
	if v.AsNum() != DefaultCanvasHeight || v.Dim() != 1 {
		t.Errorf("height fraction: got %v dim %d", v.AsNum(), v.Dim())
	}

	v = evalTerm(t, ev, env, `"hello"`)
	if v.AsStr() != "hello" {
		t.Errorf("string: got %q", v.AsStr())
	}

	v = evalTerm(t, ev, env, "#ff8000")
	c := v.AsColor()
	if c.R != 1 || c.G != 128.0/255.0 || c.B != 0 {
		t.Errorf("color: got %+v", c)
	}
}

func TestEvalEmUnit(t *testing.T) {
	ev := newTestEvaluator(t)
	env := types.NewEnv()

	// em needs an ambient font size.
	err := evalTermErr(t, ev, env, "2em")
	var typeErr *types.UnresolvedNameError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected an unresolved name error, got %v", err)
	}

	if err := env.Define("font_size", types.NewNum(16, 1)); err != nil {
		t.Fatal(err)
	}
	v := evalTerm(t, ev, env, "2em")
	if v.AsNum() != 32 || v.Dim() != 1 {
		t.Errorf("em: got %v dim %d", v.AsNum(), v.Dim())
	}
}

func TestDimensionAlgebra(t *testing.T) {
	ev := newTestEvaluator(t)
	env := types.NewEnv()

	tests := []struct {
		src string
		num float64
		dim int
	}{
		{"1pt + 2pt", 3, 1},
		{"5pt - 2pt", 3, 1},
		{"2 * 3pt", 6, 1},
		{"3pt * 2pt", 6, 2},
		{"6pt / 2pt", 3, 0},
		{"6pt / 2", 3, 1},
		{"2 ^ 3", 8, 0},
		{"2pt ^ 2", 4, 2},
		{"2pt ^ 0", 1, 0},
		{"-3", -3, 0},
		{"0pt - 3pt", -3, 1},
		{"2 ^ -1", 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := evalTerm(t, ev, env, tt.src)
			if v.AsNum() != tt.num || v.Dim() != tt.dim {
				t.Errorf("got %v dim %d, want %v dim %d", v.AsNum(), v.Dim(), tt.num, tt.dim)
			}
		})
	}
}

func TestDimensionErrors(t *testing.T) {
	ev := newTestEvaluator(t)
	env := types.NewEnv()

	tests := []string{
		"1pt + 2",           // mixed dimensions in addition
		"1 - 2pt",           // mixed dimensions in subtraction
		"2 ^ 2pt",           // dimensioned exponent
		"2pt ^ 0.5",         // fractional power of a dimensioned base
		"(1pt, 2pt) + (1, 2)", // mixed coordinate dimensions
		`"a" + 1`,           // strings have no arithmetic
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			err := evalTermErr(t, ev, env, src)
			var typeErr *types.TypeError
			if !errors.As(err, &typeErr) {
				t.Errorf("expected a type error, got %v", err)
			}
		})
	}

	// A dimensionless base may be raised to any power.
	v := evalTerm(t, ev, env, "4 ^ 0.5")
	if v.AsNum() != 2 || v.Dim() != 0 {
		t.Errorf("got %v dim %d", v.AsNum(), v.Dim())
	}
}

func TestCoordArithmetic(t *testing.T) {
	ev := newTestEvaluator(t)
	env := types.NewEnv()

	v := evalTerm(t, ev, env, "(1pt, 2pt) + (3pt, 4pt)")
	x, y := v.AsCoord()
	if x != 4 || y != 6 || v.Dim() != 1 {
		t.Errorf("sum: got (%v, %v) dim %d", x, y, v.Dim())
	}

	v = evalTerm(t, ev, env, "(1pt, 2pt) * 2")
	x, y = v.AsCoord()
	if x != 2 || y != 4 || v.Dim() != 1 {
		t.Errorf("scale: got (%v, %v) dim %d", x, y, v.Dim())
	}

	v = evalTerm(t, ev, env, "2 * (1pt, 2pt)")
	x, y = v.AsCoord()
	if x != 2 || y != 4 || v.Dim() != 1 {
		t.Errorf("scale from the left: got (%v, %v) dim %d", x, y, v.Dim())
	}

	v = evalTerm(t, ev, env, "(2pt, 4pt) / 2")
	x, y = v.AsCoord()
	if x != 1 || y != 2 || v.Dim() != 1 {
		t.Errorf("divide: got (%v, %v) dim %d", x, y, v.Dim())
	}
}

func TestDocumentAssignAndReturn(t *testing.T) {
	ev := newTestEvaluator(t)

	v := evalDoc(t, ev, `
x = 2pt
y = x * 3
return y
`)
	if v.AsNum() != 6 || v.Dim() != 1 {
		t.Errorf("got %v dim %d", v.AsNum(), v.Dim())
	}
}

func TestDocumentRebindingFails(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("x = 1\nx = 2"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var valErr *types.ValueError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected a value error, got %v", err)
	}
}

func TestBlockScopesAndMembers(t *testing.T) {
	ev := newTestEvaluator(t)

	// A block shadows outer names and exposes its own as frame members.
	v := evalDoc(t, ev, `
x = 1pt
b = {
  x = 2pt
  y = x * 2
}
return b.y
`)
	if v.AsNum() != 4 || v.Dim() != 1 {
		t.Errorf("got %v dim %d", v.AsNum(), v.Dim())
	}
}

func TestUserFunctions(t *testing.T) {
	ev := newTestEvaluator(t)

	v := evalDoc(t, ev, `
base = 10pt
function scaled(f) {
  return base * f
}
return scaled(3)
`)
	if v.AsNum() != 30 || v.Dim() != 1 {
		t.Errorf("closure call: got %v dim %d", v.AsNum(), v.Dim())
	}
}

func TestUserFunctionArity(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte(`
function f(a, b) { return a + b }
return f(1)
`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var arityErr *types.ArityError
	if !errors.As(err, &arityErr) {
		t.Fatalf("expected an arity error, got %v", err)
	}
	if arityErr.Expected != 2 || arityErr.Actual != 1 {
		t.Errorf("got expected=%d actual=%d", arityErr.Expected, arityErr.Actual)
	}
}

func TestCallingANonFunction(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("x = 1\nreturn x(2)"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var typeErr *types.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected a type error, got %v", err)
	}
}

func TestUnknownFunction(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("return frobnicate(1)"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var nameErr *types.UnresolvedNameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("expected an unresolved name error, got %v", err)
	}
}

func TestPutComposition(t *testing.T) {
	ev := newTestEvaluator(t)

	v := evalDoc(t, ev, `
color = #ffffff
line_width = 2pt
put line((10pt, 0pt))
put line((0pt, 5pt))
`)
	frame := v.AsFrame()

	// The second line is placed at the first line's anchor, and the
	// anchor advances again.
	if frame.Anchor() != (geom.Vec2{X: 10, Y: 5}) {
		t.Errorf("anchor: got %v", frame.Anchor())
	}
	bb := frame.BoundingBox()
	if bb.TopLeft != (geom.Vec2{X: 0, Y: 0}) || bb.Size != (geom.Vec2{X: 10, Y: 5}) {
		t.Errorf("bounding box: got %+v", bb)
	}
	if len(frame.Elements()) != 2 {
		t.Errorf("elements: got %d", len(frame.Elements()))
	}
	if frame.Elements()[1].Offset != (geom.Vec2{X: 10, Y: 0}) {
		t.Errorf("second offset: got %v", frame.Elements()[1].Offset)
	}
}

func TestPutAtCoordinate(t *testing.T) {
	ev := newTestEvaluator(t)

	v := evalDoc(t, ev, `
color = #ffffff
line_width = 2pt
at (100pt, 200pt) put line((10pt, 0pt))
`)
	frame := v.AsFrame()
	if frame.Elements()[0].Offset != (geom.Vec2{X: 100, Y: 200}) {
		t.Errorf("offset: got %v", frame.Elements()[0].Offset)
	}
	if frame.Anchor() != (geom.Vec2{X: 110, Y: 200}) {
		t.Errorf("anchor: got %v", frame.Anchor())
	}
}

func TestPutRequiresDimensionedCoordinate(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("at (1, 2) put { }"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var typeErr *types.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected a type error, got %v", err)
	}
}

func TestPutRequiresAFrame(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("put 42"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var typeErr *types.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected a type error, got %v", err)
	}
	if !strings.Contains(typeErr.Error(), "'put' needs a frame") {
		t.Errorf("unexpected message: %v", typeErr)
	}
}

// mapLoader resolves imports from an in-memory map of sources.
type mapLoader map[string]string

func (l mapLoader) Load(path []string) (*ast.Document, error) {
	src, ok := l[strings.Join(path, ".")]
	if !ok {
		return nil, fmt.Errorf("no such module")
	}
	return parser.Parse([]byte(src))
}

func TestImportBindsNames(t *testing.T) {
	res := resources.NewManager(nil, nil)
	loader := mapLoader{"lib.colors": "red = #ff0000"}
	ev := New(stdlib.NewRegistry(res), loader)

	doc, err := parser.Parse([]byte("import lib.colors\nreturn red"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.EvalDocument(types.NewEnv(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsColor().R != 1 {
		t.Errorf("got %+v", v.AsColor())
	}
}

func TestImportWithoutLoader(t *testing.T) {
	ev := newTestEvaluator(t)
	doc, err := parser.Parse([]byte("import lib.colors"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.EvalDocument(types.NewEnv(), doc)
	var fileErr *types.MissingFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected a missing file error, got %v", err)
	}
}

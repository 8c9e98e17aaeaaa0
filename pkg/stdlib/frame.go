package stdlib

import (
	"fmt"

	"github.com/prislang/pris/pkg/geom"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/types"
)

// fit scales a frame uniformly so its bounding box fits exactly one
// dimension of the target box while not exceeding the other.
func fit(_ *resources.Manager, _ *types.Env, args []types.Value) (types.Value, error) {
	expected := []types.ValType{types.FrameType, types.CoordType(1)}
	if err := validateArgs("fit", expected, args); err != nil {
		return types.Value{}, err
	}
	frame := args[0].AsFrame()
	w, h := args[1].AsCoord()

	bb := frame.BoundingBox()

	// Fitting into a box of which either side has length 0 is nonsense;
	// it would also divide by zero in the aspect ratio comparison.
	if w == 0 || h == 0 {
		return types.Value{}, fmt.Errorf(
			"Cannot fit frame in a box with width or height equal to 0. Simply don't place the frame then.")
	}

	var scale float64
	switch {
	case bb.Height() != 0:
		if bb.Width()/bb.Height() > w/h {
			// The frame is constrained by width.
			scale = w / bb.Width()
		} else {
			scale = h / bb.Height()
		}
	case bb.Width() != 0:
		scale = w / bb.Width()
	default:
		return types.Value{}, fmt.Errorf("Cannot fit a frame of size (0w, 0w).")
	}

	// The original frame is immutable, so its element slice is shared
	// with the scaled group rather than copied.
	scaled := geom.NewFrame()
	scaled.PlaceElement(geom.Zero(), &geom.Scaled{Elements: frame.Elements(), Factor: scale})
	scaled.SetAnchor(frame.Anchor().Scale(scale))
	scaled.UnionBoundingBox(bb.ScaleBy(scale))

	return types.NewFrame(scaled, args[0].FrameEnv()), nil
}

// line draws a stroked segment from the origin to the given endpoint. The
// stroke color and width come from the ambient 'color' and 'line_width'
// bindings rather than from arguments, keeping call sites terse.
func line(_ *resources.Manager, env *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("line", []types.ValType{types.CoordType(1)}, args); err != nil {
		return types.Value{}, err
	}
	x, y := args[0].AsCoord()
	offset := geom.Vec2{X: x, Y: y}

	color, err := env.LookupColor("color")
	if err != nil {
		return types.Value{}, err
	}
	lineWidth, err := env.LookupLen("line_width")
	if err != nil {
		return types.Value{}, err
	}

	stroke := &geom.StrokePolygon{
		Color:     color,
		LineWidth: lineWidth,
		Close:     false,
		Vertices:  []geom.Vec2{geom.Zero(), offset},
	}

	frame := geom.NewFrame()
	frame.PlaceElement(geom.Zero(), stroke)
	frame.SetAnchor(offset)
	frame.UnionBoundingBox(geom.Sized(x, y))

	return types.NewFrame(frame, nil), nil
}

// fillRectangle draws a filled rectangle with its top-left corner at the
// origin. The frame anchors at the far corner so rectangles can be
// chained left to right and top to bottom.
func fillRectangle(_ *resources.Manager, env *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("fill_rectangle", []types.ValType{types.CoordType(1)}, args); err != nil {
		return types.Value{}, err
	}
	w, h := args[0].AsCoord()

	color, err := env.LookupColor("color")
	if err != nil {
		return types.Value{}, err
	}

	rect := &geom.FillPolygon{
		Color: color,
		Vertices: []geom.Vec2{
			geom.Zero(),
			{X: 0, Y: h},
			{X: w, Y: h},
			{X: w, Y: 0},
		},
	}

	frame := geom.NewFrame()
	frame.PlaceElement(geom.Zero(), rect)
	frame.SetAnchor(geom.Vec2{X: w, Y: h})
	frame.UnionBoundingBox(geom.Sized(w, h))

	return types.NewFrame(frame, nil), nil
}

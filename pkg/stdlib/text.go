package stdlib

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/prislang/pris/pkg/geom"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/types"
)

// str formats a dimensionless number as a string.
func str(_ *resources.Manager, _ *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("str", []types.ValType{types.NumType(0)}, args); err != nil {
		return types.Value{}, err
	}
	return types.NewStr(strconv.FormatFloat(args[0].AsNum(), 'g', -1, 64)), nil
}

// typesetLine shapes a single line of text and positions the glyphs,
// converting the shaper's font-unit offsets into absolute user-space
// coordinates at the given font size. Returns the glyphs and the width
// of the line.
func typesetLine(res *resources.Manager, font *resources.Font, fontSize float64, line string) ([]geom.Glyph, float64) {
	shaped := res.Shape(font, line)

	sizeFactor := fontSize / font.UnitsPerEm

	glyphs := make([]geom.Glyph, 0, len(shaped))
	curX, curY := 0.0, 0.0
	for _, sg := range shaped {
		curX += sg.XOffset * sizeFactor
		curY += sg.YOffset * sizeFactor
		glyphs = append(glyphs, geom.Glyph{Index: sg.ID, X: curX, Y: curY})
		curX += sg.XAdvance * sizeFactor
		curY += sg.YAdvance * sizeFactor
	}

	return glyphs, curX
}

// splitLines splits a string on newlines. A trailing newline produces a
// final empty line, so there is always one line more than there are
// newlines.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

type textStyle struct {
	font       *resources.Font
	fontFamily string
	fontStyle  string
	fontSize   float64
	lineHeight float64
	color      geom.Color
}

// lookupTextStyle reads the ambient typography bindings that t and glyph
// share and resolves the font they name.
func lookupTextStyle(res *resources.Manager, env *types.Env) (textStyle, error) {
	var st textStyle
	var err error
	if st.fontFamily, err = env.LookupStr("font_family"); err != nil {
		return st, err
	}
	if st.fontStyle, err = env.LookupStr("font_style"); err != nil {
		return st, err
	}
	if st.fontSize, err = env.LookupLen("font_size"); err != nil {
		return st, err
	}
	if st.lineHeight, err = env.LookupLen("line_height"); err != nil {
		return st, err
	}
	if st.color, err = env.LookupColor("color"); err != nil {
		return st, err
	}
	var ok bool
	if st.font, ok = res.Font(st.fontFamily, st.fontStyle); !ok {
		return st, types.NewMissingFontError(st.fontFamily, st.fontStyle)
	}
	return st, nil
}

// t typesets a string of text, possibly spanning multiple lines. The font,
// size, line height, alignment, and color all come from ambient bindings.
func t(res *resources.Manager, env *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("t", []types.ValType{types.StrType}, args); err != nil {
		return types.Value{}, err
	}
	text := args[0].AsStr()

	st, err := lookupTextStyle(res, env)
	if err != nil {
		return types.Value{}, err
	}
	textAlign, err := env.LookupStr("text_align")
	if err != nil {
		return types.Value{}, err
	}
	switch textAlign {
	case "left", "center", "right":
	default:
		return types.Value{}, types.NewValueError(fmt.Sprintf(
			"'%s' is not a valid value for 'text_align'. Must be one of 'left', 'center', 'right'.",
			textAlign))
	}

	var glyphs []geom.Glyph
	maxWidth := 0.0
	minOffset := 0.0
	curX := 0.0
	curY := 0.0
	for _, line := range splitLines(text) {
		lineGlyphs, width := typesetLine(res, st.font, st.fontSize, line)

		// Shift the line left to enforce the alignment.
		var offset float64
		switch textAlign {
		case "left":
			offset = 0.0
		case "center":
			offset = width * -0.5
		case "right":
			offset = width * -1.0
		}

		for _, g := range lineGlyphs {
			glyphs = append(glyphs, geom.Glyph{Index: g.Index, X: g.X + offset, Y: g.Y + curY})
		}

		maxWidth = max(maxWidth, width)
		minOffset = min(minOffset, offset)
		curY += st.lineHeight
		curX = offset + width
	}

	textElem := &geom.Text{
		Color:      st.color,
		FontFamily: st.fontFamily,
		FontStyle:  st.fontStyle,
		FontSize:   st.fontSize,
		Glyphs:     glyphs,
	}

	frame := geom.NewFrame()
	frame.PlaceElement(geom.Zero(), textElem)
	frame.SetAnchor(geom.Vec2{X: curX, Y: curY - st.lineHeight})

	topLeft := geom.Vec2{X: minOffset, Y: -st.lineHeight}
	size := geom.Vec2{X: maxWidth, Y: curY}
	frame.UnionBoundingBox(geom.NewBoundingBox(topLeft, size))

	return types.NewFrame(frame, nil), nil
}

// glyph places a single glyph of the current font by its index, bypassing
// shaping. Useful for symbols that have no character code.
func glyph(res *resources.Manager, env *types.Env, args []types.Value) (types.Value, error) {
	if err := validateArgs("glyph", []types.ValType{types.NumType(0)}, args); err != nil {
		return types.Value{}, err
	}
	indexF := args[0].AsNum()

	if indexF < 0 || indexF > math.MaxUint32 || math.Trunc(indexF) != indexF {
		return types.Value{}, types.NewValueError(fmt.Sprintf(
			"Expected an unsigned integer glyph index, found %s.",
			strconv.FormatFloat(indexF, 'g', -1, 64)))
	}
	index := uint32(indexF)

	st, err := lookupTextStyle(res, env)
	if err != nil {
		return types.Value{}, err
	}

	// TODO: Extract the glyph width from the font metrics.
	width := 0.0

	textElem := &geom.Text{
		Color:      st.color,
		FontFamily: st.fontFamily,
		FontStyle:  st.fontStyle,
		FontSize:   st.fontSize,
		Glyphs:     []geom.Glyph{{Index: index}},
	}

	frame := geom.NewFrame()
	frame.PlaceElement(geom.Zero(), textElem)
	frame.SetAnchor(geom.Vec2{X: width, Y: 0})
	frame.UnionBoundingBox(geom.NewBoundingBox(
		geom.Vec2{X: 0, Y: -st.lineHeight},
		geom.Vec2{X: width, Y: 0},
	))

	return types.NewFrame(frame, nil), nil
}

package api

import (
	"fmt"

	"github.com/prislang/pris/pkg/geom"
)

// Scene is the JSON shape of a compiled document: the canvas size, the
// frame's bounding box and anchor, and the flattened element list in
// paint order.
type Scene struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	BoundingBox *sceneBox     `json:"boundingBox,omitempty"`
	Anchor      [2]float64    `json:"anchor"`
	Elements    []sceneElement `json:"elements"`
}

type sceneBox struct {
	TopLeft [2]float64 `json:"topLeft"`
	Size    [2]float64 `json:"size"`
}

// sceneElement is the JSON shape of one placed element. Type tags the
// variant; the remaining fields are populated per variant.
type sceneElement struct {
	Type   string     `json:"type"`
	Offset [2]float64 `json:"offset"`

	Color     *[3]float64  `json:"color,omitempty"`
	LineWidth float64      `json:"lineWidth,omitempty"`
	Close     bool         `json:"close,omitempty"`
	Vertices  [][2]float64 `json:"vertices,omitempty"`

	FontFamily string       `json:"fontFamily,omitempty"`
	FontStyle  string       `json:"fontStyle,omitempty"`
	FontSize   float64      `json:"fontSize,omitempty"`
	Glyphs     []sceneGlyph `json:"glyphs,omitempty"`

	Path   string  `json:"path,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Factor   float64        `json:"factor,omitempty"`
	Elements []sceneElement `json:"elements,omitempty"`
}

type sceneGlyph struct {
	Index uint32  `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// NewScene converts a compiled frame into its serializable scene form.
func NewScene(frame *geom.Frame, canvasW, canvasH float64) (*Scene, error) {
	elements, err := sceneElements(frame.Elements())
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Width:    canvasW,
		Height:   canvasH,
		Anchor:   vec(frame.Anchor()),
		Elements: elements,
	}
	if bb := frame.BoundingBox(); !bb.IsEmpty() {
		scene.BoundingBox = &sceneBox{TopLeft: vec(bb.TopLeft), Size: vec(bb.Size)}
	}
	return scene, nil
}

func sceneElements(placed []geom.Placed) ([]sceneElement, error) {
	elements := make([]sceneElement, 0, len(placed))
	for _, p := range placed {
		se, err := sceneElementOf(p)
		if err != nil {
			return nil, err
		}
		elements = append(elements, se)
	}
	return elements, nil
}

func sceneElementOf(p geom.Placed) (sceneElement, error) {
	se := sceneElement{Offset: vec(p.Offset)}

	switch e := p.Element.(type) {
	case *geom.StrokePolygon:
		se.Type = "strokePolygon"
		se.Color = rgb(e.Color)
		se.LineWidth = e.LineWidth
		se.Close = e.Close
		se.Vertices = vecs(e.Vertices)
	case *geom.FillPolygon:
		se.Type = "fillPolygon"
		se.Color = rgb(e.Color)
		se.Vertices = vecs(e.Vertices)
	case *geom.Text:
		se.Type = "text"
		se.Color = rgb(e.Color)
		se.FontFamily = e.FontFamily
		se.FontStyle = e.FontStyle
		se.FontSize = e.FontSize
		se.Glyphs = make([]sceneGlyph, len(e.Glyphs))
		for i, g := range e.Glyphs {
			se.Glyphs[i] = sceneGlyph{Index: g.Index, X: g.X, Y: g.Y}
		}
	case *geom.Image:
		se.Type = "image"
		se.Path = e.Path
		se.Width = e.Width
		se.Height = e.Height
	case *geom.Scaled:
		inner, err := sceneElements(e.Elements)
		if err != nil {
			return sceneElement{}, err
		}
		se.Type = "scaled"
		se.Factor = e.Factor
		se.Elements = inner
	default:
		return sceneElement{}, fmt.Errorf("unknown element type %T", p.Element)
	}

	return se, nil
}

func vec(v geom.Vec2) [2]float64 {
	return [2]float64{v.X, v.Y}
}

func vecs(vs []geom.Vec2) [][2]float64 {
	out := make([][2]float64, len(vs))
	for i, v := range vs {
		out[i] = vec(v)
	}
	return out
}

func rgb(c geom.Color) *[3]float64 {
	return &[3]float64{c.R, c.G, c.B}
}

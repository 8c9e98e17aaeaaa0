package geom

// Element is the interface for all drawable primitives.
type Element interface {
	elementType() string
}

// StrokePolygon is a stroked open or closed polygon.
type StrokePolygon struct {
	Color     Color
	LineWidth float64
	Close     bool
	Vertices  []Vec2
}

func (e *StrokePolygon) elementType() string { return "StrokePolygon" }

// FillPolygon is a filled polygon.
type FillPolygon struct {
	Color    Color
	Vertices []Vec2
}

func (e *FillPolygon) elementType() string { return "FillPolygon" }

// Glyph is a single positioned glyph inside a text run. The position is in
// user units, relative to the text element's placement.
type Glyph struct {
	Index uint32
	X     float64
	Y     float64
}

// Text is a run of shaped glyphs in a single font.
type Text struct {
	Color      Color
	FontFamily string
	FontStyle  string
	FontSize   float64
	Glyphs     []Glyph
}

func (e *Text) elementType() string { return "Text" }

// Image is an embedded external vector image with its intrinsic size.
type Image struct {
	Path   string
	Width  float64
	Height float64
}

func (e *Image) elementType() string { return "Image" }

// Scaled wraps a list of placed elements in a uniform scale factor. It is
// produced by fit.
type Scaled struct {
	Elements []Placed
	Factor   float64
}

func (e *Scaled) elementType() string { return "Scaled" }

package geom

// Placed is an element together with its placement offset inside a frame.
type Placed struct {
	Offset  Vec2
	Element Element
}

// Frame is a composable drawing unit: an ordered sequence of placed
// elements (paint order is append order, back to front), an anchor point
// used for side-by-side composition, and the cumulative bounding box of
// everything placed so far.
//
// A frame is built incrementally and becomes immutable once it is shared;
// frames are passed around by pointer, so sharing is cheap and no deep
// copies are needed.
type Frame struct {
	placed []Placed
	anchor Vec2
	bbox   BoundingBox
}

// NewFrame creates an empty frame with a zero anchor and an empty
// bounding box.
func NewFrame() *Frame {
	return &Frame{}
}

// PlaceElement appends an element at the given offset.
func (f *Frame) PlaceElement(offset Vec2, e Element) {
	f.placed = append(f.placed, Placed{Offset: offset, Element: e})
}

// PlaceFrame places all of another frame's elements at the given offset
// and grows the bounding box by the placed frame's box under that offset.
// The other frame's element slice is shared, not copied; frames are
// immutable once built.
func (f *Frame) PlaceFrame(offset Vec2, other *Frame) {
	for _, p := range other.placed {
		f.placed = append(f.placed, Placed{Offset: offset.Add(p.Offset), Element: p.Element})
	}
	f.bbox = f.bbox.Union(other.bbox.Offset(offset))
}

// SetAnchor records where side-by-side composition should continue from.
func (f *Frame) SetAnchor(p Vec2) {
	f.anchor = p
}

// Anchor returns the frame's anchor point.
func (f *Frame) Anchor() Vec2 {
	return f.anchor
}

// UnionBoundingBox grows the frame's bounding box to cover the given box.
func (f *Frame) UnionBoundingBox(b BoundingBox) {
	f.bbox = f.bbox.Union(b)
}

// BoundingBox returns the frame's cumulative bounding box.
func (f *Frame) BoundingBox() BoundingBox {
	return f.bbox
}

// Elements returns the placed elements in paint order. The returned slice
// must not be modified.
func (f *Frame) Elements() []Placed {
	return f.placed
}

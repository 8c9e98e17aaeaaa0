// Package geom implements the geometry used to compose drawings: 2D
// vectors, bounding boxes, and the frame/element model that evaluated
// documents build up.
package geom

// Vec2 is a 2D vector or point.
type Vec2 struct {
	X float64
	Y float64
}

// Zero returns the zero vector.
func Zero() Vec2 {
	return Vec2{0, 0}
}

// Add returns the component-wise sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v.X + w.X, v.Y + w.Y}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v.X - w.X, v.Y - w.Y}
}

// Scale returns the vector scaled uniformly by f.
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

// Color is an RGB color with channels in the range [0, 1].
type Color struct {
	R float64
	G float64
	B float64
}

// BoundingBox is the minimal axis-aligned rectangle enclosing a frame's
// visual content. The zero BoundingBox is the empty box, the identity
// element for Union.
type BoundingBox struct {
	TopLeft  Vec2
	Size     Vec2
	nonEmpty bool
}

// NewBoundingBox creates a box from its top-left corner and size.
func NewBoundingBox(topLeft, size Vec2) BoundingBox {
	return BoundingBox{TopLeft: topLeft, Size: size, nonEmpty: true}
}

// Sized creates a box of the given size with its top-left corner at the
// origin.
func Sized(w, h float64) BoundingBox {
	return NewBoundingBox(Zero(), Vec2{w, h})
}

// IsEmpty reports whether the box is the empty identity box.
func (b BoundingBox) IsEmpty() bool {
	return !b.nonEmpty
}

// Width returns the box width.
func (b BoundingBox) Width() float64 {
	return b.Size.X
}

// Height returns the box height.
func (b BoundingBox) Height() float64 {
	return b.Size.Y
}

// Union returns the smallest box covering both boxes. The empty box is the
// identity; Union is associative and commutative.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	x0 := min(b.TopLeft.X, other.TopLeft.X)
	y0 := min(b.TopLeft.Y, other.TopLeft.Y)
	x1 := max(b.TopLeft.X+b.Size.X, other.TopLeft.X+other.Size.X)
	y1 := max(b.TopLeft.Y+b.Size.Y, other.TopLeft.Y+other.Size.Y)
	return NewBoundingBox(Vec2{x0, y0}, Vec2{x1 - x0, y1 - y0})
}

// Offset returns the box translated by the given vector.
func (b BoundingBox) Offset(by Vec2) BoundingBox {
	if b.IsEmpty() {
		return b
	}
	return NewBoundingBox(b.TopLeft.Add(by), b.Size)
}

// ScaleBy returns the box with both corner and size scaled uniformly.
func (b BoundingBox) ScaleBy(f float64) BoundingBox {
	if b.IsEmpty() {
		return b
	}
	return NewBoundingBox(b.TopLeft.Scale(f), b.Size.Scale(f))
}

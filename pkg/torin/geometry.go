// pkg/torin/geometry.go
package torin

// -- Core Structures: Points, Sizes and Areas --

// Point2D is a position in layout space.
type Point2D struct {
	X, Y float32
}

// Size2D is a width and height pair.
type Size2D struct {
	Width, Height float32
}

// Area is an origin plus a size. Areas produced by the engine include the
// node's margins.
type Area struct {
	Origin Point2D
	Size   Size2D
}

// NewArea builds an Area from its four components.
func NewArea(x, y, width, height float32) Area {
	return Area{Origin: Point2D{X: x, Y: y}, Size: Size2D{Width: width, Height: height}}
}

func (a Area) MinX() float32   { return a.Origin.X }
func (a Area) MinY() float32   { return a.Origin.Y }
func (a Area) MaxX() float32   { return a.Origin.X + a.Size.Width }
func (a Area) MaxY() float32   { return a.Origin.Y + a.Size.Height }
func (a Area) Width() float32  { return a.Size.Width }
func (a Area) Height() float32 { return a.Size.Height }

// Contains reports whether b lies fully inside a.
func (a Area) Contains(b Area) bool {
	return b.MinX() >= a.MinX() && b.MinY() >= a.MinY() && b.MaxX() <= a.MaxX() && b.MaxY() <= a.MaxY()
}

// WithoutGaps shrinks the area by the given edges. Sizes never go negative
// and the result never starts past the end of a.
func (a Area) WithoutGaps(g Gaps) Area {
	x := a.Origin.X + g.Left
	if x > a.MaxX() {
		x = a.MaxX()
	}
	y := a.Origin.Y + g.Top
	if y > a.MaxY() {
		y = a.MaxY()
	}
	return Area{
		Origin: Point2D{X: x, Y: y},
		Size: Size2D{
			Width:  nonNegative(a.Size.Width - g.Horizontal()),
			Height: nonNegative(a.Size.Height - g.Vertical()),
		},
	}
}

// moveWithOffsets shifts the origin by the scroll offsets.
func (a *Area) moveWithOffsets(offsetX, offsetY float32) {
	a.Origin.X += offsetX
	a.Origin.Y += offsetY
}

// adjustSize scales content-derived axes declared as a percentage of the
// node's own inner extent.
func (a *Area) adjustSize(node *Node) {
	if node.Width.Kind == SizeInnerPercentage {
		a.Size.Width *= node.Width.Value / 100
	}
	if node.Height.Kind == SizeInnerPercentage {
		a.Size.Height *= node.Height.Value / 100
	}
}

// Gaps are four-sided edges used for margin and padding.
type Gaps struct {
	Top, Right, Bottom, Left float32
}

// UniformGaps returns gaps with the same value on every side.
func UniformGaps(v float32) Gaps {
	return Gaps{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns Left + Right.
func (g Gaps) Horizontal() float32 { return g.Left + g.Right }

// Vertical returns Top + Bottom.
func (g Gaps) Vertical() float32 { return g.Top + g.Bottom }

// -- Axis-agnostic helpers --
//
// The main axis follows a parent's Direction; the cross axis is the other one.

func (s Size2D) main(d Direction) float32 {
	if d == Horizontal {
		return s.Width
	}
	return s.Height
}

func (s Size2D) cross(d Direction) float32 {
	if d == Horizontal {
		return s.Height
	}
	return s.Width
}

func (s *Size2D) setMain(d Direction, v float32) {
	if d == Horizontal {
		s.Width = v
	} else {
		s.Height = v
	}
}

func (s *Size2D) setCross(d Direction, v float32) {
	if d == Horizontal {
		s.Height = v
	} else {
		s.Width = v
	}
}

func (a Area) mainStart(d Direction) float32 {
	if d == Horizontal {
		return a.Origin.X
	}
	return a.Origin.Y
}

func (a Area) crossStart(d Direction) float32 {
	if d == Horizontal {
		return a.Origin.Y
	}
	return a.Origin.X
}

func (a *Area) setMainStart(d Direction, v float32) {
	if d == Horizontal {
		a.Origin.X = v
	} else {
		a.Origin.Y = v
	}
}

func (a *Area) setCrossStart(d Direction, v float32) {
	if d == Horizontal {
		a.Origin.Y = v
	} else {
		a.Origin.X = v
	}
}

func (g Gaps) main(d Direction) float32 {
	if d == Horizontal {
		return g.Horizontal()
	}
	return g.Vertical()
}

func (g Gaps) cross(d Direction) float32 {
	if d == Horizontal {
		return g.Vertical()
	}
	return g.Horizontal()
}

func nonNegative(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

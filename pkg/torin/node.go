// pkg/torin/node.go
package torin

import (
	"fmt"
	"math"
)

// Direction is the stacking axis of a node's children.
type Direction uint8

const (
	// Vertical stacks children top to bottom.
	Vertical Direction = iota
	// Horizontal stacks children left to right.
	Horizontal
)

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Alignment positions children along an axis.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignSpaceBetween
	AlignSpaceAround
	AlignSpaceEvenly
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	case AlignSpaceBetween:
		return "space-between"
	case AlignSpaceAround:
		return "space-around"
	case AlignSpaceEvenly:
		return "space-evenly"
	default:
		return "start"
	}
}

// IsNotStart reports whether the alignment moves children at all.
func (a Alignment) IsNotStart() bool { return a != AlignStart }

// IsSpaced reports whether the alignment distributes gaps between children.
func (a Alignment) IsSpaced() bool {
	return a == AlignSpaceBetween || a == AlignSpaceAround || a == AlignSpaceEvenly
}

// Content selects how a node distributes space among its children.
type Content uint8

const (
	// ContentNormal places children as they are sized.
	ContentNormal Content = iota
	// ContentFit sizes FillMinimum children to the extent set by their fixed siblings.
	ContentFit
	// ContentFlex shares remaining main-axis space among children with a grow weight.
	ContentFlex
)

func (c Content) String() string {
	switch c {
	case ContentFit:
		return "fit"
	case ContentFlex:
		return "flex"
	default:
		return "normal"
	}
}

// WrapContent controls whether stacked children may start new lines.
type WrapContent uint8

const (
	NoWrap WrapContent = iota
	Wrap
)

// PositionKind tells whether a node participates in its parent's flow.
type PositionKind uint8

const (
	// Stacked nodes follow their preceding siblings.
	Stacked PositionKind = iota
	// Absolute nodes are placed by their own offsets and never move siblings.
	Absolute
)

// Position places a node. Offsets only apply to Absolute nodes and are
// relative to the parent's inner area; a nil offset is unset.
type Position struct {
	Kind                     PositionKind
	Top, Right, Bottom, Left *float32
}

// AbsolutePosition is a convenience constructor for absolute positions.
func AbsolutePosition(top, right, bottom, left *float32) Position {
	return Position{Kind: Absolute, Top: top, Right: right, Bottom: bottom, Left: left}
}

// IsAbsolute reports whether the node is excluded from stacking.
func (p Position) IsAbsolute() bool { return p.Kind == Absolute }

// origin computes where a node of the given size starts.
func (p Position) origin(availableParentArea, parentArea Area, size Size2D) Point2D {
	if p.Kind != Absolute {
		return availableParentArea.Origin
	}
	x := parentArea.MinX()
	if p.Left != nil {
		x += *p.Left
	} else if p.Right != nil {
		x = parentArea.MaxX() - *p.Right - size.Width
	}
	y := parentArea.MinY()
	if p.Top != nil {
		y += *p.Top
	} else if p.Bottom != nil {
		y = parentArea.MaxY() - *p.Bottom - size.Height
	}
	return Point2D{X: x, Y: y}
}

// Node describes how one element is sized, spaced and aligned.
// It is supplied fresh by the DOMAdapter on every pass and never mutated by
// the engine.
type Node struct {
	Direction Direction

	Width, Height       Size
	MinWidth, MinHeight Size
	MaxWidth, MaxHeight Size

	Margin  Gaps
	Padding Gaps

	MainAlignment  Alignment
	CrossAlignment Alignment
	Content        Content
	WrapContent    WrapContent
	Spacing        float32

	Position Position

	// Scroll offsets shift every child of this node.
	OffsetX, OffsetY float32

	// Grow weights used when the parent has ContentFlex and stacks along the
	// same axis. Zero means the child is not flexible on that axis.
	FlexWidth, FlexHeight float32

	// HasLayoutReferences asks for a post-layout notification through the
	// LayoutMeasurer.
	HasLayoutReferences bool
}

// flexGrow returns the grow weight of the node on the given axis.
func (n *Node) flexGrow(d Direction) float32 {
	if d == Horizontal {
		return n.FlexWidth
	}
	return n.FlexHeight
}

// crossOf returns the axis perpendicular to d.
func crossOf(d Direction) Direction {
	if d == Horizontal {
		return Vertical
	}
	return Horizontal
}

// sizeOn returns the node's declared size on an axis.
func (n *Node) sizeOn(d Direction) Size {
	if d == Horizontal {
		return n.Width
	}
	return n.Height
}

// needsInitialPhase reports whether children of n must be pre-measured
// before their final placement can be decided.
func (n *Node) needsInitialPhase() bool {
	return n.CrossAlignment.IsNotStart() ||
		n.MainAlignment.IsNotStart() ||
		n.Content == ContentFit ||
		n.Content == ContentFlex ||
		n.WrapContent == Wrap
}

// mustBeFinite panics on NaN or infinite inputs. Those are contract
// breaches by the tree owner, not recoverable runtime conditions.
func (n *Node) mustBeFinite() {
	values := [...]float32{
		n.Width.Value, n.Height.Value,
		n.MinWidth.Value, n.MinHeight.Value,
		n.MaxWidth.Value, n.MaxHeight.Value,
		n.Margin.Top, n.Margin.Right, n.Margin.Bottom, n.Margin.Left,
		n.Padding.Top, n.Padding.Right, n.Padding.Bottom, n.Padding.Left,
		n.Spacing, n.OffsetX, n.OffsetY, n.FlexWidth, n.FlexHeight,
	}
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			panic(fmt.Sprintf("torin: node field #%d is not finite (%v)", i, v))
		}
	}
}

// spacing returns the inter-child spacing; negative values collapse to zero.
func (n *Node) spacing() float32 {
	return nonNegative(n.Spacing)
}

// pkg/torin/stack.go
package torin

// stackState tracks the extent of the children placed so far inside one parent.
type stackState struct {
	dir     Direction
	spacing float32

	// base is the parent's margin box before any child was stacked. An
	// inner-sized parent never shrinks below it.
	base      Size2D
	padMargin Size2D

	maxMain     float32 // widest closed line
	closedCross float32 // cross extent of closed lines, spacing included
	lineMain    float32
	lineCross   float32
}

func newStackState(parent *Node, parentArea Area) *stackState {
	return &stackState{
		dir:     parent.Direction,
		spacing: parent.spacing(),
		base:    parentArea.Size,
		padMargin: Size2D{
			Width:  parent.Padding.Horizontal() + parent.Margin.Horizontal(),
			Height: parent.Padding.Vertical() + parent.Margin.Vertical(),
		},
	}
}

// newLine closes the current line. Spacing separates lines on the cross axis.
func (s *stackState) newLine() {
	s.maxMain = maxf(s.maxMain, s.lineMain)
	s.closedCross += s.lineCross + s.spacing
	s.lineMain, s.lineCross = 0, 0
}

// content returns the extent of all stacked children as main and cross sizes.
func (s *stackState) content() (main, cross float32) {
	return maxf(s.maxMain, s.lineMain), s.closedCross + s.lineCross
}

// stackChild advances the available area past a placed child and grows an
// inner-sized parent so that it encloses the child.
func stackChild(st *stackState, parent *Node, availableArea, parentArea, innerArea *Area, innerSizes *Size2D, childArea Area, isLast bool) {
	d := st.dir
	spacing := st.spacing
	if isLast {
		spacing = 0
	}

	childMain := childArea.Size.main(d)
	availableArea.setMainStart(d, childArea.mainStart(d)+childMain+spacing)
	availableArea.Size.setMain(d, nonNegative(availableArea.Size.main(d)-childMain-spacing))

	st.lineMain += childMain + spacing
	st.lineCross = maxf(st.lineCross, childArea.Size.cross(d))

	main, cross := st.content()
	innerSizes.setMain(d, main)
	innerSizes.setCross(d, cross)

	if parent.sizeOn(d).InnerSized() {
		parentArea.Size.setMain(d, maxf(st.base.main(d), main+st.padMargin.main(d)))
	}
	if parent.sizeOn(crossOf(d)).InnerSized() {
		parentArea.Size.setCross(d, maxf(st.base.cross(d), cross+st.padMargin.cross(d)))
	}

	innerArea.Size.Width = nonNegative(parentArea.Size.Width - st.padMargin.Width)
	innerArea.Size.Height = nonNegative(parentArea.Size.Height - st.padMargin.Height)
}

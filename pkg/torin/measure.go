// pkg/torin/measure.go
package torin

// measureContext holds the state of one Measure pass. It borrows the engine,
// the measurer and the adapter for the duration of the call only.
type measureContext[K comparable] struct {
	engine   *Engine[K]
	measurer LayoutMeasurer[K]
	dom      DOMAdapter[K]
	rootArea Area

	revalidated int
}

// measureInnerChildren asks the measurer whether the children of key should
// be laid out. Without a measurer they always are.
func (c *measureContext[K]) measureInnerChildren(key K) bool {
	if c.measurer == nil {
		return true
	}
	return c.measurer.ShouldMeasureInnerChildren(key)
}

// measureNode computes the layout of one node and, when needed, of its
// children. The returned boolean reports whether the node was revalidated;
// only revalidated nodes are written back to the cache.
func (c *measureContext[K]) measureNode(key K, node *Node, parentArea, availableParentArea Area, mustCacheChildren, parentRevalidated bool, phase Phase) (bool, LayoutNode) {
	reason, isDirty := c.engine.dirty[key]
	cached, hasCache := c.engine.results[key]

	// An inner-layout invalidation keeps the node's own box.
	keepBox := isDirty && reason == DirtyInnerLayout && hasCache && !parentRevalidated
	mustRevalidate := !keepBox && (parentRevalidated || isDirty || !hasCache)

	if !mustRevalidate {
		// The box is reused, but descendants may still be dirty.
		if phase == PhaseFinal && c.measureInnerChildren(key) {
			area := cached.Area
			innerArea := cached.InnerArea
			available := childSpace(node, innerArea, availableParentArea)
			var innerSizes Size2D
			c.measureChildren(key, node, &available, &innerSizes, &area, &innerArea, mustCacheChildren, keepBox)
		}
		return false, cached
	}

	node.mustBeFinite()
	c.revalidated++
	root := c.rootArea.Size

	// 1. Resolve the node's own box. Content-derived axes start from their padding.
	var size Size2D
	size.Width = ResolveSize(node.Width, node.Padding.Horizontal(), parentArea.Width(), availableParentArea.Width(),
		node.Margin.Horizontal(), node.MinWidth, node.MaxWidth, root.Width, phase)
	size.Height = ResolveSize(node.Height, node.Padding.Vertical(), parentArea.Height(), availableParentArea.Height(),
		node.Margin.Vertical(), node.MinHeight, node.MaxHeight, root.Height, phase)

	// 2. Let the external measurer size content-derived axes.
	var data any
	if c.measurer != nil && c.measurer.ShouldMeasure(key) {
		availableWidth := ResolveSize(Fill(), 0, parentArea.Width(), availableParentArea.Width(),
			node.Margin.Horizontal(), node.MinWidth, node.MaxWidth, root.Width, phase)
		availableHeight := ResolveSize(Fill(), 0, parentArea.Height(), availableParentArea.Height(),
			node.Margin.Vertical(), node.MinHeight, node.MaxHeight, root.Height, phase)
		fitting := Size2D{
			Width:  nonNegative(node.Width.mostFitting(size.Width, availableWidth) - node.Margin.Horizontal() - node.Padding.Horizontal()),
			Height: nonNegative(node.Height.mostFitting(size.Height, availableHeight) - node.Margin.Vertical() - node.Padding.Vertical()),
		}
		if measured, payload, ok := c.measurer.Measure(key, *node, fitting); ok {
			if node.Width.InnerSized() {
				size.Width = ResolveSize(node.Width, measured.Width+node.Padding.Horizontal(), parentArea.Width(), availableParentArea.Width(),
					node.Margin.Horizontal(), node.MinWidth, node.MaxWidth, root.Width, phase)
			}
			if node.Height.InnerSized() {
				size.Height = ResolveSize(node.Height, measured.Height+node.Padding.Vertical(), parentArea.Height(), availableParentArea.Height(),
					node.Margin.Vertical(), node.MinHeight, node.MaxHeight, root.Height, phase)
			}
			data = payload
		}
	}

	// Children only matter before the final phase when they decide this node's size.
	phaseMeasuresChildren := phase == PhaseFinal || node.Width.InnerSized() || node.Height.InnerSized()

	area := Area{Origin: node.Position.origin(availableParentArea, parentArea, size), Size: size}
	innerArea := area.WithoutGaps(node.Margin).WithoutGaps(node.Padding)
	var innerSizes Size2D

	if phaseMeasuresChildren && c.measureInnerChildren(key) {
		available := childSpace(node, innerArea, availableParentArea)

		c.measureChildren(key, node, &available, &innerSizes, &area, &innerArea, mustCacheChildren, true)

		// Re-apply the bounds now that the children decided the size. area
		// already holds the margins, so they are not added again.
		if node.Width.InnerSized() {
			area.Size.Width = ResolveSize(node.Width, area.Size.Width-node.Margin.Horizontal(), parentArea.Width(), availableParentArea.Width(),
				node.Margin.Horizontal(), node.MinWidth, node.MaxWidth, root.Width, phase)
		}
		if node.Height.InnerSized() {
			area.Size.Height = ResolveSize(node.Height, area.Size.Height-node.Margin.Vertical(), parentArea.Height(), availableParentArea.Height(),
				node.Margin.Vertical(), node.MinHeight, node.MaxHeight, root.Height, phase)
		}
		innerArea = area.WithoutGaps(node.Margin).WithoutGaps(node.Padding)
	}

	layoutNode := LayoutNode{Area: area, InnerArea: innerArea, Margin: node.Margin, Data: data}

	// Pre-measurements made for a parent's initial phase are never cached and
	// do not notify.
	if node.HasLayoutReferences && c.measurer != nil && phase == PhaseFinal && mustCacheChildren {
		innerSizes.Width += node.Padding.Horizontal()
		innerSizes.Height += node.Padding.Vertical()
		c.measurer.NotifyLayoutReferences(key, layoutNode.Area, layoutNode.InnerArea, innerSizes)
	}

	return true, layoutNode
}

// childSpace is the area offered to the children of node. A content-sized
// axis has not grown yet, so it offers what the parent has left instead of
// the node's own inner extent.
func childSpace(node *Node, innerArea, availableParentArea Area) Area {
	available := innerArea
	if node.Width.InnerSized() {
		left := availableParentArea.Width() - node.Margin.Horizontal() - node.Padding.Horizontal()
		available.Size.Width = maxf(innerArea.Width(), nonNegative(left))
	}
	if node.Height.InnerSized() {
		left := availableParentArea.Height() - node.Margin.Vertical() - node.Padding.Vertical()
		available.Size.Height = maxf(innerArea.Height(), nonNegative(left))
	}
	available.moveWithOffsets(node.OffsetX, node.OffsetY)
	return available
}

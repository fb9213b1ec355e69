// pkg/torin/children.go
package torin

import (
	"fmt"

	"go.uber.org/zap"
)

// childEntry is a child key with the node snapshot used for the whole pass.
type childEntry[K comparable] struct {
	key  K
	node Node
}

// line records what the initial phase learned about one line of stacked children.
type line struct {
	count     int     // stacked children in the line
	main      float32 // main extent, spacing included
	fixedMain float32 // main extent claimed by non-flex children, spacing included
	cross     float32 // largest child cross extent
	grow      float32 // sum of flex weights
	available float32 // main space offered to the line
}

// childPlan is the initial-phase result for one stacked child.
type childPlan struct {
	line int
	size Size2D

	// share is the main extent granted by flex distribution.
	share    float32
	hasShare bool

	// crossShare is the cross extent granted to FillMinimum children under ContentFit.
	crossShare    float32
	hasCrossShare bool
}

// initialLayout is the outcome of the initial phase.
type initialLayout[K comparable] struct {
	lines []line
	plans map[K]*childPlan
}

// content returns the main and cross extent of all lines.
func (l *initialLayout[K]) content(spacing float32) (main, cross float32) {
	for i, ln := range l.lines {
		main = maxf(main, ln.main)
		cross += ln.cross
		if i > 0 {
			cross += spacing
		}
	}
	return main, cross
}

// prepareChild returns the node snapshot the engine works with. Children that
// grow inside a ContentFlex parent get a synthesized flex size on the main axis.
func prepareChild(parent *Node, child Node) Node {
	if parent.Content != ContentFlex || child.Position.IsAbsolute() {
		return child
	}
	grow := child.flexGrow(parent.Direction)
	if grow <= 0 {
		return child
	}
	flex := Size{Kind: sizeFlex, Value: grow}
	if parent.Direction == Horizontal {
		child.Width = flex
	} else {
		child.Height = flex
	}
	return child
}

func isFlexChild(parent *Node, child *Node) bool {
	return parent.Content == ContentFlex && child.sizeOn(parent.Direction).Kind == sizeFlex
}

func isCrossFillChild(parent *Node, child *Node) bool {
	return parent.Content == ContentFit && child.sizeOn(crossOf(parent.Direction)).Kind == SizeFillMinimum
}

// children fetches the ordered children of key once per pass.
func (c *measureContext[K]) children(key K, parent *Node) []childEntry[K] {
	keys := c.dom.ChildrenOf(key)
	entries := make([]childEntry[K], 0, len(keys))
	for _, k := range keys {
		n, ok := c.dom.GetNode(k)
		if !ok {
			c.engine.logger.Debug("Skipping child without a backing node.", zap.Any("key", k))
			continue
		}
		entries = append(entries, childEntry[K]{key: k, node: prepareChild(parent, n)})
	}
	return entries
}

// measureChildren lays out the children of parentKey inside availableArea.
// parentArea and innerArea grow when the parent is sized by its content.
func (c *measureContext[K]) measureChildren(parentKey K, parent *Node, availableArea *Area, innerSizes *Size2D, parentArea, innerArea *Area, mustCache, parentRevalidated bool) {
	entries := c.children(parentKey, parent)
	if len(entries) == 0 {
		return
	}
	d := parent.Direction
	spacing := parent.spacing()

	var initial *initialLayout[K]
	if parent.needsInitialPhase() {
		initial = c.initialPhase(parent, entries, *availableArea, *innerArea, parentRevalidated)

		// Content-sized axes shrink to what the children occupy so that
		// alignment has a meaningful container.
		contentMain, contentCross := initial.content(spacing)
		if parent.MainAlignment.IsNotStart() && parent.sizeOn(d).InnerSized() {
			availableArea.Size.setMain(d, maxf(contentMain, innerArea.Size.main(d)))
		}
		if (parent.CrossAlignment.IsNotStart() || parent.Content == ContentFit) && parent.sizeOn(crossOf(d)).InnerSized() {
			availableArea.Size.setCross(d, maxf(contentCross, innerArea.Size.cross(d)))
		}

		// Wrapped lines are aligned as one block on the cross axis.
		if parent.WrapContent == Wrap {
			alignContent(availableArea, *availableArea, contentCross, parent.CrossAlignment, d, false)
		}
	}

	lastStacked := -1
	for i := range entries {
		if !entries[i].node.Position.IsAbsolute() {
			lastStacked = i
		}
	}

	container := *availableArea
	lineStart := *availableArea
	st := newStackState(parent, *parentArea)
	lineIdx, pos := 0, 0

	for i := range entries {
		e := &entries[i]

		if e.node.Position.IsAbsolute() {
			revalidated, ln := c.measureNode(e.key, &e.node, *innerArea, *availableArea, mustCache, parentRevalidated, PhaseFinal)
			ln = adjust(ln, &e.node, revalidated)
			c.cache(e.key, ln, revalidated && mustCache)
			continue
		}

		var plan *childPlan
		if initial != nil {
			var ok bool
			if plan, ok = initial.plans[e.key]; !ok {
				panic(fmt.Sprintf("torin: no initial measurement for child %v", e.key))
			}
			if plan.line != lineIdx {
				advance := initial.lines[lineIdx].cross + spacing
				lineStart.setCrossStart(d, lineStart.crossStart(d)+advance)
				lineStart.Size.setCross(d, nonNegative(lineStart.Size.cross(d)-advance))
				lineStart.setMainStart(d, container.mainStart(d))
				lineStart.Size.setMain(d, container.Size.main(d))
				*availableArea = lineStart
				st.newLine()
				lineIdx, pos = plan.line, 0
			}
		}

		var current line
		if initial != nil {
			current = initial.lines[lineIdx]
		}

		if initial != nil && pos == 0 {
			alignContent(availableArea, lineStart, current.main, parent.MainAlignment, d, true)
		}

		adapted := *availableArea
		if plan != nil {
			if plan.hasShare {
				adapted.Size.setMain(d, plan.share)
			}
			if plan.hasCrossShare {
				adapted.Size.setCross(d, plan.crossShare)
			}
			alignPosition(&adapted, container.Size.main(d), current.main, current.count, pos == 0, parent.MainAlignment, d)

			lineBox := *availableArea
			if parent.WrapContent == Wrap {
				lineBox.setCrossStart(d, lineStart.crossStart(d))
				lineBox.Size.setCross(d, current.cross)
			}
			alignContent(&adapted, lineBox, plan.size.cross(d), parent.CrossAlignment, d, false)
		}

		isLast := i == lastStacked
		if plan != nil {
			isLast = isLast || pos+1 == current.count
		}

		revalidated, ln := c.measureNode(e.key, &e.node, *innerArea, adapted, mustCache, parentRevalidated, PhaseFinal)
		ln = adjust(ln, &e.node, revalidated)

		stackChild(st, parent, availableArea, parentArea, innerArea, innerSizes, ln.Area, isLast)
		c.cache(e.key, ln, revalidated && mustCache)
		pos++
	}
}

// initialPhase pre-measures the stacked children, breaks them into lines and
// resolves deferred flex and fill-minimum sizes.
func (c *measureContext[K]) initialPhase(parent *Node, entries []childEntry[K], availableArea, innerArea Area, parentRevalidated bool) *initialLayout[K] {
	d := parent.Direction
	spacing := parent.spacing()
	out := &initialLayout[K]{plans: make(map[K]*childPlan, len(entries))}

	available := availableArea
	lineStart := availableArea
	current := line{available: available.Size.main(d)}
	var pending []*childEntry[K]

	measure := func(e *childEntry[K]) Size2D {
		revalidated, ln := c.measureNode(e.key, &e.node, innerArea, available, false, parentRevalidated, PhaseInitial)
		return adjust(ln, &e.node, revalidated).Area.Size
	}

	for i := range entries {
		e := &entries[i]
		if e.node.Position.IsAbsolute() {
			continue
		}

		size := measure(e)

		if parent.WrapContent == Wrap && current.count > 0 && size.main(d) > available.Size.main(d) {
			c.resolveDeferred(parent, pending, &current, lineStart, innerArea, out.plans, parentRevalidated)
			out.lines = append(out.lines, current)

			advance := current.cross + spacing
			lineStart.setCrossStart(d, lineStart.crossStart(d)+advance)
			lineStart.Size.setCross(d, nonNegative(lineStart.Size.cross(d)-advance))
			available = lineStart
			current = line{available: available.Size.main(d)}
			pending = pending[:0]

			size = measure(e)
		}

		out.plans[e.key] = &childPlan{line: len(out.lines), size: size}

		if current.count > 0 {
			current.main += spacing
			current.fixedMain += spacing
		}
		current.count++
		current.cross = maxf(current.cross, size.cross(d))
		if isFlexChild(parent, &e.node) {
			current.grow += e.node.flexGrow(d)
		} else {
			current.main += size.main(d)
			current.fixedMain += size.main(d)
		}
		if isFlexChild(parent, &e.node) || isCrossFillChild(parent, &e.node) {
			pending = append(pending, e)
		}

		available.setMainStart(d, available.mainStart(d)+size.main(d)+spacing)
		available.Size.setMain(d, nonNegative(available.Size.main(d)-size.main(d)-spacing))
	}

	c.resolveDeferred(parent, pending, &current, lineStart, innerArea, out.plans, parentRevalidated)
	out.lines = append(out.lines, current)
	return out
}

// resolveDeferred measures the flex and fill-minimum children of one line
// once the space used by their fixed siblings is known.
func (c *measureContext[K]) resolveDeferred(parent *Node, pending []*childEntry[K], current *line, lineStart, innerArea Area, plans map[K]*childPlan, parentRevalidated bool) {
	d := parent.Direction
	flexSpace := nonNegative(current.available - current.fixedMain)

	for _, e := range pending {
		plan := plans[e.key]
		area := lineStart
		flex := isFlexChild(parent, &e.node)

		if flex && current.grow > 0 {
			plan.share = e.node.flexGrow(d) / current.grow * flexSpace
			plan.hasShare = true
			area.Size.setMain(d, plan.share)
		}
		if isCrossFillChild(parent, &e.node) {
			plan.crossShare = current.cross
			plan.hasCrossShare = true
			area.Size.setCross(d, plan.crossShare)
		}

		revalidated, ln := c.measureNode(e.key, &e.node, innerArea, area, false, parentRevalidated, PhaseInitialDeferred)
		plan.size = adjust(ln, &e.node, revalidated).Area.Size

		if flex {
			current.main += plan.size.main(d)
		}
	}
}

// adjust applies InnerPercentage scaling to a freshly measured child. Reused
// results were scaled before they were cached.
func adjust(ln LayoutNode, node *Node, revalidated bool) LayoutNode {
	if !revalidated {
		return ln
	}
	ln.Area.adjustSize(node)
	ln.InnerArea = ln.Area.WithoutGaps(node.Margin).WithoutGaps(node.Padding)
	return ln
}

// cache stores a child's result and drains it from the dirty set.
func (c *measureContext[K]) cache(key K, ln LayoutNode, store bool) {
	if !store {
		return
	}
	c.engine.results[key] = ln
	delete(c.engine.dirty, key)
}

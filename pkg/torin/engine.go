// pkg/torin/engine.go
package torin

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger *zap.Logger
}

// WithLogger attaches a logger. The engine emits one debug entry per pass.
func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Engine owns the layout cache and the dirty set for a tree keyed by K.
// It is not safe for concurrent use; callers serialize access.
type Engine[K comparable] struct {
	results map[K]LayoutNode
	dirty   map[K]DirtyReason

	rootCandidate    K
	hasRootCandidate bool

	lastViewport Area
	measured     bool

	logger *zap.Logger
}

// New creates an empty engine.
func New[K comparable](opts ...Option) *Engine[K] {
	o := engineOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[K]{
		results: make(map[K]LayoutNode),
		dirty:   make(map[K]DirtyReason),
		logger:  o.logger.Named("torin"),
	}
}

// Get returns the cached layout of key.
func (e *Engine[K]) Get(key K) (LayoutNode, bool) {
	ln, ok := e.results[key]
	return ln, ok
}

// Len returns the number of cached layouts.
func (e *Engine[K]) Len() int { return len(e.results) }

// DirtyNodes returns a copy of the dirty set.
func (e *Engine[K]) DirtyNodes() map[K]DirtyReason {
	out := make(map[K]DirtyReason, len(e.dirty))
	for k, r := range e.dirty {
		out[k] = r
	}
	return out
}

// Invalidate marks key as needing a new layout.
func (e *Engine[K]) Invalidate(key K) {
	e.InvalidateWithReason(key, DirtyLayout)
}

// InvalidateWithReason marks key dirty. When a key is invalidated more than
// once before a pass, the strongest reason is kept.
func (e *Engine[K]) InvalidateWithReason(key K, reason DirtyReason) {
	if prev, ok := e.dirty[key]; ok && reasonRank(prev) >= reasonRank(reason) {
		return
	}
	e.dirty[key] = reason
}

func reasonRank(r DirtyReason) int {
	switch r {
	case DirtyInnerLayout:
		return 0
	case DirtyLayout:
		return 1
	default:
		return 2
	}
}

// Remove drops the cached layout and dirty mark of a single key.
func (e *Engine[K]) Remove(key K) {
	delete(e.results, key)
	delete(e.dirty, key)
	if e.hasRootCandidate && e.rootCandidate == key {
		e.resetCandidate()
	}
}

// RemoveTree drops key and all of its descendants, as reported by dom. When
// invalidateParent is set the parent of key is marked dirty so the siblings
// reflow on the next pass. dom must still describe the subtree.
func (e *Engine[K]) RemoveTree(key K, dom DOMAdapter[K], invalidateParent bool) {
	if invalidateParent {
		if parent, ok := dom.ParentOf(key); ok {
			e.Invalidate(parent)
		}
	}
	stack := []K{key}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e.Remove(k)
		stack = append(stack, dom.ChildrenOf(k)...)
	}
}

// ClearDirty empties the dirty set without measuring.
func (e *Engine[K]) ClearDirty() {
	e.dirty = make(map[K]DirtyReason)
	e.resetCandidate()
}

// Reset drops every cached layout and dirty mark.
func (e *Engine[K]) Reset() {
	e.results = make(map[K]LayoutNode)
	e.ClearDirty()
	e.measured = false
	e.lastViewport = Area{}
}

func (e *Engine[K]) resetCandidate() {
	var zero K
	e.rootCandidate, e.hasRootCandidate = zero, false
}

// FindBestRoot picks the smallest subtree whose re-measurement covers every
// dirty node: the lowest common ancestor of the dirty nodes' parents. A node
// dirty only for its inner layout contributes itself. Reorder marks are
// expanded to the following siblings first.
func (e *Engine[K]) FindBestRoot(dom DOMAdapter[K]) (K, bool) {
	e.resetCandidate()
	if len(e.dirty) == 0 {
		return e.rootCandidate, false
	}
	e.expandReorders(dom)

	var best []K
	for key, reason := range e.dirty {
		if _, ok := dom.GetNode(key); !ok {
			continue
		}
		anchor := key
		if reason != DirtyInnerLayout {
			if parent, ok := dom.ParentOf(key); ok {
				anchor = parent
			}
		}
		chain := ancestry(anchor, dom)
		if best == nil {
			best = chain
			continue
		}
		best = commonAncestry(best, chain)
	}
	if len(best) == 0 {
		return e.rootCandidate, false
	}
	e.rootCandidate, e.hasRootCandidate = best[0], true
	return e.rootCandidate, true
}

// expandReorders invalidates the siblings after every node that moved.
func (e *Engine[K]) expandReorders(dom DOMAdapter[K]) {
	var moved []K
	for key, reason := range e.dirty {
		if reason == DirtyReorder {
			moved = append(moved, key)
		}
	}
	for _, key := range moved {
		parent, ok := dom.ParentOf(key)
		if !ok {
			continue
		}
		following := false
		for _, sibling := range dom.ChildrenOf(parent) {
			if following {
				e.InvalidateWithReason(sibling, DirtyLayout)
			}
			if sibling == key {
				following = true
			}
		}
	}
}

// ancestry returns key followed by its ancestors up to the tree root.
func ancestry[K comparable](key K, dom DOMAdapter[K]) []K {
	seen := map[K]struct{}{key: {}}
	chain := []K{key}
	for {
		parent, ok := dom.ParentOf(key)
		if !ok {
			return chain
		}
		if _, loop := seen[parent]; loop {
			panic(fmt.Sprintf("torin: parent cycle detected at %v", parent))
		}
		seen[parent] = struct{}{}
		chain = append(chain, parent)
		key = parent
	}
}

// commonAncestry returns the tail of a starting at the first element that
// also appears in b. Both chains run from a node up to the root.
func commonAncestry[K comparable](a, b []K) []K {
	inB := make(map[K]struct{}, len(b))
	for _, k := range b {
		inB[k] = struct{}{}
	}
	for i, k := range a {
		if _, ok := inB[k]; ok {
			return a[i:]
		}
	}
	return []K{}
}

// within reports whether key lies in the subtree rooted at root.
func within[K comparable](key, root K, dom DOMAdapter[K]) bool {
	for _, k := range ancestry(key, dom) {
		if k == root {
			return true
		}
	}
	return false
}

// Measure brings the cache up to date for the tree rooted at root inside
// viewport. Only the smallest affected subtree is re-measured; everything
// else keeps its cached layout. measurer may be nil.
func (e *Engine[K]) Measure(root K, viewport Area, measurer LayoutMeasurer[K], dom DOMAdapter[K]) {
	if e.measured && viewport != e.lastViewport {
		e.Invalidate(root)
	}
	if len(e.dirty) == 0 && len(e.results) > 0 {
		return
	}
	started := time.Now()

	start := root
	if len(e.results) > 0 {
		if candidate, ok := e.FindBestRoot(dom); ok && within(candidate, root, dom) {
			start = candidate
		}
	}

	parentArea := viewport
	available := viewport
	if start != root {
		parent, _ := dom.ParentOf(start)
		cached, hasCache := e.results[parent]
		_, startCached := e.results[start]
		if !hasCache || !startCached {
			start = root
		} else {
			parentArea = cached.InnerArea
			available = cached.InnerArea
			if pn, ok := dom.GetNode(parent); ok {
				available.moveWithOffsets(pn.OffsetX, pn.OffsetY)
			}
		}
	}

	node, ok := dom.GetNode(start)
	if !ok {
		e.logger.Warn("Root has no backing node, nothing to measure.", zap.Any("root", start))
		e.finishPass(viewport)
		return
	}

	// The pass root keeps its box but its children reflow, so siblings
	// that follow a resized dirty node move along with it.
	if _, dirty := e.dirty[start]; !dirty {
		e.dirty[start] = DirtyInnerLayout
	}

	ctx := &measureContext[K]{engine: e, measurer: measurer, dom: dom, rootArea: viewport}
	revalidated, ln := ctx.measureNode(start, &node, parentArea, available, true, false, PhaseFinal)
	if revalidated {
		e.results[start] = ln
	}

	e.logger.Debug("Layout pass complete.",
		zap.Any("root", start),
		zap.Int("revalidated", ctx.revalidated),
		zap.Int("dirty", len(e.dirty)),
		zap.Int("cached", len(e.results)),
		zap.Duration("took", time.Since(started)),
	)
	e.finishPass(viewport)
}

func (e *Engine[K]) finishPass(viewport Area) {
	e.ClearDirty()
	e.lastViewport = viewport
	e.measured = true
}

// pkg/torin/interfaces.go
package torin

// LayoutNode is the computed result for one node.
type LayoutNode struct {
	// Area is the margin box of the node.
	Area Area
	// InnerArea is Area minus padding and margin. It is never shifted by the
	// node's scroll offsets and always lies within Area; the offsets only
	// move the space handed to the children.
	InnerArea Area
	Margin    Gaps
	// Data is the opaque payload returned by a LayoutMeasurer, if any.
	Data any
}

// VisibleArea returns the area without margins.
func (l LayoutNode) VisibleArea() Area {
	return l.Area.WithoutGaps(l.Margin)
}

// DOMAdapter exposes the shape of the retained tree. It must present a
// consistent snapshot for the duration of one Measure call.
type DOMAdapter[K comparable] interface {
	// ChildrenOf returns the ordered children of key.
	ChildrenOf(key K) []K
	// GetNode returns the sizing description of key. ok is false when the
	// key has no backing node; the engine then skips it.
	GetNode(key K) (node Node, ok bool)
	// ParentOf returns the parent of key, if any.
	ParentOf(key K) (parent K, ok bool)
}

// LayoutMeasurer sizes leaves whose extent the engine cannot derive from
// children, such as text. Implementations must not call back into Measure.
type LayoutMeasurer[K comparable] interface {
	// ShouldMeasure reports whether Measure must be called for key.
	ShouldMeasure(key K) bool
	// Measure receives the content-box space that best fits the node (padding
	// and margin excluded) and returns the content size plus an opaque payload
	// stored in LayoutNode.Data. ok=false declines.
	Measure(key K, node Node, mostFitting Size2D) (size Size2D, data any, ok bool)
	// ShouldMeasureInnerChildren reports whether the engine should lay out
	// the children of key after it was measured.
	ShouldMeasureInnerChildren(key K) bool
	// NotifyLayoutReferences is called for nodes with HasLayoutReferences
	// once their area is final.
	NotifyLayoutReferences(key K, area, innerArea Area, innerSizes Size2D)
}

// DirtyReason tags an invalidated node.
type DirtyReason uint8

const (
	// DirtyLayout marks the node's own box as stale.
	DirtyLayout DirtyReason = iota
	// DirtyReorder marks the node as moved among its siblings; the following
	// siblings are invalidated too.
	DirtyReorder
	// DirtyInnerLayout keeps the node's box and only re-lays its children.
	DirtyInnerLayout
)

func (r DirtyReason) String() string {
	switch r {
	case DirtyReorder:
		return "reorder"
	case DirtyInnerLayout:
		return "inner-layout"
	default:
		return "layout"
	}
}

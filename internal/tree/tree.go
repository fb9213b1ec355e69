// File: internal/tree/tree.go
package tree

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/torin/pkg/torin"
)

// NodeID identifies a node inside a Tree. IDs are never reused.
type NodeID uint64

var (
	// ErrNodeNotFound is returned when an operation references an unknown node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidAttribute is returned when a document attribute cannot be parsed.
	ErrInvalidAttribute = errors.New("invalid attribute")
	// ErrInvalidDocument is returned for structurally broken documents.
	ErrInvalidDocument = errors.New("invalid document")
)

// LayoutCache receives the invalidations produced by tree mutations. It is
// satisfied by *torin.Engine[NodeID].
type LayoutCache interface {
	Invalidate(id NodeID)
	InvalidateWithReason(id NodeID, reason torin.DirtyReason)
	Remove(id NodeID)
}

type element struct {
	kind     string
	name     string
	node     torin.Node
	text     string
	parent   NodeID
	orphan   bool // true only for the root
	children []NodeID
}

// Tree is an arena of layout nodes. It implements torin.DOMAdapter[NodeID]
// and keeps an attached LayoutCache informed about every mutation, walking
// up through content-sized ancestors whose size depends on the change.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes map[NodeID]*element
	names map[string]NodeID
	root  NodeID
	next  NodeID
	cache LayoutCache
}

// New returns a tree holding a single root node.
func New(kind string, root torin.Node) *Tree {
	t := &Tree{
		nodes: make(map[NodeID]*element),
		names: make(map[string]NodeID),
	}
	t.root = t.alloc(&element{kind: kind, node: root, orphan: true})
	return t
}

func (t *Tree) alloc(e *element) NodeID {
	id := t.next
	t.next++
	t.nodes[id] = e
	return id
}

// Attach connects a layout cache. Mutations made before Attach are not replayed.
func (t *Tree) Attach(cache LayoutCache) { t.cache = cache }

// Root returns the root node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// -- torin.DOMAdapter --

func (t *Tree) ChildrenOf(id NodeID) []NodeID {
	if e, ok := t.nodes[id]; ok {
		return e.children
	}
	return nil
}

func (t *Tree) GetNode(id NodeID) (torin.Node, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return torin.Node{}, false
	}
	return e.node, true
}

func (t *Tree) ParentOf(id NodeID) (NodeID, bool) {
	e, ok := t.nodes[id]
	if !ok || e.orphan {
		return 0, false
	}
	return e.parent, true
}

// -- Accessors --

// Text returns the text content of a leaf, if it has any.
func (t *Tree) Text(id NodeID) (string, bool) {
	e, ok := t.nodes[id]
	if !ok || e.text == "" {
		return "", false
	}
	return e.text, true
}

// Kind returns the element kind (the XML tag or JSON "kind").
func (t *Tree) Kind(id NodeID) string {
	if e, ok := t.nodes[id]; ok {
		return e.kind
	}
	return ""
}

// Name returns the document-level name of a node, empty when it has none.
func (t *Tree) Name(id NodeID) string {
	if e, ok := t.nodes[id]; ok {
		return e.name
	}
	return ""
}

// Lookup resolves a document-level name.
func (t *Tree) Lookup(name string) (NodeID, error) {
	id, ok := t.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return id, nil
}

// Walk visits every node in document order. Returning false from fn stops
// the descent into that node's children.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}
		for _, c := range t.nodes[id].children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}

// -- Mutations --

// Add appends a new child under parent.
func (t *Tree) Add(parent NodeID, kind string, node torin.Node) (NodeID, error) {
	return t.Insert(parent, -1, kind, node)
}

// Insert places a new child at index among parent's children; a negative or
// out of range index appends.
func (t *Tree) Insert(parent NodeID, index int, kind string, node torin.Node) (NodeID, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("add under %d: %w", parent, ErrNodeNotFound)
	}
	id := t.alloc(&element{kind: kind, node: node, parent: parent})
	if index < 0 || index >= len(p.children) {
		p.children = append(p.children, id)
		t.invalidateUp(id)
		return id, nil
	}
	p.children = append(p.children[:index], append([]NodeID{id}, p.children[index:]...)...)
	t.invalidateUp(id)
	// The siblings after id moved too.
	t.reason(id, torin.DirtyReorder)
	return id, nil
}

// SetName registers a document-level name for id.
func (t *Tree) SetName(id NodeID, name string) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("name %q: %w", name, ErrNodeNotFound)
	}
	if prev, taken := t.names[name]; taken && prev != id {
		return fmt.Errorf("%w: name %q is already used by node %d", ErrInvalidDocument, name, prev)
	}
	if e.name != "" {
		delete(t.names, e.name)
	}
	e.name = name
	if name != "" {
		t.names[name] = id
	}
	return nil
}

// Update replaces the layout description of id. A change that only moves
// the scroll offsets keeps the node's box and re-lays its children.
func (t *Tree) Update(id NodeID, node torin.Node) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("update %d: %w", id, ErrNodeNotFound)
	}
	prev := e.node
	e.node = node

	scrolled := prev
	scrolled.OffsetX, scrolled.OffsetY = node.OffsetX, node.OffsetY
	switch {
	case prev == node:
	case scrolled == node:
		t.reason(id, torin.DirtyInnerLayout)
	default:
		t.invalidateUp(id)
	}
	return nil
}

// SetText replaces the text content of id.
func (t *Tree) SetText(id NodeID, text string) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("set text on %d: %w", id, ErrNodeNotFound)
	}
	if e.text == text {
		return nil
	}
	e.text = text
	t.invalidateUp(id)
	return nil
}

// Move reorders id among its siblings.
func (t *Tree) Move(id NodeID, index int) error {
	e, ok := t.nodes[id]
	if !ok || e.orphan {
		return fmt.Errorf("move %d: %w", id, ErrNodeNotFound)
	}
	siblings := t.nodes[e.parent].children
	from := indexOf(siblings, id)
	if index < 0 || index >= len(siblings) {
		index = len(siblings) - 1
	}
	if from == index {
		return nil
	}
	siblings = append(siblings[:from], siblings[from+1:]...)
	siblings = append(siblings[:index], append([]NodeID{id}, siblings[index:]...)...)
	t.nodes[e.parent].children = siblings

	// Whichever of the two moved first starts the reflow.
	first := id
	if from < index {
		first = siblings[from]
	}
	t.reason(first, torin.DirtyReorder)
	return nil
}

// Remove deletes id and its subtree. The root cannot be removed.
func (t *Tree) Remove(id NodeID) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("remove %d: %w", id, ErrNodeNotFound)
	}
	if e.orphan {
		return fmt.Errorf("%w: the root cannot be removed", ErrInvalidDocument)
	}
	t.reflow(e.parent)

	parent := t.nodes[e.parent]
	if i := indexOf(parent.children, id); i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
	t.drop(id)
	return nil
}

func (t *Tree) drop(id NodeID) {
	e := t.nodes[id]
	for _, c := range e.children {
		t.drop(c)
	}
	if e.name != "" {
		delete(t.names, e.name)
	}
	delete(t.nodes, id)
	if t.cache != nil {
		t.cache.Remove(id)
	}
}

// invalidateUp marks id dirty together with every ancestor sized by its
// content, since their boxes depend on id.
func (t *Tree) invalidateUp(id NodeID) {
	if t.cache == nil {
		return
	}
	t.cache.Invalidate(id)
	for {
		parent, ok := t.ParentOf(id)
		if !ok || !contentSized(t.nodes[parent].node) {
			return
		}
		t.cache.Invalidate(parent)
		id = parent
	}
}

// reflow re-lays the children of id. Its own box is kept unless it depends
// on those children.
func (t *Tree) reflow(id NodeID) {
	if contentSized(t.nodes[id].node) {
		t.invalidateUp(id)
		return
	}
	t.reason(id, torin.DirtyInnerLayout)
}

func (t *Tree) reason(id NodeID, r torin.DirtyReason) {
	if t.cache != nil {
		t.cache.InvalidateWithReason(id, r)
	}
}

func contentSized(n torin.Node) bool {
	return n.Width.InnerSized() || n.Height.InnerSized()
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, c := range ids {
		if c == id {
			return i
		}
	}
	return -1
}

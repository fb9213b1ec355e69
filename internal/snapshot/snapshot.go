// File: internal/snapshot/snapshot.go
package snapshot

import (
	"github.com/xkilldash9x/torin/internal/textmeasure"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
)

// Rect is the serialized form of a torin.Area.
type Rect struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// FromArea converts an engine area.
func FromArea(a torin.Area) Rect {
	return Rect{X: a.MinX(), Y: a.MinY(), Width: a.Width(), Height: a.Height()}
}

// Entry is the computed layout of one node.
type Entry struct {
	ID    uint64   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Kind  string   `json:"kind"`
	Depth int      `json:"depth"`
	Area  Rect     `json:"area"`
	Inner Rect     `json:"inner"`
	Lines []string `json:"lines,omitempty"`
}

// Snapshot is every computed layout of a tree, in document order.
type Snapshot struct {
	RunID    string  `json:"run_id,omitempty"`
	Source   string  `json:"source,omitempty"`
	Step     int     `json:"step,omitempty"`
	Viewport Rect    `json:"viewport"`
	Nodes    []Entry `json:"nodes"`
}

// Layouts is the read side of a layout engine.
type Layouts interface {
	Get(id tree.NodeID) (torin.LayoutNode, bool)
}

// Capture records the layouts of t. Subtrees without a layout (never
// measured, or skipped by a measurer) are left out.
func Capture(t *tree.Tree, layouts Layouts, viewport torin.Area) *Snapshot {
	s := &Snapshot{Viewport: FromArea(viewport), Nodes: make([]Entry, 0, t.Len())}
	t.Walk(func(id tree.NodeID, depth int) bool {
		ln, ok := layouts.Get(id)
		if !ok {
			return false
		}
		entry := Entry{
			ID:    uint64(id),
			Name:  t.Name(id),
			Kind:  t.Kind(id),
			Depth: depth,
			Area:  FromArea(ln.Area),
			Inner: FromArea(ln.InnerArea),
		}
		if p, ok := ln.Data.(textmeasure.Paragraph); ok {
			entry.Lines = p.Lines
		}
		s.Nodes = append(s.Nodes, entry)
		return true
	})
	return s
}

// Find returns the entry with the given name.
func (s *Snapshot) Find(name string) (Entry, bool) {
	for _, e := range s.Nodes {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Snapshot) index() map[uint64]int {
	idx := make(map[uint64]int, len(s.Nodes))
	for i, e := range s.Nodes {
		idx[e.ID] = i
	}
	return idx
}

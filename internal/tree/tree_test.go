// File: internal/tree/tree_test.go
package tree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/torin/internal/mocks"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
	"go.uber.org/zap/zaptest"
)

// Compile-time checks that the tree and the engine fit together.
var (
	_ torin.DOMAdapter[tree.NodeID] = (*tree.Tree)(nil)
	_ tree.LayoutCache              = (*torin.Engine[tree.NodeID])(nil)
)

var viewport = torin.NewArea(0, 0, 1000, 1000)

func fixed(w, h float32) torin.Node {
	return torin.Node{Width: torin.Pixels(w), Height: torin.Pixels(h)}
}

// rowTree builds root(horizontal, fill) -> [a 100x50, b 200x50, c 50x50].
func rowTree(t *testing.T) (*tree.Tree, []tree.NodeID) {
	t.Helper()
	tr := tree.New("box", torin.Node{Direction: torin.Horizontal, Width: torin.Fill(), Height: torin.Fill()})
	var ids []tree.NodeID
	for _, w := range []float32{100, 200, 50} {
		id, err := tr.Add(tr.Root(), "box", fixed(w, 50))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return tr, ids
}

func newCache(t *testing.T) *mocks.MockLayoutCache[tree.NodeID] {
	t.Helper()
	cache := new(mocks.MockLayoutCache[tree.NodeID])
	t.Cleanup(func() { cache.AssertExpectations(t) })
	return cache
}

func TestTree_DOMAdapter(t *testing.T) {
	tr, ids := rowTree(t)

	assert.Equal(t, ids, tr.ChildrenOf(tr.Root()))
	assert.Equal(t, 4, tr.Len())

	_, ok := tr.ParentOf(tr.Root())
	assert.False(t, ok, "the root has no parent")

	parent, ok := tr.ParentOf(ids[1])
	require.True(t, ok)
	assert.Equal(t, tr.Root(), parent)

	node, ok := tr.GetNode(ids[1])
	require.True(t, ok)
	assert.Equal(t, torin.Pixels(200), node.Width)

	_, ok = tr.GetNode(999)
	assert.False(t, ok)
	assert.Nil(t, tr.ChildrenOf(999))
}

func TestTree_Walk(t *testing.T) {
	tr, ids := rowTree(t)
	nested, err := tr.Add(ids[0], "text", torin.Node{})
	require.NoError(t, err)

	type visit struct {
		ID    tree.NodeID
		Depth int
	}
	var got []visit
	tr.Walk(func(id tree.NodeID, depth int) bool {
		got = append(got, visit{id, depth})
		return true
	})
	want := []visit{{tr.Root(), 0}, {ids[0], 1}, {nested, 2}, {ids[1], 1}, {ids[2], 1}}
	assert.Empty(t, cmp.Diff(want, got))

	t.Run("returning false prunes the subtree", func(t *testing.T) {
		var count int
		tr.Walk(func(id tree.NodeID, _ int) bool {
			count++
			return id != ids[0]
		})
		assert.Equal(t, 4, count)
	})
}

func TestTree_Invalidation(t *testing.T) {
	t.Run("fixed parent only dirties the node", func(t *testing.T) {
		tr, ids := rowTree(t)
		cache := newCache(t)
		tr.Attach(cache)
		cache.On("Invalidate", ids[1]).Once()

		require.NoError(t, tr.Update(ids[1], fixed(10, 10)))
		cache.AssertNotCalled(t, "Invalidate", tr.Root())
	})

	t.Run("content sized ancestors are dirtied too", func(t *testing.T) {
		tr := tree.New("box", torin.Node{Width: torin.Fill(), Height: torin.Fill()})
		outer, _ := tr.Add(tr.Root(), "box", torin.Node{Width: torin.Inner(), Height: torin.Pixels(100)})
		inner, _ := tr.Add(outer, "box", torin.Node{Width: torin.InnerPercentage(50), Height: torin.Inner()})
		leaf, _ := tr.Add(inner, "text", fixed(10, 10))

		cache := newCache(t)
		tr.Attach(cache)
		cache.On("Invalidate", leaf).Once()
		cache.On("Invalidate", inner).Once()
		cache.On("Invalidate", outer).Once()

		require.NoError(t, tr.SetText(leaf, "hello"))
		cache.AssertNotCalled(t, "Invalidate", tr.Root())
	})

	t.Run("scroll change keeps the box", func(t *testing.T) {
		tr, ids := rowTree(t)
		cache := newCache(t)
		tr.Attach(cache)
		cache.On("InvalidateWithReason", ids[0], torin.DirtyInnerLayout).Once()

		node, _ := tr.GetNode(ids[0])
		node.OffsetY = -20
		require.NoError(t, tr.Update(ids[0], node))
	})

	t.Run("unchanged update is a no-op", func(t *testing.T) {
		tr, ids := rowTree(t)
		cache := newCache(t)
		tr.Attach(cache)

		node, _ := tr.GetNode(ids[0])
		require.NoError(t, tr.Update(ids[0], node))
		require.NoError(t, tr.SetText(ids[0], ""))
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
		cache.AssertNotCalled(t, "InvalidateWithReason", mock.Anything, mock.Anything)
	})

	t.Run("remove evicts the subtree and reflows the parent", func(t *testing.T) {
		tr, ids := rowTree(t)
		nested, _ := tr.Add(ids[1], "text", torin.Node{})
		require.NoError(t, tr.SetName(nested, "label"))

		cache := newCache(t)
		tr.Attach(cache)
		cache.On("InvalidateWithReason", tr.Root(), torin.DirtyInnerLayout).Once()
		cache.On("Remove", ids[1]).Once()
		cache.On("Remove", nested).Once()

		require.NoError(t, tr.Remove(ids[1]))
		assert.Equal(t, []tree.NodeID{ids[0], ids[2]}, tr.ChildrenOf(tr.Root()))
		_, err := tr.Lookup("label")
		assert.ErrorIs(t, err, tree.ErrNodeNotFound)
	})

	t.Run("insert in the middle reorders", func(t *testing.T) {
		tr, ids := rowTree(t)
		cache := newCache(t)
		tr.Attach(cache)
		cache.On("Invalidate", mock.Anything).Once()
		cache.On("InvalidateWithReason", mock.Anything, torin.DirtyReorder).Once()

		id, err := tr.Insert(tr.Root(), 1, "box", fixed(5, 5))
		require.NoError(t, err)
		assert.Equal(t, []tree.NodeID{ids[0], id, ids[1], ids[2]}, tr.ChildrenOf(tr.Root()))
		cache.AssertCalled(t, "InvalidateWithReason", id, torin.DirtyReorder)
	})

	t.Run("move marks the first displaced sibling", func(t *testing.T) {
		tr, ids := rowTree(t)
		cache := newCache(t)
		tr.Attach(cache)
		// Moving a forward leaves b first in line.
		cache.On("InvalidateWithReason", ids[1], torin.DirtyReorder).Once()

		require.NoError(t, tr.Move(ids[0], 2))
		assert.Equal(t, []tree.NodeID{ids[1], ids[2], ids[0]}, tr.ChildrenOf(tr.Root()))
	})
}

func TestTree_Errors(t *testing.T) {
	tr, ids := rowTree(t)

	_, err := tr.Add(999, "box", torin.Node{})
	assert.ErrorIs(t, err, tree.ErrNodeNotFound)
	assert.ErrorIs(t, tr.Update(999, torin.Node{}), tree.ErrNodeNotFound)
	assert.ErrorIs(t, tr.Move(tr.Root(), 0), tree.ErrNodeNotFound)
	assert.ErrorIs(t, tr.Remove(tr.Root()), tree.ErrInvalidDocument)

	require.NoError(t, tr.SetName(ids[0], "a"))
	assert.ErrorIs(t, tr.SetName(ids[1], "a"), tree.ErrInvalidDocument)

	id, err := tr.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, ids[0], id)
}

func TestTree_IncrementalMeasure(t *testing.T) {
	tr, ids := rowTree(t)
	e := torin.New[tree.NodeID](torin.WithLogger(zaptest.NewLogger(t)))
	tr.Attach(e)
	e.Measure(tr.Root(), viewport, nil, tr)

	first, ok := e.Get(ids[2])
	require.True(t, ok)
	assert.Equal(t, float32(300), first.Area.MinX())

	require.NoError(t, tr.Update(ids[0], fixed(150, 50)))
	e.Measure(tr.Root(), viewport, nil, tr)

	b, _ := e.Get(ids[1])
	c, _ := e.Get(ids[2])
	assert.Equal(t, float32(150), b.Area.MinX())
	assert.Equal(t, float32(350), c.Area.MinX())

	// A fresh engine over the same tree must agree with the incremental one.
	full := torin.New[tree.NodeID]()
	full.Measure(tr.Root(), viewport, nil, tr)
	tr.Walk(func(id tree.NodeID, _ int) bool {
		want, _ := full.Get(id)
		got, _ := e.Get(id)
		assert.Empty(t, cmp.Diff(want, got), "node %d", id)
		return true
	})

	t.Run("removal shifts the following siblings", func(t *testing.T) {
		require.NoError(t, tr.Remove(ids[1]))
		e.Measure(tr.Root(), viewport, nil, tr)

		c, _ := e.Get(ids[2])
		assert.Equal(t, float32(150), c.Area.MinX())
		_, ok := e.Get(ids[1])
		assert.False(t, ok)
	})
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	xmlPath := dir + "/doc.XML"
	jsonPath := dir + "/doc.json"
	writeFile(t, xmlPath, `<box id="root" width="fill"><text id="t">hi</text></box>`)
	writeFile(t, jsonPath, `{"kind":"box","id":"root","children":[{"kind":"text","id":"t","text":"hi"}]}`)

	for _, path := range []string{xmlPath, jsonPath} {
		tr, err := tree.ReadFile(path)
		require.NoError(t, err, path)
		id, err := tr.Lookup("t")
		require.NoError(t, err)
		text, ok := tr.Text(id)
		assert.True(t, ok)
		assert.Equal(t, "hi", text)
		assert.Equal(t, "text", tr.Kind(id))
	}

	_, err := tree.ReadFile(dir + "/missing.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, tree.ErrInvalidDocument)
}

// File: internal/tree/decode_test.go
package tree_test

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const xmlDoc = `<?xml version="1.0"?>
<box id="root" width="fill" height="fill" direction="horizontal" padding="10 20" spacing="4">
  <box id="sidebar" width="200" height="fill" margin="1 2 3 4"/>
  <box id="main" width="fill-min" height="auto 50%" content="flex" main-alignment="center" cross-alignment="end">
    <text id="title" flex="2" layout-refs="true">
      Hello world
    </text>
  </box>
  <box id="overlay" position="absolute" top="5" left="6" width="v10%" height="25%" max-width="80" min-height="auto"/>
</box>`

const jsonDoc = `{
  "kind": "box", "id": "root",
  "attrs": {"width": "fill", "height": "fill", "direction": "horizontal", "padding": "10 20", "spacing": "4"},
  "children": [
    {"kind": "box", "id": "sidebar", "attrs": {"width": "200", "height": "fill", "margin": "1 2 3 4"}},
    {"kind": "box", "id": "main",
     "attrs": {"width": "fill-min", "height": "auto 50%", "content": "flex", "main-alignment": "center", "cross-alignment": "end"},
     "children": [{"kind": "text", "id": "title", "text": "Hello world", "attrs": {"flex": "2", "layout-refs": "true"}}]},
    {"kind": "box", "id": "overlay",
     "attrs": {"position": "absolute", "top": "5", "left": "6", "width": "v10%", "height": "25%", "max-width": "80", "min-height": "auto"}}
  ]
}`

func TestDecode(t *testing.T) {
	fromXML, err := tree.DecodeXML(strings.NewReader(xmlDoc))
	require.NoError(t, err)
	fromJSON, err := tree.DecodeJSON(strings.NewReader(jsonDoc))
	require.NoError(t, err)

	top, left := float32(5), float32(6)
	want := map[string]torin.Node{
		"root": {
			Direction: torin.Horizontal, Width: torin.Fill(), Height: torin.Fill(),
			Padding: torin.Gaps{Top: 10, Right: 20, Bottom: 10, Left: 20}, Spacing: 4,
		},
		"sidebar": {
			Width: torin.Pixels(200), Height: torin.Fill(),
			Margin: torin.Gaps{Top: 1, Right: 2, Bottom: 3, Left: 4},
		},
		"main": {
			Width: torin.FillMinimum(), Height: torin.InnerPercentage(50), Content: torin.ContentFlex,
			MainAlignment: torin.AlignCenter, CrossAlignment: torin.AlignEnd,
		},
		"title": {Width: torin.Inner(), Height: torin.Inner(), FlexWidth: 2, FlexHeight: 2, HasLayoutReferences: true},
		"overlay": {
			Width: torin.RootPercentage(10), Height: torin.Percentage(25), MaxWidth: torin.Pixels(80),
			Position: torin.AbsolutePosition(&top, nil, nil, &left),
		},
	}

	for name, tr := range map[string]*tree.Tree{"xml": fromXML, "json": fromJSON} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 5, tr.Len())
			for id, wantNode := range want {
				key, err := tr.Lookup(id)
				require.NoError(t, err, id)
				got, ok := tr.GetNode(key)
				require.True(t, ok)
				// Unset width/height default to content sizing either way.
				if !got.Width.IsSet() {
					got.Width = torin.Inner()
				}
				if !got.Height.IsSet() {
					got.Height = torin.Inner()
				}
				assert.Empty(t, cmp.Diff(wantNode, got), id)
			}

			title, _ := tr.Lookup("title")
			text, ok := tr.Text(title)
			require.True(t, ok)
			assert.Equal(t, "Hello world", text)

			main, _ := tr.Lookup("main")
			_, ok = tr.Text(main)
			assert.False(t, ok, "containers carry no text")
			assert.Equal(t, tr.Root(), mustLookup(t, tr, "root"))
		})
	}
}

func mustLookup(t *testing.T, tr *tree.Tree, name string) tree.NodeID {
	t.Helper()
	id, err := tr.Lookup(name)
	require.NoError(t, err)
	return id
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		decode  func(string) (*tree.Tree, error)
		doc     string
		wantErr error
	}{
		{"malformed xml", decodeXML, `<box`, tree.ErrInvalidDocument},
		{"empty xml", decodeXML, ``, tree.ErrInvalidDocument},
		{"bad xml attribute", decodeXML, `<box width="wide"/>`, tree.ErrInvalidAttribute},
		{"unknown xml attribute", decodeXML, `<box colour="red"/>`, tree.ErrInvalidAttribute},
		{"duplicate id", decodeXML, `<box><a id="x"/><b id="x"/></box>`, tree.ErrInvalidDocument},
		{"malformed json", decodeJSON, `{"kind":`, tree.ErrInvalidDocument},
		{"json without kind", decodeJSON, `{"id":"root"}`, tree.ErrInvalidDocument},
		{"json child without kind", decodeJSON, `{"kind":"box","children":[{}]}`, tree.ErrInvalidDocument},
		{"bad json attribute", decodeJSON, `{"kind":"box","attrs":{"spacing":"NaN"}}`, tree.ErrInvalidAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := tt.decode(tt.doc)
			assert.Nil(t, tr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func decodeXML(s string) (*tree.Tree, error)  { return tree.DecodeXML(strings.NewReader(s)) }
func decodeJSON(s string) (*tree.Tree, error) { return tree.DecodeJSON(strings.NewReader(s)) }

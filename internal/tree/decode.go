// File: internal/tree/decode.go
package tree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/torin/pkg/torin"
)

// Document attributes that are not layout attributes.
const (
	attrID   = "id"
	attrText = "text"
)

// attribute is a key/value pair in document order.
type attribute struct{ key, value string }

// docNode is the JSON document shape:
//
//	{"kind": "box", "id": "root", "attrs": {"width": "fill"}, "text": "", "children": [...]}
type docNode struct {
	Kind     string            `json:"kind"`
	ID       string            `json:"id,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []docNode         `json:"children,omitempty"`
}

// ReadFile decodes a tree document, choosing XML for ".xml" files and JSON
// for everything else.
func ReadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open tree document: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return DecodeXML(f)
	}
	return DecodeJSON(f)
}

// DecodeXML builds a tree from an XML document. The element tag becomes the
// node kind, attributes are layout attributes (plus "id"), and the character
// data of childless elements becomes their text.
func DecodeXML(r io.Reader) (*Tree, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidDocument)
	}

	var t *Tree
	var visit func(el *etree.Element, parent NodeID) error
	visit = func(el *etree.Element, parent NodeID) error {
		attrs := make([]attribute, 0, len(el.Attr))
		for _, a := range el.Attr {
			attrs = append(attrs, attribute{key: a.Key, value: a.Value})
		}
		children := el.ChildElements()

		text := ""
		if len(children) == 0 {
			text = strings.TrimSpace(el.Text())
		}
		id, err := t.build(parent, el.Tag, text, attrs)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := visit(c, id); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if t, err = newFromRoot(root.Tag); err != nil {
		return nil, err
	}
	if err := visit(root, noParent); err != nil {
		return nil, err
	}
	return t, nil
}

// DecodeJSON builds a tree from a JSON document. Attributes of one node are
// applied in key order, so "flex" is overridden by "flex-width".
func DecodeJSON(r io.Reader) (*Tree, error) {
	var doc docNode
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Kind == "" {
		return nil, fmt.Errorf("%w: root has no kind", ErrInvalidDocument)
	}

	t, err := newFromRoot(doc.Kind)
	if err != nil {
		return nil, err
	}
	var visit func(n docNode, parent NodeID) error
	visit = func(n docNode, parent NodeID) error {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]attribute, 0, len(keys)+1)
		if n.ID != "" {
			attrs = append(attrs, attribute{key: attrID, value: n.ID})
		}
		for _, k := range keys {
			attrs = append(attrs, attribute{key: k, value: n.Attrs[k]})
		}
		id, err := t.build(parent, n.Kind, n.Text, attrs)
		if err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := visit(c, id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(doc, noParent); err != nil {
		return nil, err
	}
	return t, nil
}

// noParent tells build to fill in the pre-allocated root.
const noParent = ^NodeID(0)

func newFromRoot(kind string) (*Tree, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: element without a kind", ErrInvalidDocument)
	}
	return New(kind, torin.Node{}), nil
}

// build applies attrs to a fresh node and attaches it under parent, or
// writes it into the root when parent is noParent.
func (t *Tree) build(parent NodeID, kind, text string, attrs []attribute) (NodeID, error) {
	if kind == "" {
		return 0, fmt.Errorf("%w: element without a kind", ErrInvalidDocument)
	}
	var node torin.Node
	name := ""
	for _, a := range attrs {
		switch a.key {
		case attrID:
			name = a.value
		case attrText:
			text = a.value
		default:
			if err := ApplyAttribute(&node, a.key, a.value); err != nil {
				return 0, fmt.Errorf("<%s>: %w", kind, err)
			}
		}
	}

	id := t.root
	if parent == noParent {
		e := t.nodes[id]
		e.kind, e.node = kind, node
	} else {
		var err error
		if id, err = t.Add(parent, kind, node); err != nil {
			return 0, err
		}
	}
	t.nodes[id].text = text
	if name != "" {
		if err := t.SetName(id, name); err != nil {
			return 0, err
		}
	}
	return id, nil
}

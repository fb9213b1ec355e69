// File: internal/textmeasure/measurer.go
package textmeasure

import (
	"fmt"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
	"go.uber.org/zap"
)

// Source supplies the text of leaf nodes. *tree.Tree satisfies it.
type Source interface {
	Text(id tree.NodeID) (string, bool)
}

// Paragraph is the payload stored in torin.LayoutNode.Data for text leaves.
type Paragraph struct {
	Lines      []string `json:"lines"`
	Width      float32  `json:"width"`
	LineHeight float32  `json:"line_height"`
}

// Reference is the last layout reported for a node with layout references.
type Reference struct {
	Area       torin.Area
	InnerArea  torin.Area
	InnerSizes torin.Size2D
}

// Measurer sizes text leaves by word-wrapping them to the space the engine
// offers. It implements torin.LayoutMeasurer[tree.NodeID] and is not safe
// for concurrent use; give every engine its own.
type Measurer struct {
	metrics Metrics
	source  Source
	logger  *zap.Logger
	refs    map[tree.NodeID]Reference
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Measurer) { m.logger = logger }
}

// New creates a measurer over the given metrics.
func New(metrics Metrics, source Source, opts ...Option) *Measurer {
	m := &Measurer{
		metrics: metrics,
		source:  source,
		logger:  zap.NewNop(),
		refs:    make(map[tree.NodeID]Reference),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("textmeasure")
	return m
}

// FromConfig selects a measurer by its configured name. "none" yields a nil
// measurer, under which text leaves take only the size their attributes give.
func FromConfig(cfg config.LayoutConfig, source Source, opts ...Option) (torin.LayoutMeasurer[tree.NodeID], error) {
	switch cfg.Measurer {
	case config.MeasurerPixel:
		return New(NewPixelMetrics(nil), source, opts...), nil
	case config.MeasurerCell:
		return New(CellMetrics{}, source, opts...), nil
	case config.MeasurerNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown measurer %q", cfg.Measurer)
}

func (m *Measurer) ShouldMeasure(id tree.NodeID) bool {
	_, ok := m.source.Text(id)
	return ok
}

// Measure wraps the text to the offered width. An unbounded or empty offer
// keeps every paragraph on one line.
func (m *Measurer) Measure(id tree.NodeID, _ torin.Node, mostFitting torin.Size2D) (torin.Size2D, any, bool) {
	text, ok := m.source.Text(id)
	if !ok {
		return torin.Size2D{}, nil, false
	}

	lines := Wrap(text, mostFitting.Width, m.metrics.Advance)
	p := Paragraph{Lines: lines, LineHeight: m.metrics.LineHeight()}
	for _, line := range lines {
		if w := m.metrics.Advance(line); w > p.Width {
			p.Width = w
		}
	}
	size := torin.Size2D{Width: p.Width, Height: p.LineHeight * float32(len(lines))}

	m.logger.Debug("Measured text leaf.",
		zap.Uint64("node", uint64(id)),
		zap.Int("lines", len(lines)),
		zap.Float32("width", size.Width),
		zap.Float32("offered", mostFitting.Width),
	)
	return size, p, true
}

// ShouldMeasureInnerChildren lets the engine lay out everything except text
// leaves, whose content is the text itself.
func (m *Measurer) ShouldMeasureInnerChildren(id tree.NodeID) bool {
	return !m.ShouldMeasure(id)
}

func (m *Measurer) NotifyLayoutReferences(id tree.NodeID, area, innerArea torin.Area, innerSizes torin.Size2D) {
	m.refs[id] = Reference{Area: area, InnerArea: innerArea, InnerSizes: innerSizes}
}

// Reference returns the last layout reported for id.
func (m *Measurer) Reference(id tree.NodeID) (Reference, bool) {
	r, ok := m.refs[id]
	return r, ok
}

// References returns a copy of every reported layout reference.
func (m *Measurer) References() map[tree.NodeID]Reference {
	out := make(map[tree.NodeID]Reference, len(m.refs))
	for k, v := range m.refs {
		out[k] = v
	}
	return out
}

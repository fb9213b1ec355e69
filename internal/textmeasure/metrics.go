// File: internal/textmeasure/metrics.go
package textmeasure

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Metrics measures text in one unit system, pixels or terminal cells.
type Metrics interface {
	// Advance returns the width of a single line of text.
	Advance(s string) float32
	// LineHeight returns the distance between two baselines.
	LineHeight() float32
}

// PixelMetrics measures text with a font face.
type PixelMetrics struct {
	face font.Face
}

// NewPixelMetrics wraps face. A nil face selects basicfont.Face7x13.
func NewPixelMetrics(face font.Face) *PixelMetrics {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &PixelMetrics{face: face}
}

// Advance converts the 26.6 fixed-point advance into pixels.
func (p *PixelMetrics) Advance(s string) float32 {
	return float32(font.MeasureString(p.face, s)) / 64
}

func (p *PixelMetrics) LineHeight() float32 {
	return float32(p.face.Metrics().Height) / 64
}

// CellMetrics measures text in terminal cells. East Asian wide runes take
// two cells and combining marks none.
type CellMetrics struct{}

func (CellMetrics) Advance(s string) float32 { return float32(runewidth.StringWidth(s)) }
func (CellMetrics) LineHeight() float32      { return 1 }

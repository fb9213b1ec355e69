// pkg/torin/size.go
package torin

import (
	"fmt"
	"math"
	"strconv"
)

// Phase tells size resolution which sizes are already known.
type Phase uint8

const (
	// PhaseInitial pre-measures children; deferred sizes are not known yet.
	PhaseInitial Phase = iota
	// PhaseInitialDeferred measures flex and fill-minimum children once the
	// space claimed by their fixed siblings is known.
	PhaseInitialDeferred
	// PhaseFinal is the authoritative measurement.
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseInitialDeferred:
		return "initial-deferred"
	default:
		return "final"
	}
}

// SizeKind enumerates the ways a dimension can be specified.
type SizeKind uint8

const (
	// SizeUnset behaves like SizeInner for width/height and means "no bound"
	// for minimum/maximum sizes.
	SizeUnset SizeKind = iota
	SizePixels
	SizePercentage
	SizeInner
	SizeInnerPercentage
	SizeRootPercentage
	SizeFill
	SizeFillMinimum

	// sizeFlex is synthesized for children that grow inside a ContentFlex
	// parent. It is never part of a Node.
	sizeFlex
)

// Size is the sizing rule for one dimension. Value is only meaningful for the
// pixel and percentage kinds.
type Size struct {
	Kind  SizeKind
	Value float32
}

func Pixels(v float32) Size          { return Size{Kind: SizePixels, Value: v} }
func Percentage(v float32) Size      { return Size{Kind: SizePercentage, Value: v} }
func Inner() Size                    { return Size{Kind: SizeInner} }
func InnerPercentage(v float32) Size { return Size{Kind: SizeInnerPercentage, Value: v} }
func RootPercentage(v float32) Size  { return Size{Kind: SizeRootPercentage, Value: v} }
func Fill() Size                     { return Size{Kind: SizeFill} }
func FillMinimum() Size              { return Size{Kind: SizeFillMinimum} }

// IsSet reports whether the size was specified.
func (s Size) IsSet() bool { return s.Kind != SizeUnset }

// InnerSized reports whether the dimension derives from the node's children.
func (s Size) InnerSized() bool {
	switch s.Kind {
	case SizeUnset, SizeInner, SizeInnerPercentage, SizeFillMinimum:
		return true
	}
	return false
}

// String renders the size in the document attribute grammar.
func (s Size) String() string {
	num := func(v float32) string { return strconv.FormatFloat(float64(v), 'f', -1, 32) }
	switch s.Kind {
	case SizePixels:
		return num(s.Value)
	case SizePercentage:
		return num(s.Value) + "%"
	case SizeInnerPercentage:
		return "auto " + num(s.Value) + "%"
	case SizeRootPercentage:
		return "v" + num(s.Value) + "%"
	case SizeFill:
		return "fill"
	case SizeFillMinimum:
		return "fill-min"
	case sizeFlex:
		return "flex(" + num(s.Value) + ")"
	default:
		return "auto"
	}
}

// sizeContext carries everything needed to turn a Size into pixels on one axis.
type sizeContext struct {
	parent    float32 // parent's resolved size
	available float32 // parent's currently available space
	margin    float32 // both-sided margin on this axis
	root      float32 // viewport size
	phase     Phase
}

// eval resolves s to a margin-inclusive extent. The boolean is false when
// the size cannot be known yet (content-derived or deferred).
func (s Size) eval(c sizeContext) (float32, bool) {
	switch s.Kind {
	case SizePixels:
		return s.Value + c.margin, true
	case SizePercentage:
		if c.parent <= 0 {
			return c.margin, true
		}
		return c.parent/100*s.Value + c.margin, true
	case SizeRootPercentage:
		return c.root/100*s.Value + c.margin, true
	case SizeFill:
		return c.available, true
	case SizeFillMinimum, sizeFlex:
		if c.phase == PhaseInitial {
			return 0, false
		}
		return c.available, true
	}
	return 0, false
}

// ResolveSize turns a size into a definite pixel value and
// clamps it to [minimum, maximum]. value is the baseline used when size is
// content-derived; it excludes margins, which are added on top. When the
// bounds conflict, minimum wins.
func ResolveSize(size Size, value, parent, available, margin float32, minimum, maximum Size, root float32, phase Phase) float32 {
	c := sizeContext{parent: parent, available: available, margin: margin, root: root, phase: phase}

	v, ok := size.eval(c)
	if !ok {
		v = value + margin
	}
	if hi, ok := maximum.eval(c); ok && maximum.Kind != sizeFlex && v > hi {
		v = hi
	}
	if lo, ok := minimum.eval(c); ok && minimum.Kind != sizeFlex && v < lo {
		v = lo
	}
	if math.IsNaN(float64(v)) {
		panic(fmt.Sprintf("torin: size %s resolved to NaN", size))
	}
	return nonNegative(v)
}

// mostFitting picks the space offered to an external measurer: the whole
// available space for content-derived axes, the resolved size otherwise.
func (s Size) mostFitting(resolved, available float32) float32 {
	if s.Kind == SizeUnset || s.Kind == SizeInner || s.Kind == SizeInnerPercentage {
		return available
	}
	return resolved
}

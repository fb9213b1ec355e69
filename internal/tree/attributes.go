// File: internal/tree/attributes.go
package tree

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xkilldash9x/torin/pkg/torin"
)

// Attribute names understood by ApplyAttribute. "id" and "text" are handled
// by the decoders.
const (
	AttrWidth          = "width"
	AttrHeight         = "height"
	AttrMinWidth       = "min-width"
	AttrMinHeight      = "min-height"
	AttrMaxWidth       = "max-width"
	AttrMaxHeight      = "max-height"
	AttrMargin         = "margin"
	AttrPadding        = "padding"
	AttrDirection      = "direction"
	AttrMainAlignment  = "main-alignment"
	AttrCrossAlignment = "cross-alignment"
	AttrContent        = "content"
	AttrWrap           = "wrap"
	AttrSpacing        = "spacing"
	AttrPosition       = "position"
	AttrTop            = "top"
	AttrRight          = "right"
	AttrBottom         = "bottom"
	AttrLeft           = "left"
	AttrScrollX        = "scroll-x"
	AttrScrollY        = "scroll-y"
	AttrFlex           = "flex"
	AttrFlexWidth      = "flex-width"
	AttrFlexHeight     = "flex-height"
	AttrLayoutRefs     = "layout-refs"
)

// ParseSize parses the size grammar:
//
//	auto | "" | fill | fill-min | auto N% | vN% | N% | N
func ParseSize(s string) (torin.Size, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "auto":
		return torin.Inner(), nil
	case "fill":
		return torin.Fill(), nil
	case "fill-min":
		return torin.FillMinimum(), nil
	}

	if rest, ok := strings.CutPrefix(s, "auto "); ok {
		v, err := parsePercent(rest)
		if err != nil {
			return torin.Size{}, fmt.Errorf("size %q: %w", s, err)
		}
		return torin.InnerPercentage(v), nil
	}
	if rest, ok := strings.CutPrefix(s, "v"); ok {
		v, err := parsePercent(rest)
		if err != nil {
			return torin.Size{}, fmt.Errorf("size %q: %w", s, err)
		}
		return torin.RootPercentage(v), nil
	}
	if strings.HasSuffix(s, "%") {
		v, err := parsePercent(s)
		if err != nil {
			return torin.Size{}, fmt.Errorf("size %q: %w", s, err)
		}
		return torin.Percentage(v), nil
	}

	v, err := parseNumber(s)
	if err != nil {
		return torin.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	return torin.Pixels(v), nil
}

// ParseGaps parses one, two or four space separated numbers in CSS order.
func ParseGaps(s string) (torin.Gaps, error) {
	fields := strings.Fields(s)
	values := make([]float32, len(fields))
	for i, f := range fields {
		v, err := parseNumber(f)
		if err != nil {
			return torin.Gaps{}, fmt.Errorf("gaps %q: %w", s, err)
		}
		values[i] = v
	}
	switch len(values) {
	case 1:
		return torin.UniformGaps(values[0]), nil
	case 2:
		return torin.Gaps{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, nil
	case 4:
		return torin.Gaps{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, nil
	}
	return torin.Gaps{}, fmt.Errorf("%w: gaps %q must have 1, 2 or 4 values", ErrInvalidAttribute, s)
}

// ParseAlignment parses start, center, end, space-between, space-around and
// space-evenly.
func ParseAlignment(s string) (torin.Alignment, error) {
	for _, a := range []torin.Alignment{
		torin.AlignStart, torin.AlignCenter, torin.AlignEnd,
		torin.AlignSpaceBetween, torin.AlignSpaceAround, torin.AlignSpaceEvenly,
	} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown alignment %q", ErrInvalidAttribute, s)
}

// ApplyAttributes applies attrs to node in key order, so "flex" is
// overridden by "flex-width".
func ApplyAttributes(node *torin.Node, attrs map[string]string) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ApplyAttribute(node, k, attrs[k]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAttribute sets one document attribute on node.
func ApplyAttribute(node *torin.Node, key, value string) error {
	var err error
	switch key {
	case AttrWidth:
		node.Width, err = ParseSize(value)
	case AttrHeight:
		node.Height, err = ParseSize(value)
	case AttrMinWidth:
		node.MinWidth, err = parseBound(value)
	case AttrMinHeight:
		node.MinHeight, err = parseBound(value)
	case AttrMaxWidth:
		node.MaxWidth, err = parseBound(value)
	case AttrMaxHeight:
		node.MaxHeight, err = parseBound(value)
	case AttrMargin:
		node.Margin, err = ParseGaps(value)
	case AttrPadding:
		node.Padding, err = ParseGaps(value)
	case AttrDirection:
		switch value {
		case "vertical":
			node.Direction = torin.Vertical
		case "horizontal":
			node.Direction = torin.Horizontal
		default:
			err = fmt.Errorf("%w: unknown direction %q", ErrInvalidAttribute, value)
		}
	case AttrMainAlignment:
		node.MainAlignment, err = ParseAlignment(value)
	case AttrCrossAlignment:
		node.CrossAlignment, err = ParseAlignment(value)
	case AttrContent:
		switch value {
		case "normal":
			node.Content = torin.ContentNormal
		case "fit":
			node.Content = torin.ContentFit
		case "flex":
			node.Content = torin.ContentFlex
		default:
			err = fmt.Errorf("%w: unknown content %q", ErrInvalidAttribute, value)
		}
	case AttrWrap:
		var wrap bool
		if wrap, err = strconv.ParseBool(value); err == nil {
			node.WrapContent = torin.NoWrap
			if wrap {
				node.WrapContent = torin.Wrap
			}
		}
	case AttrSpacing:
		node.Spacing, err = parseNumber(value)
	case AttrPosition:
		switch value {
		case "stacked":
			node.Position.Kind = torin.Stacked
		case "absolute":
			node.Position.Kind = torin.Absolute
		default:
			err = fmt.Errorf("%w: unknown position %q", ErrInvalidAttribute, value)
		}
	case AttrTop:
		node.Position.Top, err = parseOffset(value)
	case AttrRight:
		node.Position.Right, err = parseOffset(value)
	case AttrBottom:
		node.Position.Bottom, err = parseOffset(value)
	case AttrLeft:
		node.Position.Left, err = parseOffset(value)
	case AttrScrollX:
		node.OffsetX, err = parseNumber(value)
	case AttrScrollY:
		node.OffsetY, err = parseNumber(value)
	case AttrFlex:
		var grow float32
		if grow, err = parseNumber(value); err == nil {
			node.FlexWidth, node.FlexHeight = grow, grow
		}
	case AttrFlexWidth:
		node.FlexWidth, err = parseNumber(value)
	case AttrFlexHeight:
		node.FlexHeight, err = parseNumber(value)
	case AttrLayoutRefs:
		node.HasLayoutReferences, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttribute, key)
	}
	if err != nil {
		if !errors.Is(err, ErrInvalidAttribute) {
			err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidAttribute, key, value, err)
		}
		return err
	}
	return nil
}

// parseBound parses min/max sizes, where "auto" and "" mean no bound.
func parseBound(s string) (torin.Size, error) {
	size, err := ParseSize(s)
	if err != nil {
		return torin.Size{}, err
	}
	if size.Kind == torin.SizeInner {
		return torin.Size{}, nil
	}
	return size, nil
}

func parseOffset(s string) (*float32, error) {
	v, err := parseNumber(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parsePercent(s string) (float32, error) {
	num, ok := strings.CutSuffix(strings.TrimSpace(s), "%")
	if !ok {
		return 0, fmt.Errorf("%w: missing %%", ErrInvalidAttribute)
	}
	return parseNumber(num)
}

// parseNumber rejects NaN and infinities, which the engine treats as fatal.
func parseNumber(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAttribute, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAttribute, s)
	}
	return float32(f), nil
}

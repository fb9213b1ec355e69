// pkg/torin/size_test.go
package torin_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xkilldash9x/torin/pkg/torin"
)

func TestResolveSize(t *testing.T) {
	unset := torin.Size{}
	tests := []struct {
		name     string
		size     torin.Size
		value    float32
		margin   float32
		min, max torin.Size
		phase    torin.Phase
		want     float32
	}{
		{name: "pixels", size: torin.Pixels(120), want: 120},
		{name: "pixels with margin", size: torin.Pixels(120), margin: 10, want: 130},
		{name: "percentage", size: torin.Percentage(50), want: 400},
		{name: "percentage with margin", size: torin.Percentage(50), margin: 4, want: 404},
		{name: "root percentage", size: torin.RootPercentage(10), want: 100},
		{name: "fill takes available", size: torin.Fill(), want: 600},
		{name: "inner falls back to value", size: torin.Inner(), value: 30, margin: 2, want: 32},
		{name: "unset behaves like inner", size: unset, value: 30, want: 30},
		{name: "fill minimum unknown in initial phase", size: torin.FillMinimum(), value: 7, phase: torin.PhaseInitial, want: 7},
		{name: "fill minimum known when deferred", size: torin.FillMinimum(), value: 7, phase: torin.PhaseInitialDeferred, want: 600},
		{name: "clamped to maximum", size: torin.Pixels(500), max: torin.Pixels(200), want: 200},
		{name: "clamped to minimum", size: torin.Pixels(50), min: torin.Pixels(200), want: 200},
		{name: "minimum wins over maximum", size: torin.Pixels(250), min: torin.Pixels(300), max: torin.Pixels(200), want: 300},
		{name: "percentage bound", size: torin.Pixels(700), max: torin.Percentage(50), want: 400},
		{name: "never negative", size: torin.Pixels(-20), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase := tt.phase
			if phase == 0 && tt.size.Kind != torin.SizeFillMinimum {
				phase = torin.PhaseFinal
			}
			got := torin.ResolveSize(tt.size, tt.value, 800, 600, tt.margin, tt.min, tt.max, 1000, phase)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSize_NaNPanics(t *testing.T) {
	nan := float32(math.NaN())
	assert.Panics(t, func() {
		torin.ResolveSize(torin.Inner(), nan, 800, 600, 0, torin.Size{}, torin.Size{}, 1000, torin.PhaseFinal)
	})
}

func TestSize_String(t *testing.T) {
	tests := map[string]torin.Size{
		"auto":     {},
		"120":      torin.Pixels(120),
		"12.5":     torin.Pixels(12.5),
		"50%":      torin.Percentage(50),
		"auto 50%": torin.InnerPercentage(50),
		"v25%":     torin.RootPercentage(25),
		"fill":     torin.Fill(),
		"fill-min": torin.FillMinimum(),
	}
	for want, size := range tests {
		assert.Equal(t, want, size.String())
	}
	assert.Equal(t, "auto", torin.Inner().String())
}

func TestSize_InnerSized(t *testing.T) {
	assert.True(t, torin.Size{}.InnerSized())
	assert.True(t, torin.Inner().InnerSized())
	assert.True(t, torin.InnerPercentage(10).InnerSized())
	assert.True(t, torin.FillMinimum().InnerSized())
	assert.False(t, torin.Pixels(10).InnerSized())
	assert.False(t, torin.Fill().InnerSized())
	assert.False(t, torin.Percentage(10).InnerSized())
}

func TestEnums_String(t *testing.T) {
	assert.Equal(t, "horizontal", torin.Horizontal.String())
	assert.Equal(t, "space-evenly", torin.AlignSpaceEvenly.String())
	assert.Equal(t, "flex", torin.ContentFlex.String())
	assert.Equal(t, "inner-layout", torin.DirtyInnerLayout.String())
	assert.Equal(t, "initial-deferred", torin.PhaseInitialDeferred.String())
}

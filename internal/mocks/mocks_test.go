// internal/mocks/mocks_test.go
package mocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/mocks"
	"github.com/xkilldash9x/torin/pkg/torin"
)

// The mocks must keep satisfying the interfaces they stand in for.
var _ config.Interface = (*mocks.MockConfig)(nil)

var _ torin.LayoutMeasurer[uint64] = (*mocks.MockMeasurer[uint64])(nil)

func TestMockMeasurer_ReturnsConfiguredValues(t *testing.T) {
	m := new(mocks.MockMeasurer[uint64])
	m.On("ShouldMeasure", uint64(7)).Return(true)
	m.On("Measure", uint64(7), mock.Anything, torin.Size2D{Width: 10, Height: 10}).
		Return(torin.Size2D{Width: 4, Height: 2}, "payload", true)

	assert.True(t, m.ShouldMeasure(7))
	size, data, ok := m.Measure(7, torin.Node{}, torin.Size2D{Width: 10, Height: 10})
	assert.True(t, ok)
	assert.Equal(t, torin.Size2D{Width: 4, Height: 2}, size)
	assert.Equal(t, "payload", data)
	m.AssertExpectations(t)
}

func TestMockConfig_Getters(t *testing.T) {
	m := new(mocks.MockConfig)
	m.On("Batch").Return(config.BatchConfig{Concurrency: 3})

	assert.Equal(t, 3, m.Batch().Concurrency)
	m.AssertExpectations(t)
}

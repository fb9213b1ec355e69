// File: internal/mocks/mocks.go
package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/pkg/torin"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Layout() config.LayoutConfig {
	args := m.Called()
	return args.Get(0).(config.LayoutConfig)
}

func (m *MockConfig) Output() config.OutputConfig {
	args := m.Called()
	return args.Get(0).(config.OutputConfig)
}

func (m *MockConfig) Batch() config.BatchConfig {
	args := m.Called()
	return args.Get(0).(config.BatchConfig)
}

// SetViewport implements config.Interface.
func (m *MockConfig) SetViewport(width, height float64) {
	m.Called(width, height)
}

// -- Layout Measurer Mock --

// MockMeasurer mocks torin.LayoutMeasurer for any key type.
type MockMeasurer[K comparable] struct {
	mock.Mock
}

func (m *MockMeasurer[K]) ShouldMeasure(key K) bool {
	args := m.Called(key)
	return args.Bool(0)
}

// Measure returns the configured size, payload and ok flag.
func (m *MockMeasurer[K]) Measure(key K, node torin.Node, mostFitting torin.Size2D) (torin.Size2D, any, bool) {
	args := m.Called(key, node, mostFitting)
	return args.Get(0).(torin.Size2D), args.Get(1), args.Bool(2)
}

func (m *MockMeasurer[K]) ShouldMeasureInnerChildren(key K) bool {
	args := m.Called(key)
	return args.Bool(0)
}

func (m *MockMeasurer[K]) NotifyLayoutReferences(key K, area, innerArea torin.Area, innerSizes torin.Size2D) {
	m.Called(key, area, innerArea, innerSizes)
}

// -- Layout Cache Mock --

// MockLayoutCache records the invalidations a tree mutation produces.
type MockLayoutCache[K comparable] struct {
	mock.Mock
}

func (m *MockLayoutCache[K]) Invalidate(key K) {
	m.Called(key)
}

func (m *MockLayoutCache[K]) InvalidateWithReason(key K, reason torin.DirtyReason) {
	m.Called(key, reason)
}

func (m *MockLayoutCache[K]) Remove(key K) {
	m.Called(key)
}

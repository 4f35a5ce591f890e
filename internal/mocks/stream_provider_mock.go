package mocks

import (
	"context"

	"receptomat/internal/core/ai/provider"

	"github.com/stretchr/testify/mock"
)

// MockStreamProvider is a mock type for the StreamProvider type
type MockStreamProvider struct {
	mock.Mock
}

// GenerateStream provides a mock function with given fields: ctx, req, onChunk
func (_m *MockStreamProvider) GenerateStream(ctx context.Context, req *provider.Request, onChunk provider.ChunkHandler) error {
	ret := _m.Called(ctx, req, onChunk)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *provider.Request, provider.ChunkHandler) error); ok {
		r0 = rf(ctx, req, onChunk)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Name provides a mock function with given fields:
func (_m *MockStreamProvider) Name() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// GetModel provides a mock function with given fields:
func (_m *MockStreamProvider) GetModel() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Close provides a mock function with given fields:
func (_m *MockStreamProvider) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockStreamProvider creates a new instance of MockStreamProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStreamProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStreamProvider {
	m := &MockStreamProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// StreamChunks returns a GenerateStream implementation that feeds chunks in order and then returns err.
func StreamChunks(err error, chunks ...string) func(context.Context, *provider.Request, provider.ChunkHandler) error {
	return func(ctx context.Context, _ *provider.Request, onChunk provider.ChunkHandler) error {
		for _, c := range chunks {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if hErr := onChunk(c); hErr != nil {
				return hErr
			}
		}
		return err
	}
}

var _ provider.StreamProvider = (*MockStreamProvider)(nil)

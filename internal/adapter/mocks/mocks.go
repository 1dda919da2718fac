// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"
	m "gooze.dev/pkg/mutorch/internal/model"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTestRunner is a mock of adapter.TestRunner.
type MockTestRunner struct {
	mock.Mock
}

// NewMockTestRunner creates a MockTestRunner asserting its expectations on cleanup.
func NewMockTestRunner(t cleanupT) *MockTestRunner {
	mockRunner := &MockTestRunner{}
	mockRunner.Test(t)
	t.Cleanup(func() { mockRunner.AssertExpectations(t) })

	return mockRunner
}

// RunMutant provides a mock function.
func (_m *MockTestRunner) RunMutant(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error) {
	ret := _m.Called(ctx, options)

	if fn, ok := ret.Get(0).(func(context.Context, m.MutantRunOptions) (m.MutantRunResult, error)); ok {
		return fn(ctx, options)
	}

	return ret.Get(0).(m.MutantRunResult), ret.Error(1)
}

// MockDisposableTestRunner is a MockTestRunner that also implements adapter.Disposer.
type MockDisposableTestRunner struct {
	MockTestRunner
}

// NewMockDisposableTestRunner creates a MockDisposableTestRunner asserting its expectations on cleanup.
func NewMockDisposableTestRunner(t cleanupT) *MockDisposableTestRunner {
	mockRunner := &MockDisposableTestRunner{}
	mockRunner.Test(t)
	t.Cleanup(func() { mockRunner.AssertExpectations(t) })

	return mockRunner
}

// Dispose provides a mock function.
func (_m *MockDisposableTestRunner) Dispose(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// MockSessionStore is a mock of adapter.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

// NewMockSessionStore creates a MockSessionStore asserting its expectations on cleanup.
func NewMockSessionStore(t cleanupT) *MockSessionStore {
	mockStore := &MockSessionStore{}
	mockStore.Test(t)
	t.Cleanup(func() { mockStore.AssertExpectations(t) })

	return mockStore
}

// Load provides a mock function.
func (_m *MockSessionStore) Load(ctx context.Context, path m.Path) (m.SessionInput, error) {
	ret := _m.Called(ctx, path)
	return ret.Get(0).(m.SessionInput), ret.Error(1)
}

// MockReportStore is a mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a MockReportStore asserting its expectations on cleanup.
func NewMockReportStore(t cleanupT) *MockReportStore {
	mockStore := &MockReportStore{}
	mockStore.Test(t)
	t.Cleanup(func() { mockStore.AssertExpectations(t) })

	return mockStore
}

// SaveReport provides a mock function.
func (_m *MockReportStore) SaveReport(ctx context.Context, dir m.Path, report m.SessionReport) error {
	ret := _m.Called(ctx, dir, report)
	return ret.Error(0)
}

// LoadReport provides a mock function.
func (_m *MockReportStore) LoadReport(ctx context.Context, dir m.Path) (m.SessionReport, error) {
	ret := _m.Called(ctx, dir)
	return ret.Get(0).(m.SessionReport), ret.Error(1)
}

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// NewMockSourceFSAdapter creates a MockSourceFSAdapter asserting its expectations on cleanup.
func NewMockSourceFSAdapter(t cleanupT) *MockSourceFSAdapter {
	mockFS := &MockSourceFSAdapter{}
	mockFS.Test(t)
	t.Cleanup(func() { mockFS.AssertExpectations(t) })

	return mockFS
}

// ReadFile provides a mock function.
func (_m *MockSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	ret := _m.Called(ctx, path)

	data, _ := ret.Get(0).([]byte)

	return data, ret.Error(1)
}

// WriteFile provides a mock function.
func (_m *MockSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	ret := _m.Called(ctx, path, content, perm)
	return ret.Error(0)
}

// MkdirAll provides a mock function.
func (_m *MockSourceFSAdapter) MkdirAll(ctx context.Context, path m.Path) error {
	ret := _m.Called(ctx, path)
	return ret.Error(0)
}

// FileInfo provides a mock function.
func (_m *MockSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	ret := _m.Called(ctx, path)

	info, _ := ret.Get(0).(os.FileInfo)

	return info, ret.Error(1)
}

// JoinPath provides a mock function.
func (_m *MockSourceFSAdapter) JoinPath(elem ...string) m.Path {
	args := make([]interface{}, len(elem))
	for i, e := range elem {
		args[i] = e
	}

	ret := _m.Called(args...)

	return ret.Get(0).(m.Path)
}

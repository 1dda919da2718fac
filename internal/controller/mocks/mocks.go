// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gooze.dev/pkg/mutorch/internal/controller"
	m "gooze.dev/pkg/mutorch/internal/model"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUI is a mock of controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a MockUI asserting its expectations on cleanup.
func NewMockUI(t cleanupT) *MockUI {
	mockUI := &MockUI{}
	mockUI.Test(t)
	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

// Start provides a mock function.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := []interface{}{ctx}
	for _, option := range options {
		args = append(args, option)
	}

	ret := _m.Called(args...)

	return ret.Error(0)
}

// Close provides a mock function.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait provides a mock function.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayMatches provides a mock function.
func (_m *MockUI) DisplayMatches(ctx context.Context, matched []m.MutantTestCoverage) error {
	ret := _m.Called(ctx, matched)
	return ret.Error(0)
}

// DisplayConcurrencyInfo provides a mock function.
func (_m *MockUI) DisplayConcurrencyInfo(ctx context.Context, workers int, mutants int) {
	_m.Called(ctx, workers, mutants)
}

// DisplayMutantTested provides a mock function.
func (_m *MockUI) DisplayMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress) {
	_m.Called(ctx, result, progress)
}

// DisplaySummary provides a mock function.
func (_m *MockUI) DisplaySummary(ctx context.Context, summary m.Summary, score float64) {
	_m.Called(ctx, summary, score)
}

// DisplayReport provides a mock function.
func (_m *MockUI) DisplayReport(ctx context.Context, report m.SessionReport, diffs map[string]string) error {
	ret := _m.Called(ctx, report, diffs)
	return ret.Error(0)
}

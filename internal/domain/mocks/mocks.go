// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gooze.dev/pkg/mutorch/internal/domain"
	m "gooze.dev/pkg/mutorch/internal/model"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow asserting its expectations on cleanup.
func NewMockWorkflow(t cleanupT) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Test(t)
	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// Run provides a mock function.
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) (m.SessionReport, error) {
	ret := _m.Called(ctx, args)

	report, _ := ret.Get(0).(m.SessionReport)

	return report, ret.Error(1)
}

// Match provides a mock function.
func (_m *MockWorkflow) Match(ctx context.Context, args domain.MatchArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// View provides a mock function.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// MockMatcher is a mock of domain.Matcher.
type MockMatcher struct {
	mock.Mock
}

// NewMockMatcher creates a MockMatcher asserting its expectations on cleanup.
func NewMockMatcher(t cleanupT) *MockMatcher {
	mockMatcher := &MockMatcher{}
	mockMatcher.Test(t)
	t.Cleanup(func() { mockMatcher.AssertExpectations(t) })

	return mockMatcher
}

// Match provides a mock function.
func (_m *MockMatcher) Match(ctx context.Context, baseline m.BaselineRun, mutants []*m.Mutant) ([]m.MutantTestCoverage, error) {
	ret := _m.Called(ctx, baseline, mutants)

	matched, _ := ret.Get(0).([]m.MutantTestCoverage)

	return matched, ret.Error(1)
}

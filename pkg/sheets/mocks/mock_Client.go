// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	sheets "github.com/sells-group/sheetsync/pkg/sheets"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ListTabs provides a mock function with given fields: ctx
func (_m *MockClient) ListTabs(ctx context.Context) ([]sheets.Tab, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListTabs")
	}

	var r0 []sheets.Tab
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]sheets.Tab, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []sheets.Tab); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]sheets.Tab)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RenameTab provides a mock function with given fields: ctx, sheetID, title
func (_m *MockClient) RenameTab(ctx context.Context, sheetID int64, title string) error {
	ret := _m.Called(ctx, sheetID, title)

	if len(ret) == 0 {
		panic("no return value specified for RenameTab")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64, string) error); ok {
		r0 = rf(ctx, sheetID, title)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ClearBasicFilter provides a mock function with given fields: ctx, sheetID
func (_m *MockClient) ClearBasicFilter(ctx context.Context, sheetID int64) error {
	ret := _m.Called(ctx, sheetID)

	if len(ret) == 0 {
		panic("no return value specified for ClearBasicFilter")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) error); ok {
		r0 = rf(ctx, sheetID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ClearBelowHeader provides a mock function with given fields: ctx, title
func (_m *MockClient) ClearBelowHeader(ctx context.Context, title string) error {
	ret := _m.Called(ctx, title)

	if len(ret) == 0 {
		panic("no return value specified for ClearBelowHeader")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, title)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// RowCount provides a mock function with given fields: ctx, title
func (_m *MockClient) RowCount(ctx context.Context, title string) (int64, error) {
	ret := _m.Called(ctx, title)

	if len(ret) == 0 {
		panic("no return value specified for RowCount")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (int64, error)); ok {
		return rf(ctx, title)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) int64); ok {
		r0 = rf(ctx, title)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, title)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateRange provides a mock function with given fields: ctx, title, startRow, values
func (_m *MockClient) UpdateRange(ctx context.Context, title string, startRow int64, values [][]any) error {
	ret := _m.Called(ctx, title, startRow, values)

	if len(ret) == 0 {
		panic("no return value specified for UpdateRange")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int64, [][]any) error); ok {
		r0 = rf(ctx, title, startRow, values)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// FormatColumnAsNumber provides a mock function with given fields: ctx, sheetID, column
func (_m *MockClient) FormatColumnAsNumber(ctx context.Context, sheetID int64, column int64) error {
	ret := _m.Called(ctx, sheetID, column)

	if len(ret) == 0 {
		panic("no return value specified for FormatColumnAsNumber")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64, int64) error); ok {
		r0 = rf(ctx, sheetID, column)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSignatureStore is a testify mock of ports.SignatureStore.
type MockSignatureStore struct {
	mock.Mock
}

type MockSignatureStore_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSignatureStore) EXPECT() *MockSignatureStore_Expecter {
	return &MockSignatureStore_Expecter{mock: &_m.Mock}
}

func (_m *MockSignatureStore) Get(ctx context.Context, sessionName string) (string, bool, error) {
	ret := _m.Called(ctx, sessionName)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

type MockSignatureStore_Get_Call struct {
	*mock.Call
}

func (_e *MockSignatureStore_Expecter) Get(ctx interface{}, sessionName interface{}) *MockSignatureStore_Get_Call {
	return &MockSignatureStore_Get_Call{Call: _e.mock.On("Get", ctx, sessionName)}
}

func (_c *MockSignatureStore_Get_Call) Return(signature string, found bool, err error) *MockSignatureStore_Get_Call {
	_c.Call.Return(signature, found, err)
	return _c
}

func (_m *MockSignatureStore) Put(ctx context.Context, sessionName string, signature string) error {
	ret := _m.Called(ctx, sessionName, signature)
	return ret.Error(0)
}

type MockSignatureStore_Put_Call struct {
	*mock.Call
}

func (_e *MockSignatureStore_Expecter) Put(ctx interface{}, sessionName interface{}, signature interface{}) *MockSignatureStore_Put_Call {
	return &MockSignatureStore_Put_Call{Call: _e.mock.On("Put", ctx, sessionName, signature)}
}

func (_c *MockSignatureStore_Put_Call) Return(err error) *MockSignatureStore_Put_Call {
	_c.Call.Return(err)
	return _c
}

// NewMockSignatureStore registers a cleanup that asserts every expectation was met.
func NewMockSignatureStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSignatureStore {
	m := &MockSignatureStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/pageshot/api/schemas"
)

// -- Browser Launcher Mock --

// MockLauncher mocks the schemas.BrowserLauncher interface.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context) (schemas.BrowserSession, error) {
	args := m.Called(ctx)
	var session schemas.BrowserSession
	if s := args.Get(0); s != nil {
		session = s.(schemas.BrowserSession)
	}
	return session, args.Error(1)
}

// -- Browser Session Mock --

// MockSession mocks the schemas.BrowserSession interface.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) NewPage(ctx context.Context) (schemas.Page, error) {
	args := m.Called(ctx)
	var page schemas.Page
	if p := args.Get(0); p != nil {
		page = p.(schemas.Page)
	}
	return page, args.Error(1)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockSession returns a session mock with ID and Close preconfigured, so
// tests only need to set up NewPage.
func NewMockSession(id string) *MockSession {
	s := new(MockSession)
	s.On("ID").Return(id).Maybe()
	s.On("Close").Return(nil)
	return s
}

// -- Page Mock --

// MockPage mocks the schemas.Page interface.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Goto(ctx context.Context, url string, timeout time.Duration) error {
	args := m.Called(ctx, url, timeout)
	return args.Error(0)
}

func (m *MockPage) Screenshot(ctx context.Context, opts schemas.CaptureOptions) ([]byte, error) {
	args := m.Called(ctx, opts)
	var data []byte
	if b := args.Get(0); b != nil {
		data = b.([]byte)
	}
	return data, args.Error(1)
}

func (m *MockPage) Locator(selector string) schemas.Locator {
	args := m.Called(selector)
	if l := args.Get(0); l != nil {
		return l.(schemas.Locator)
	}
	return nil
}

// -- Locator Mock --

// MockLocator mocks the schemas.Locator interface.
type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Screenshot(ctx context.Context, opts schemas.CaptureOptions) ([]byte, error) {
	args := m.Called(ctx, opts)
	var data []byte
	if b := args.Get(0); b != nil {
		data = b.([]byte)
	}
	return data, args.Error(1)
}

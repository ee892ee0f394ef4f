package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendPasswordResetMail(email, name, resetURL string) error {
	args := m.Called(email, name, resetURL)
	return args.Error(0)
}

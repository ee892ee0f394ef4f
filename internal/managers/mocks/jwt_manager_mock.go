package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockJWTManager struct {
	mock.Mock
}

func (m *MockJWTManager) GenerateJWT(subject string, expiry time.Duration) (string, error) {
	args := m.Called(subject, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockJWTManager) ValidateJWT(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

func (m *MockJWTManager) GenerateResetSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockJWTManager) HashResetSecret(plaintext string) string {
	args := m.Called(plaintext)
	return args.String(0)
}

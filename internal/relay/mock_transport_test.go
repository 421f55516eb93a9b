package relay_test

import (
	"github.com/stretchr/testify/mock"

	"anonpair/backend/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SendText(userID int64, text string, replyTo int) (int, error) {
	args := m.Called(userID, text, replyTo)
	return args.Int(0), args.Error(1)
}

func (m *MockTransport) SendMediaGroup(userID int64, parts []models.MediaPart) ([]int, error) {
	args := m.Called(userID, parts)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTransport) CopyMessage(userID int64, fromUser int64, messageID int, replyTo int) (int, error) {
	args := m.Called(userID, fromUser, messageID, replyTo)
	return args.Int(0), args.Error(1)
}

func (m *MockTransport) EditText(userID int64, messageID int, text string) error {
	args := m.Called(userID, messageID, text)
	return args.Error(0)
}

func (m *MockTransport) DeleteMessage(userID int64, messageID int) error {
	args := m.Called(userID, messageID)
	return args.Error(0)
}

func (m *MockTransport) Pin(userID int64, messageID int) error {
	args := m.Called(userID, messageID)
	return args.Error(0)
}

func (m *MockTransport) UnpinAll(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

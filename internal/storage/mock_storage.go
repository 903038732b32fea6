package storage

import (
	"github.com/stretchr/testify/mock"
)

// MockFileRemover stands in for Storage wherever only file removal is needed.
type MockFileRemover struct {
	mock.Mock
}

func (m *MockFileRemover) RemoveIfExists(storedPath string) error {
	args := m.Called(storedPath)
	return args.Error(0)
}

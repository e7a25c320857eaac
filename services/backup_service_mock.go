package services

import (
	"fmt"
	"sort"
	"sync"
)

// MockBackupService is a mock implementation of BackupService for testing
type MockBackupService struct {
	snapshots map[string]bool
	counter   int
	failNext  error
	mu        sync.Mutex
}

// NewMockBackupService creates a new mock backup service
func NewMockBackupService() *MockBackupService {
	return &MockBackupService{
		snapshots: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global backup service instance
func (m *MockBackupService) SetAsMockForTesting() {
	SetBackupService(m)
}

// FailNextWith makes the next operation return the given error
func (m *MockBackupService) FailNextWith(err error) {
	m.mu.Lock()
	m.failNext = err
	m.mu.Unlock()
}

// CreateSnapshot simulates uploading a database snapshot
func (m *MockBackupService) CreateSnapshot() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return "", err
	}

	m.counter++
	key := fmt.Sprintf("backups/mock_%d.db", m.counter)
	m.snapshots[key] = true
	return key, nil
}

// ListSnapshots returns the stored mock snapshot keys, newest first
func (m *MockBackupService) ListSnapshots() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.snapshots))
	for key := range m.snapshots {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// DeleteSnapshot removes a mock snapshot
func (m *MockBackupService) DeleteSnapshot(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	delete(m.snapshots, key)
	return nil
}

// SnapshotExists checks if a snapshot exists in the mock storage
func (m *MockBackupService) SnapshotExists(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[key]
}

func (m *MockBackupService) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockStorage is an in-memory Storage implementation for tests
type MockStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	counter int

	// UploadErr, when set, is returned by Upload
	UploadErr error
	// SignErr, when set, is returned by SignedURL
	SignErr error
	// DownloadErr, when set, is returned by Download
	DownloadErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		objects: make(map[string][]byte),
	}
}

func (m *MockStorage) Upload(ctx context.Context, folder, filename string, body io.Reader, contentType string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	key := fmt.Sprintf("%s/%d-%s", folder, m.counter, filename)
	m.objects[key] = data

	return key, nil
}

func (m *MockStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

func (m *MockStorage) SignedURL(ctx context.Context, key string) (string, error) {
	if m.SignErr != nil {
		return "", m.SignErr
	}
	if key == "" {
		return "", nil
	}
	return "https://mock-bucket.example.com/" + key + "?signature=test", nil
}

func (m *MockStorage) ExtractKeyFromSignedURL(rawURL string) string {
	return ExtractKeyFromSignedURL(rawURL)
}

// Put stores bytes under an explicit key, for seeding test fixtures
func (m *MockStorage) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = data
	return nil
}

// Has reports whether the key is currently stored
func (m *MockStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]
	return ok
}

// Get returns the stored bytes for a key
func (m *MockStorage) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	return data, ok
}

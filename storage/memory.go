package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// MemoryUploader keeps objects in process. It backs teardown reports when R2 is not configured
// and in tests.
type MemoryUploader struct {
	mu      sync.RWMutex
	objects map[string][]byte
	base    *url.URL
}

func NewMemoryUploader(publicBaseURL string) *MemoryUploader {
	base, err := url.Parse(publicBaseURL)
	if err != nil || publicBaseURL == "" {
		base = &url.URL{Scheme: "memory", Path: "/"}
	}
	return &MemoryUploader{objects: make(map[string][]byte), base: base}
}

func (m *MemoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	sum := md5.Sum(data)
	return &UploadResult{Key: key, Location: m.GetPublicURL(key), ETag: hex.EncodeToString(sum[:])}, nil
}

func (m *MemoryUploader) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryUploader) GetPublicURL(key string) string {
	return publicURL(m.base, key)
}

// Object returns a stored object.
func (m *MemoryUploader) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

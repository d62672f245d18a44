package testutil

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage keeps uploaded files in a map keyed by storage key.
type MemoryStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	loadErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

func (s *MemoryStorage) Save(ctx context.Context, ext string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return "", s.saveErr
	}
	key := fmt.Sprintf("cv_%s.%s", uuid.NewString(), ext)
	s.files[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *MemoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("failed to read file %s: %w", key, os.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key]; !ok {
		return fmt.Errorf("failed to delete file %s: %w", key, os.ErrNotExist)
	}
	delete(s.files, key)
	return nil
}

// Put stores data under an explicit key.
func (s *MemoryStorage) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = append([]byte(nil), data...)
}

func (s *MemoryStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStorage) FailSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *MemoryStorage) FailLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

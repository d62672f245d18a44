package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService persists raw uploaded files under opaque keys.
type StorageService interface {
	Save(ctx context.Context, ext string, data []byte) (string, error)
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// newStorageKey returns a unique key such as cv_<uuid>.pdf.
func newStorageKey(ext string) string {
	return fmt.Sprintf("cv_%s.%s", uuid.New().String(), strings.TrimPrefix(ext, "."))
}

type localStorage struct {
	uploadPath string
}

// NewLocalStorage stores files in uploadPath, creating it when missing.
func NewLocalStorage(uploadPath string) (StorageService, error) {
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &localStorage{uploadPath: uploadPath}, nil
}

func (s *localStorage) Save(ctx context.Context, ext string, data []byte) (string, error) {
	key := newStorageKey(ext)

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

func (s *localStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path keeps keys inside the upload directory.
func (s *localStorage) path(key string) string {
	return filepath.Join(s.uploadPath, filepath.Base(key))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// Ensure LocalObjectStorage implements ObjectStorageService
var _ catalogapp.ObjectStorageService = (*LocalObjectStorage)(nil)

// LocalObjectStorage stores objects on the local filesystem.
// Intended for development and single-instance deployments without S3.
type LocalObjectStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalObjectStorage creates a LocalObjectStorage rooted at baseDir
func NewLocalObjectStorage(baseDir, publicBaseURL string) (*LocalObjectStorage, error) {
	if baseDir == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalObjectStorage{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// objectPath resolves a storage key to a path under baseDir.
// Keys that escape the base directory are rejected.
func (s *LocalObjectStorage) objectPath(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}

	cleaned := filepath.Clean(filepath.FromSlash(storageKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %s", storageKey)
	}

	return filepath.Join(s.baseDir, cleaned), nil
}

// Upload stores data under storageKey
func (s *LocalObjectStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	target, err := s.objectPath(storageKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}

	return nil
}

// Delete removes the object stored under storageKey
func (s *LocalObjectStorage) Delete(_ context.Context, storageKey string) error {
	target, err := s.objectPath(storageKey)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// PublicURL returns the URL clients use to fetch the object
func (s *LocalObjectStorage) PublicURL(storageKey string) string {
	return s.publicBaseURL + "/" + strings.TrimPrefix(storageKey, "/")
}

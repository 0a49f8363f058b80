package storage

import (
	"context"
	"errors"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// StubImageStore is a placeholder image store. It returns deterministic
// URLs without talking to any backend. Use it for local development when
// storage.enabled is false.
type StubImageStore struct {
	// BaseURL is the base URL for generated upload/download URLs.
	BaseURL string
}

// NewStubImageStore creates a new StubImageStore
func NewStubImageStore() *StubImageStore {
	return &StubImageStore{
		BaseURL: "https://storage.example.com",
	}
}

var _ catalogapp.ImageStore = (*StubImageStore)(nil)

// GenerateUploadURL generates a stub upload URL
func (s *StubImageStore) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL generates a stub download URL
func (s *StubImageStore) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// DeleteObject is a no-op that always succeeds
func (s *StubImageStore) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// ObjectExists always reports true so the confirmation flow works without
// a real backend
func (s *StubImageStore) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}

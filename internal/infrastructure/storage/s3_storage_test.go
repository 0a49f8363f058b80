package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        "localhost:9000",
		Bucket:          "product-images",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3ImageStore_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ImageStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ImageStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.AccessKeyID = ""
		_, err := NewS3ImageStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ImageStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		store, err := NewS3ImageStore(validStorageConfig())
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "product-images", store.GetBucket())
	})
}

func TestS3ImageStoreOptions(t *testing.T) {
	store, err := NewS3ImageStore(validStorageConfig(),
		WithLogger(zaptest.NewLogger(t)),
		WithPresignExpiration(30*time.Minute),
	)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, store.presignExpiration)
}

func TestS3ImageStore_GenerateUploadURL(t *testing.T) {
	store, err := NewS3ImageStore(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty key rejected", func(t *testing.T) {
		_, _, err := store.GenerateUploadURL(ctx, "", "image/png", time.Minute)
		require.Error(t, err)
	})

	t.Run("presigns PUT against configured endpoint", func(t *testing.T) {
		url, expiresAt, err := store.GenerateUploadURL(ctx, "products/abc/img.png", "image/png", 10*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://localhost:9000/product-images/products/abc/img.png"))
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})
}

func TestS3ImageStore_GenerateDownloadURL(t *testing.T) {
	store, err := NewS3ImageStore(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty key rejected", func(t *testing.T) {
		_, _, err := store.GenerateDownloadURL(ctx, "", time.Minute)
		require.Error(t, err)
	})

	t.Run("presigns GET", func(t *testing.T) {
		url, _, err := store.GenerateDownloadURL(ctx, "products/abc/img.png", time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "product-images/products/abc/img.png")
		assert.Contains(t, url, "X-Amz-Signature=")
	})

	t.Run("non positive expiry falls back to default", func(t *testing.T) {
		_, expiresAt, err := store.GenerateDownloadURL(ctx, "products/abc/img.png", 0)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	})
}

func TestS3ImageStore_EmptyKeyValidation(t *testing.T) {
	store, err := NewS3ImageStore(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.DeleteObject(ctx, ""))

	_, err = store.ObjectExists(ctx, "")
	assert.Error(t, err)

	assert.Error(t, store.Upload(ctx, "", []byte("x"), "image/png"))
}

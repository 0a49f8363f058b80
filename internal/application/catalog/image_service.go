package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AllowedImageContentTypes is the whitelist of content types accepted for
// product image uploads. SVG is excluded because it can carry scripts.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageStore is the object storage port for product images. The
// infrastructure layer implements it with an S3-compatible backend.
type ImageStore interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiration.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiration.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage.
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether an object is present in storage.
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ImageServiceConfig holds expiries for presigned URLs.
type ImageServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultImageServiceConfig returns the default configuration.
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// ImageService handles the product image upload flow. A product carries at
// most one image; uploads go directly to object storage through presigned
// URLs and are confirmed afterwards.
type ImageService struct {
	productRepo catalog.ProductRepository
	store       ImageStore
	config      ImageServiceConfig
	logger      *zap.Logger
}

// NewImageService creates a new image service.
func NewImageService(productRepo catalog.ProductRepository, store ImageStore, logger *zap.Logger) *ImageService {
	return &ImageService{
		productRepo: productRepo,
		store:       store,
		config:      DefaultImageServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the service configuration.
func (s *ImageService) SetConfig(config ImageServiceConfig) {
	s.config = config
}

// InitiateImageUpload validates the request and returns a presigned upload
// URL together with the storage key the client must confirm afterwards.
func (s *ImageService) InitiateImageUpload(ctx context.Context, input InitiateImageUploadInput) (*ImageUploadTicket, error) {
	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !AllowedImageContentTypes[contentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for product images", input.ContentType))
	}

	storageKey := s.generateStorageKey(input.ProductID, input.FileName)

	uploadURL, expiresAt, err := s.store.GenerateUploadURL(ctx, storageKey, contentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("upload url generation failed",
			zap.String("product_id", input.ProductID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &ImageUploadTicket{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmImageUpload verifies the object landed in storage and attaches it
// to the product. A previously attached image object is deleted best effort.
func (s *ImageService) ConfirmImageUpload(ctx context.Context, input ConfirmImageUploadInput) (*ProductInfo, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("products/%s/", input.ProductID)
	if !strings.HasPrefix(input.StorageKey, prefix) {
		return nil, shared.NewDomainError("IMAGE_KEY_MISMATCH", "Storage key does not belong to this product")
	}

	exists, err := s.store.ObjectExists(ctx, input.StorageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("IMAGE_NOT_UPLOADED", "No uploaded object found for this storage key")
	}

	previous := product.ImageURL
	if err := product.SetImageURL(input.StorageKey); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if previous != "" && previous != input.StorageKey {
		if err := s.store.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced product image",
				zap.String("storage_key", previous),
				zap.Error(err))
		}
	}

	s.logger.Info("product image attached",
		zap.String("product_id", product.ID.String()),
		zap.String("storage_key", input.StorageKey))

	info := ProductInfo{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		CategoryID:    product.CategoryID,
		ImageURL:      product.ImageURL,
		IsActive:      product.IsActive,
		IsFeatured:    product.IsFeatured,
		CreatedAt:     product.CreatedAt,
	}
	return &info, nil
}

// ImageDownloadURL returns a presigned GET URL for the product's image.
func (s *ImageService) ImageDownloadURL(ctx context.Context, productID uuid.UUID) (*ImageDownloadInfo, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageURL == "" {
		return nil, shared.NewDomainError("NO_PRODUCT_IMAGE", "Product has no image")
	}

	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, product.ImageURL, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &ImageDownloadInfo{URL: url, ExpiresAt: expiresAt}, nil
}

// RemoveImage detaches and deletes the product's image.
func (s *ImageService) RemoveImage(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.ImageURL == "" {
		return nil
	}

	storageKey := product.ImageURL
	if err := product.SetImageURL(""); err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	if err := s.store.DeleteObject(ctx, storageKey); err != nil {
		s.logger.Warn("failed to delete detached product image",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}
	return nil
}

// generateStorageKey builds a collision free key under the product's prefix.
// The original extension is kept so storage backends serve a sensible
// content type for direct reads.
func (s *ImageService) generateStorageKey(productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
}

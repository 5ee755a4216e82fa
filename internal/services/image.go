package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// jpegQuality is used for all JPEG encoding
const jpegQuality = 85

// ImageService processes uploaded images and stores the original plus
// resized variants
type ImageService struct {
	storage StorageService
	logger  zerolog.Logger
}

// NewImageService creates a new image service
func NewImageService(storage StorageService, logger zerolog.Logger) *ImageService {
	return &ImageService{
		storage: storage,
		logger:  logger,
	}
}

// ImageVariantConfig defines the configuration for image variants
type ImageVariantConfig struct {
	Name   string
	Width  int
	Height int
	Filter imaging.ResampleFilter
}

// DefaultImageVariants are generated for every upload
var DefaultImageVariants = []ImageVariantConfig{
	{Name: "thumbnail", Width: 150, Height: 150, Filter: imaging.Lanczos},
	{Name: "medium", Width: 400, Height: 300, Filter: imaging.Lanczos},
	{Name: "large", Width: 800, Height: 600, Filter: imaging.Lanczos},
}

// imageFormats lists the storage extensions DeleteImage has to sweep
var imageFormats = []string{"jpeg", "png"}

// UploadImage decodes, re-encodes, and uploads an image together with
// its resized variants. All keys for one upload share the returned
// KeyPrefix.
func (s *ImageService) UploadImage(ctx context.Context, reader io.Reader, filename string) (*ImageUploadResult, error) {
	imageData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid image", models.ErrInvalidInput)
	}

	if !isValidImageFormat(format) {
		return nil, fmt.Errorf("%w: unsupported image format %s", models.ErrInvalidInput, format)
	}

	keyPrefix := generateImageKey(filename)

	originalData, err := encodeImage(img, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	originalKey := fmt.Sprintf("%s/original.%s", keyPrefix, format)
	originalURL, err := s.storage.Upload(ctx, originalKey, bytes.NewReader(originalData), getContentType(format), int64(len(originalData)))
	if err != nil {
		return nil, fmt.Errorf("failed to upload original image: %w", err)
	}

	bounds := img.Bounds()
	original := ImageMetadata{
		Key:         originalKey,
		URL:         originalURL,
		Size:        int64(len(originalData)),
		ContentType: getContentType(format),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		UploadedAt:  time.Now(),
	}

	variants := make([]ImageVariant, 0, len(DefaultImageVariants))
	for _, cfg := range DefaultImageVariants {
		variant, err := s.createVariant(ctx, img, keyPrefix, cfg, format)
		if err != nil {
			// A missing variant degrades display quality, not correctness
			s.logger.Warn().Err(err).Str("variant", cfg.Name).Msg("failed to create image variant")
			continue
		}
		variants = append(variants, *variant)
	}

	return &ImageUploadResult{
		KeyPrefix: keyPrefix,
		Original:  original,
		Variants:  variants,
	}, nil
}

// createVariant resizes the image to fit the variant bounds and uploads
// it
func (s *ImageService) createVariant(ctx context.Context, img image.Image, keyPrefix string, cfg ImageVariantConfig, format string) (*ImageVariant, error) {
	resized := imaging.Fit(img, cfg.Width, cfg.Height, cfg.Filter)

	imageData, err := encodeImage(resized, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variant: %w", err)
	}

	variantKey := fmt.Sprintf("%s/%s.%s", keyPrefix, cfg.Name, format)
	variantURL, err := s.storage.Upload(ctx, variantKey, bytes.NewReader(imageData), getContentType(format), int64(len(imageData)))
	if err != nil {
		return nil, fmt.Errorf("failed to upload variant: %w", err)
	}

	bounds := resized.Bounds()
	return &ImageVariant{
		Name:   cfg.Name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Key:    variantKey,
		URL:    variantURL,
	}, nil
}

// DeleteImage deletes the original and every variant under a key
// prefix. The stored format is not recorded, so each known extension
// is tried; deleting a missing key is a no-op in both backends.
func (s *ImageService) DeleteImage(ctx context.Context, keyPrefix string) error {
	names := []string{"original"}
	for _, cfg := range DefaultImageVariants {
		names = append(names, cfg.Name)
	}

	for _, name := range names {
		for _, format := range imageFormats {
			key := fmt.Sprintf("%s/%s.%s", keyPrefix, name, format)
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("failed to delete image object")
			}
		}
	}

	return nil
}

// encodeImage encodes an image in the given format
func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		encoder := &png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format for encoding: %s", format)
	}

	return buf.Bytes(), nil
}

// generateImageKey generates a unique storage key prefix for an upload
func generateImageKey(filename string) string {
	id := uuid.New().String()

	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	baseName = strings.ReplaceAll(baseName, " ", "-")
	baseName = strings.ToLower(baseName)
	if baseName == "" || baseName == "." {
		baseName = "image"
	}

	timestamp := time.Now().Format("2006/01/02")
	return fmt.Sprintf("events/%s/%s-%s", timestamp, baseName, id[:8])
}

// isValidImageFormat checks if the image format is supported
func isValidImageFormat(format string) bool {
	switch format {
	case "jpeg", "jpg", "png":
		return true
	default:
		return false
	}
}

// getContentType returns the MIME type for the image format
func getContentType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

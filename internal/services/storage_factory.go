package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

const localUploadDir = "web/static/uploads"

// NewStorage selects the storage backend for the process. R2 is used
// when credentials are configured and the bucket answers a health
// check; otherwise files go to the local uploads directory, which the
// static file route serves.
func NewStorage(cfg *config.Config, logger zerolog.Logger) (StorageService, error) {
	if r2, err := NewR2Storage(cfg.R2, logger); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if healthErr := r2.HealthCheck(ctx); healthErr == nil {
			logger.Info().Str("bucket", cfg.R2.BucketName).Msg("using R2 storage")
			return r2, nil
		} else {
			logger.Warn().Err(healthErr).Msg("R2 unreachable, falling back to local storage")
		}
	}

	baseURL := fmt.Sprintf("%s/static/uploads", cfg.Server.BaseURL)
	local, err := NewLocalStorage(filepath.FromSlash(localUploadDir), baseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}

	logger.Info().Str("path", localUploadDir).Msg("using local file storage")
	return local, nil
}

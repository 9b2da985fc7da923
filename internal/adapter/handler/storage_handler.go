package handler

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/errors"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/storage"
	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// Artifacts exposes the object store holding answer audio and session
// recordings for operator review tooling.
type Artifacts struct {
	minioClient *storage.MinIOClient
	logger      *zap.Logger
}

// NewArtifactsHandler creates a new artifacts handler
func NewArtifactsHandler(cfg *config.Config, logger *zap.Logger) (*Artifacts, error) {
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Artifacts{
		minioClient: minioClient,
		logger:      logger,
	}, nil
}

// ListArtifacts lists stored objects under a prefix
// @Summary      List stored artifacts
// @Description  Lists objects in the artifact bucket; answer audio sits under answers/, session recordings under interviews/
// @Tags         Storage
// @Produce      json
// @Param        prefix  query  string  false  "Object key prefix filter"
// @Success      200     {object}  map[string]interface{}  "Object list"
// @Failure      500     {object}  map[string]interface{}  "Failed to list objects"
// @Router       /storage/artifacts [get]
func (h *Artifacts) ListArtifacts(c echo.Context) error {
	ctx := c.Request().Context()
	prefix := c.QueryParam("prefix")

	files, err := h.minioClient.ListFiles(ctx, prefix)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to list artifacts", zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("list", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"objects": files,
		"count":   len(files),
		"prefix":  prefix,
	})
}

// ArtifactURL generates a presigned download URL for a stored object
// @Summary      Generate artifact download URL
// @Description  Generates a presigned URL for downloading an artifact from the object store
// @Tags         Storage
// @Produce      json
// @Param        object  query  string  true  "Object key in bucket"
// @Success      200     {object}  map[string]interface{}  "Download URL"
// @Failure      400     {object}  map[string]interface{}  "Missing object parameter"
// @Failure      500     {object}  map[string]interface{}  "Failed to generate URL"
// @Router       /storage/artifacts/url [get]
func (h *Artifacts) ArtifactURL(c echo.Context) error {
	ctx := c.Request().Context()
	objectKey := c.QueryParam("object")

	if objectKey == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing object parameter"))
	}

	url, err := h.minioClient.GetFileURL(ctx, objectKey, 1*time.Hour)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to generate artifact URL",
				zap.String("object", objectKey),
				zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("presign", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"object":     objectKey,
		"url":        url,
		"expires_in": "1 hour",
	})
}

// VerifyStorage uploads a probe object to check bucket connectivity
// @Summary      Verify storage connectivity
// @Description  Uploads a small probe object and returns its presigned URL to verify credentials and bucket policy
// @Tags         Storage
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Storage reachable"
// @Failure      500  {object}  map[string]interface{}  "Storage check failed"
// @Router       /storage/verify [post]
func (h *Artifacts) VerifyStorage(c echo.Context) error {
	ctx := c.Request().Context()

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	content := fmt.Sprintf(`Storage connectivity probe
Timestamp: %s
Server: Interview Assistant API
`, timestamp)

	objectName := fmt.Sprintf("probes/connectivity-%s.txt", timestamp)
	if err := h.minioClient.UploadText(ctx, objectName, content); err != nil {
		if h.logger != nil {
			h.logger.Error("storage probe upload failed",
				zap.String("object_name", objectName),
				zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("upload", err))
	}

	url, err := h.minioClient.GetFileURL(ctx, objectName, 1*time.Hour)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("probe uploaded but failed to generate URL",
				zap.String("object_name", objectName),
				zap.Error(err))
		}
		url = "failed to generate URL"
	}

	info, err := h.minioClient.GetBucketInfo(ctx)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("failed to get bucket info", zap.Error(err))
		}
		info = map[string]interface{}{"error": err.Error()}
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"object_name": objectName,
		"url":         url,
		"bucket":      info,
	})
}

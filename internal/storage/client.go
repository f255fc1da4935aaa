package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

// Client uploads order images to the storage bucket. The contract the engine
// relies on: an upload either succeeds with a public URL or fails with a
// reason; nothing else about the mechanics matters.
type Client struct {
	client  *storage_go.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a storage client. Returns nil when storage is not
// configured; callers treat a nil client as "uploads unavailable".
func NewClient(cfg config.StorageConfig, logger *zap.Logger) *Client {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil
	}
	baseURL := strings.TrimRight(cfg.URL, "/")
	return &Client{
		client:  storage_go.NewClient(baseURL+"/storage/v1", cfg.ServiceKey, nil),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		logger:  logger,
	}
}

// UploadImage stores one design or sizing photo under the order it belongs
// to and returns its public URL. The order id is the join key, which is why
// an order is eagerly created before the first upload.
func (c *Client) UploadImage(userID string, orderID, uploadID uuid.UUID, kind domain.UploadKind, fileName string, data []byte) (string, error) {
	path := fmt.Sprintf("users/%s/orders/%s/%s/%s_%s", userID, orderID, kind, uploadID, fileName)

	contentType := "image/jpeg"
	upsert := true
	_, err := c.client.UploadFile(c.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		c.logger.Warn("Image upload failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path), nil
}

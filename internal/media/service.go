package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/newswirehq/newswire-backend/pkg/config"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/security"
)

// blobStore is the slice of object storage the gateway needs.
type blobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error
	ObjectURL(key string) string
}

// UploadResult reports where the stored object is publicly reachable.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Service stores uploaded blobs under random names so object URLs never
// collide and can be cached forever.
type Service struct {
	store blobStore
	cfg   config.MediaConfig
	logg  *logger.Logger
}

func NewService(store blobStore, cfg config.MediaConfig, logg *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, logg: logg}
}

// Upload writes payload to object storage under a freshly generated name
// that keeps the original file extension. The object is immutable once
// written, so the cache directive from configuration is applied verbatim.
func (s *Service) Upload(ctx context.Context, payload []byte, originalName, contentType string) (*UploadResult, error) {
	if len(payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty upload payload")
	}
	if max := s.cfg.MaxUploadBytes(); max > 0 && int64(len(payload)) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload exceeds %d bytes", max))
	}

	ext := normalizeExtension(originalName)
	if ext == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name has no extension")
	}

	name, err := security.GenerateSecret(s.cfg.RandomNameLen)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate object name")
	}

	key := fmt.Sprintf("%s/%s.%s", s.cfg.KeyPrefix, name, ext)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	putCtx := ctx
	if s.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeout(ctx, s.cfg.UploadTimeout)
		defer cancel()
	}

	if err := s.store.Put(putCtx, key, payload, contentType, s.cfg.CacheControl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "store upload")
	}

	url := s.store.ObjectURL(key)
	s.logg.Info(s.logg.WithField(ctx, "object_key", key), "stored upload")

	return &UploadResult{URL: url, Key: key}, nil
}

// normalizeExtension extracts a lowercase extension without the dot.
func normalizeExtension(originalName string) string {
	ext := strings.TrimPrefix(path.Ext(path.Base(originalName)), ".")
	return strings.ToLower(ext)
}

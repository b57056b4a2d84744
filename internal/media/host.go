package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidhub/backend/internal/logging"
)

// ObjectStore persists media objects and returns their public location.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, location string) error
}

// DurationProber measures playable media.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Asset is an uploaded media object.
type Asset struct {
	URL      string
	Duration float64
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {}, ".webm": {}, ".mkv": {}, ".avi": {},
}

// Host uploads local files to the object store.
type Host struct {
	store  ObjectStore
	probe  DurationProber
	logger *slog.Logger
}

// NewHost constructs a media host. probe may be nil, in which case durations are zero.
func NewHost(store ObjectStore, probe DurationProber, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{store: store, probe: probe, logger: logger}
}

// Upload stores the file at localPath under a random key and removes the local
// copy whether or not the upload succeeds.
func (h *Host) Upload(ctx context.Context, localPath string) (Asset, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn("remove temporary upload", "path", localPath, "error", err)
		}
	}()

	if h == nil || h.store == nil {
		return Asset{}, ErrStorageUnavailable
	}
	if strings.TrimSpace(localPath) == "" {
		return Asset{}, fmt.Errorf("media host: empty path")
	}

	ext := strings.ToLower(filepath.Ext(localPath))

	var asset Asset
	if _, isVideo := videoExtensions[ext]; isVideo && h.probe != nil {
		duration, err := h.probe.Duration(ctx, localPath)
		if err != nil {
			logging.FromContext(ctx).Warn("probe media duration", "path", localPath, "error", err)
		} else {
			asset.Duration = duration
		}
	}

	file, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	location, err := h.store.Save(ctx, uuid.NewString()+ext, file, mime.TypeByExtension(ext))
	if err != nil {
		return Asset{}, fmt.Errorf("upload media: %w", err)
	}
	asset.URL = location

	h.logger.Debug("media uploaded", "location", location, "duration", asset.Duration)
	return asset, nil
}

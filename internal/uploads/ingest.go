package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// StoredFile references a file persisted by ingestion.
type StoredFile struct {
	Path     string
	Original string
}

// Ingestor stores incoming listing images and removes stored files
// again when a submission is discarded or a listing is deleted.
type Ingestor interface {
	Ingest(files []*multipart.FileHeader) ([]StoredFile, error)
	Remove(path string) error
}

// DiskIngestor writes images under a local directory with generated
// names, enforcing the per-file size ceiling and an image content type
// before anything reaches the listing repository.
type DiskIngestor struct {
	dir      string
	maxBytes int64
	maxFiles int
	logger   *zap.Logger
}

// NewDiskIngestor creates the upload directory if needed.
func NewDiskIngestor(cfg config.UploadConfig, logger *zap.Logger) (*DiskIngestor, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskIngestor{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxFileBytes,
		maxFiles: cfg.MaxFiles,
		logger:   logger,
	}, nil
}

// Ingest stores up to the configured number of files, ignoring the
// rest. A file failing the content-type or size check fails the whole
// batch and already-stored files are removed.
func (d *DiskIngestor) Ingest(files []*multipart.FileHeader) ([]StoredFile, error) {
	if len(files) > d.maxFiles {
		files = files[:d.maxFiles]
	}

	stored := make([]StoredFile, 0, len(files))
	for _, header := range files {
		ref, err := d.ingestOne(header)
		if err != nil {
			d.logger.Warn("discarding uploads after failed ingest",
				zap.Int("stored", len(stored)), zap.Error(err))
			Discard(d, stored)
			return nil, err
		}
		stored = append(stored, ref)
	}
	return stored, nil
}

func (d *DiskIngestor) ingestOne(header *multipart.FileHeader) (StoredFile, error) {
	if header.Size > d.maxBytes {
		return StoredFile{}, apperrors.NewValidationError(
			fmt.Sprintf("file %s exceeds %d bytes", header.Filename, d.maxBytes), []string{"images"})
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return StoredFile{}, apperrors.NewValidationError(
			fmt.Sprintf("file %s is not an image", header.Filename), []string{"images"})
	}

	src, err := header.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(d.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return StoredFile{}, fmt.Errorf("store upload %s: %w", header.Filename, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, d.maxBytes)); err != nil {
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("store upload %s: %w", header.Filename, err)
	}
	return StoredFile{Path: path, Original: header.Filename}, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (d *DiskIngestor) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Discard removes already-stored files best effort, for submissions
// that fail validation.
func Discard(ingestor Ingestor, files []StoredFile) {
	for _, file := range files {
		_ = ingestor.Remove(file.Path)
	}
}

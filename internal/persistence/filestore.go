package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists each collection as a single JSON array file under
// a data directory. Save writes a temporary file in the same directory,
// flushes it, and renames it over the collection file, so readers see
// either the old or the new content.
type FileStore struct {
	dir    string
	locks  *lockTable
	logger *zap.Logger
}

// NewFileStore creates the data directory if needed and returns a store.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, locks: newLockTable(), logger: logger}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads the whole collection into out. A missing file is lazily
// initialized to an empty collection; a corrupt file is logged and read
// as empty.
func (s *FileStore) Load(ctx context.Context, collection string, out any) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			s.initCollection(collection)
		} else {
			s.logger.Warn("read collection file",
				zap.String("collection", collection), zap.Error(err))
		}
		return json.Unmarshal([]byte("[]"), out)
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt collection file, treating as empty",
			zap.String("collection", collection), zap.Error(err))
		return json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

// initCollection creates an empty collection file. The exclusive create
// makes it safe against a concurrent writer: if the file appeared since
// the caller saw it missing, its content is left untouched.
func (s *FileStore) initCollection(collection string) {
	file, err := os.OpenFile(s.path(collection), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if !errors.Is(err, fs.ErrExist) {
			s.logger.Warn("initialize collection file",
				zap.String("collection", collection), zap.Error(err))
		}
		return
	}
	defer file.Close()
	if _, err := file.WriteString("[]\n"); err != nil {
		s.logger.Warn("initialize collection file",
			zap.String("collection", collection), zap.Error(err))
	}
}

// Save atomically replaces the collection file with the given records.
func (s *FileStore) Save(ctx context.Context, collection string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, collection+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}

// Mutate serializes a read-modify-write cycle over the named collections.
func (s *FileStore) Mutate(ctx context.Context, fn func(ctx context.Context) error, collections ...string) error {
	release := s.locks.acquire(collections...)
	defer release()
	return fn(ctx)
}

// Ping verifies the data directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() {}

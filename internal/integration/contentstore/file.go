package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// FileStore reads objects below a root directory. Paths that would escape the
// root are rejected.
type FileStore struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

func NewFileStore(root string, maxBytes int64, logger *zap.Logger) *FileStore {
	return &FileStore{root: root, maxBytes: maxBytes, logger: logger}
}

func (s *FileStore) ReadObject(ctx context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", entity.ErrObjectNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open object %q: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if s.maxBytes > 0 {
		reader = io.LimitReader(f, s.maxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", path, err)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", entity.ErrFileTooLarge, path, s.maxBytes)
	}

	ctxzap.Debug(ctx, "object read from disk", zap.String("path", path), zap.Int("size", len(content)))
	return content, nil
}

func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(s.root, clean)

	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: object path %q", entity.ErrInvalidParameter, path)
	}
	return full, nil
}

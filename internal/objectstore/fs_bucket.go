package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
)

const (
	DefaultDir     = "./data/objects"
	DefaultBaseURL = "http://localhost:8080/media"
)

// FSBucket keeps objects as files below a root directory.
type FSBucket struct {
	root    string
	baseURL string
}

func NewFSBucket(root, baseURL string) (*FSBucket, error) {
	if root == "" {
		root = DefaultDir
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}
	return &FSBucket{root: root, baseURL: baseURL}, nil
}

func (b *FSBucket) Root() string {
	return b.root
}

// Healthy reports whether the root directory is still present.
func (b *FSBucket) Healthy(ctx context.Context) bool {
	fi, err := os.Stat(b.root)
	if err != nil || !fi.IsDir() {
		slog.Warn("Object store directory unavailable", "root", b.root, "error", err)
		return false
	}
	return true
}

func (b *FSBucket) URL(key string) string {
	return joinURL(b.baseURL, key)
}

func (b *FSBucket) Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", classify("put object", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", classify("put object", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, newProgressReader(ctx, r, size, onProgress))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", classify("put object", err)
	}
	if size >= 0 && written != size {
		err = storage.Validationf("put object", "short write for %s: %d of %d bytes", key, written, size)
		return "", err
	}

	if err = os.Rename(tmp.Name(), dst); err != nil {
		return "", classify("put object", err)
	}

	slog.Debug("Stored object", "key", key, "bytes", written)
	return b.URL(key), nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, os.ErrPermission):
		return storage.NewError(storage.KindPermissionDenied, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return storage.NewError(storage.KindTransient, op, err)
	default:
		return storage.NewError(storage.KindUnknown, op, err)
	}
}

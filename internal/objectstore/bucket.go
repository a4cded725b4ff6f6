// Package objectstore stores uploaded media and hands back durable URLs.
package objectstore

import (
	"context"
	"io"
	"path"
	"strings"
	"sync/atomic"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
)

// ProgressFunc receives the bytes written so far and the expected total.
type ProgressFunc func(written, total int64)

type Bucket interface {
	// Put stores size bytes from r under key and returns the public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error)
	URL(key string) string
}

// CleanKey validates an object key. Keys are slash separated, relative and
// may not escape the bucket root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", storage.Validationf("object key", "empty key")
	}
	if strings.HasPrefix(k, "/") || strings.Contains(k, "\\") {
		return "", storage.Validationf("object key", "invalid key %q", key)
	}
	c := path.Clean(k)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", storage.Validationf("object key", "invalid key %q", key)
	}
	return c, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// progressReader reports every read to fn and aborts once ctx is done.
type progressReader struct {
	ctx     context.Context
	r       io.Reader
	total   int64
	written atomic.Int64
	fn      ProgressFunc
}

func newProgressReader(ctx context.Context, r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{ctx: ctx, r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		w := p.written.Add(int64(n))
		if p.fn != nil {
			p.fn(w, p.total)
		}
	}
	return n, err
}

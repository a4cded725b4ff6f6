package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemBucket is an in-process Bucket for tests and the CLI dry run.
type MemBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemBucket(baseURL string) *MemBucket {
	if baseURL == "" {
		baseURL = "mem://objects"
	}
	return &MemBucket{objects: make(map[string][]byte), baseURL: baseURL}
}

func (b *MemBucket) URL(key string) string {
	return joinURL(b.baseURL, key)
}

func (b *MemBucket) Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, newProgressReader(ctx, r, size, onProgress)); err != nil {
		return "", classify("put object", err)
	}

	b.mu.Lock()
	b.objects[key] = buf.Bytes()
	b.mu.Unlock()
	return b.URL(key), nil
}

func (b *MemBucket) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, ok
}

func (b *MemBucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

var (
	_ Bucket = (*MemBucket)(nil)
	_ Bucket = (*FSBucket)(nil)
)

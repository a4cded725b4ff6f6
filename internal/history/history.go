// Package history persists the recent free-text searches of a session.
package history

import (
	"context"
	"strings"
	"sync"
)

const (
	// Key is the fixed storage key of the recent-query list.
	Key = "recentSearches"
	// MaxEntries caps the list.
	MaxEntries = 10
)

// Store is a key-value backed list of recent queries, most recent first.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, queries []string) error
	Clear(ctx context.Context) error
}

// Push moves q to the front of list, removing an earlier occurrence, and
// caps the result at MaxEntries. list is not modified.
func Push(list []string, q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return append([]string(nil), list...)
	}

	out := make([]string, 0, min(len(list)+1, MaxEntries))
	out = append(out, q)
	for _, existing := range list {
		if len(out) == MaxEntries {
			break
		}
		if existing == q {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// normalize drops blanks and duplicates and enforces the cap on loaded data.
func normalize(list []string) []string {
	out := make([]string, 0, min(len(list), MaxEntries))
	seen := make(map[string]struct{}, len(list))
	for _, q := range list {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

// MemStore keeps the list in memory. It is used when no persistence is configured.
type MemStore struct {
	mu      sync.Mutex
	queries []string
}

func NewMemStore(initial ...string) *MemStore {
	return &MemStore{queries: normalize(initial)}
}

func (s *MemStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...), nil
}

func (s *MemStore) Save(ctx context.Context, queries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = normalize(queries)
	return nil
}

func (s *MemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = nil
	return nil
}

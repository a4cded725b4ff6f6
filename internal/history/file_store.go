package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the list in a JSON object file that acts as a local
// key-value store; other keys in the file are preserved.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is the per-user local storage file.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".alumni-memories", "local_storage.json")
	}
	return filepath.Join(home, ".alumni-memories", "local_storage.json")
}

func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := kv[Key]
	if !ok {
		return nil, nil
	}
	var queries []string
	if err := json.Unmarshal(raw, &queries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key, err)
	}
	return normalize(queries), nil
}

func (s *FileStore) Save(ctx context.Context, queries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(normalize(queries))
	if err != nil {
		return err
	}
	kv[Key] = raw
	return s.write(kv)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := kv[Key]; !ok {
		return nil
	}
	delete(kv, Key)
	return s.write(kv)
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local storage: %w", err)
	}

	kv := map[string]json.RawMessage{}
	if len(data) == 0 {
		return kv, nil
	}
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("decode local storage %s: %w", s.path, err)
	}
	return kv, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *FileStore) write(kv map[string]json.RawMessage) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create local storage dir: %w", err)
	}

	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".local_storage-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace local storage: %w", err)
	}
	return nil
}

package history

import (
	"fmt"
	"log/slog"
	"os"
)

type Backend string

const (
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

type Config struct {
	Backend  Backend
	File     string
	RedisURL string
}

// LoadEnv reads HISTORY_BACKEND, HISTORY_FILE and REDIS_URL.
func LoadEnv() Config {
	cfg := Config{
		Backend:  Backend(os.Getenv("HISTORY_BACKEND")),
		File:     os.Getenv("HISTORY_FILE"),
		RedisURL: os.Getenv("REDIS_URL"),
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if cfg.File == "" {
		cfg.File = DefaultFilePath()
	}
	return cfg
}

// Factory opens the history store of one session. namespace separates the
// lists of different users on shared backends; the file backend ignores it.
type Factory func(namespace string) Store

// NewFactory validates cfg and returns a store factory plus a cleanup func.
func NewFactory(cfg Config) (Factory, func() error, error) {
	switch cfg.Backend {
	case BackendFile:
		fs := NewFileStore(cfg.File)
		slog.Info("Recent searches stored in file", "path", cfg.File)
		return func(string) Store { return fs }, func() error { return nil }, nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, nil, fmt.Errorf("REDIS_URL is required for the redis history backend")
		}
		base, err := NewRedisStoreWithURL(cfg.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		return func(ns string) Store { return base.WithNamespace(ns) }, base.Close, nil
	case BackendMemory:
		return func(string) Store { return NewMemStore() }, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

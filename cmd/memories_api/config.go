package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/history"
	"github.com/DjordjeVuckovic/alumni-memories/internal/objectstore"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/factory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/upload"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type MemoriesApiConfig struct {
	StorageConfig  factory.StorageConfig
	HistoryConfig  history.Config
	UploadOptions  upload.Options
	ObjectDir      string
	ObjectBaseURL  string
	SearchDebounce time.Duration
}

func (as *AppConfig) Load() (*MemoriesApiConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/memories_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	uploadOpts, err := upload.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}

	debounce, err := env.Duration("SEARCH_DEBOUNCE", session.DefaultDebounce)
	if err != nil {
		return nil, err
	}

	return &MemoriesApiConfig{
		StorageConfig:  *storageCfg,
		HistoryConfig:  history.LoadEnv(),
		UploadOptions:  uploadOpts,
		ObjectDir:      env.String("OBJECT_STORE_DIR", objectstore.DefaultDir),
		ObjectBaseURL:  env.String("OBJECT_STORE_BASE_URL", objectstore.DefaultBaseURL),
		SearchDebounce: debounce,
	}, nil
}

package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/es"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/pg"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/config/env"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/stringsutil"
)

const defaultIndexName = "memories"

type StorageConfig struct {
	storage.Type
	Pg *pg.PoolConfig
	Es *es.ClientConfig
}

// LoadEnv reads STORAGE_TYPE and the backend specific variables.
// An unset STORAGE_TYPE selects the in-memory store.
func LoadEnv() (*StorageConfig, error) {
	storageType := storage.Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Info("STORAGE_TYPE is not set, using in-memory storage")
		storageType = storage.InMem
	}
	if storageType != storage.ES && storageType != storage.PG && storageType != storage.InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.ES, storage.PG, storage.InMem})
	}

	cfg := &StorageConfig{Type: storageType}

	switch storageType {
	case storage.ES:
		addresses := stringsutil.RemoveEmptyStrings(stringsutil.SplitAndTrim(os.Getenv("ES_ADDRESSES"), ","))
		indexName := os.Getenv("ES_INDEX_NAME")
		if indexName == "" {
			indexName = defaultIndexName
		}
		if len(addresses) == 0 {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: ES_ADDRESSES is missing")
		}
		retries, err := env.Int("ES_MAX_RETRIES", 0)
		if err != nil {
			return nil, err
		}
		cfg.Es = &es.ClientConfig{
			Addresses:  addresses,
			IndexName:  indexName,
			Username:   os.Getenv("ES_USERNAME"),
			Password:   os.Getenv("ES_PASSWORD"),
			MaxRetries: retries,
		}
	case storage.PG:
		connStr := os.Getenv("PG_CONNECTION_STRING")
		if connStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		cfg.Pg = &pg.PoolConfig{ConnStr: connStr}
		maxConns, err := env.Int("PG_MAX_CONNS", 0)
		if err != nil {
			return nil, err
		}
		cfg.Pg.MaxConns = int32(maxConns)
	}

	return cfg, nil
}

// String is used in startup logs.
func (c *StorageConfig) String() string {
	switch c.Type {
	case storage.ES:
		return fmt.Sprintf("es(%s, index=%s)", strings.Join(c.Es.Addresses, ","), c.Es.IndexName)
	case storage.PG:
		return "pg"
	default:
		return string(c.Type)
	}
}

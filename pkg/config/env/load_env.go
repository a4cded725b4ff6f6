// Package env loads process configuration from the environment and optional .env files.
package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file into the environment. ENV_PATH overrides
// defaultPath. A missing file is an error only for local runs (env "local"
// or unset); deployed environments are configured without one.
func LoadDotEnv(env string, defaultPath string) error {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		slog.Debug("ENV_PATH is not set, using default path", "path", defaultPath)
		path = defaultPath
	}

	if err := godotenv.Load(path); err != nil {
		if env == "local" || env == "" {
			return fmt.Errorf("load %s: %w", path, err)
		}
		slog.Debug("Skipping .env file", "env", env, "path", path)
	}
	return nil
}

// String returns the value of key, or def when it is unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Duration parses key as a positive time.Duration, or returns def when unset.
func Duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive duration", key, v)
	}
	return d, nil
}

// Int parses key as a positive integer, or returns def when unset.
func Int(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", key, v)
	}
	return n, nil
}

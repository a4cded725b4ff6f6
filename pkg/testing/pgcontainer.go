// Package testing starts the databases used by integration tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultPGImage = "postgres:17.5"

type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Database string
	Username string
	Password string
}

// DefaultPGConfig is the database the integration tests share.
func DefaultPGConfig() PGConfig {
	return PGConfig{Database: "memories_test_db", Username: "test", Password: "test"}
}

// NewPGContainer starts PostgreSQL with every db/migrations/*.up.sql applied.
// TEST_PG_IMAGE overrides the image. The caller terminates the container.
func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	script, err := migrationScript()
	if err != nil {
		return nil, err
	}
	defer os.Remove(script)

	c, err := postgres.Run(ctx, imageOr("TEST_PG_IMAGE", defaultPGImage),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(script),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}
	return &PGContainer{Container: c, ConnString: connStr}, nil
}

// NewPGContainerWithCleanup is NewPGContainer with DefaultPGConfig, terminated when tb finishes.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()

	c, err := NewPGContainer(ctx, DefaultPGConfig())
	if err != nil {
		tb.Fatalf("create postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c.Container); err != nil {
			tb.Logf("terminate postgres container: %v", err)
		}
	})
	return c
}

// migrationScript concatenates the up migrations, in name order, into a temp file.
func migrationScript() (string, error) {
	_, self, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(self), "..", "..", "db", "migrations")

	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return "", fmt.Errorf("find migrations: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no migrations in %s", dir)
	}
	sort.Strings(files)

	var sb strings.Builder
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", filepath.Base(f), err)
		}
		sb.Write(b)
		sb.WriteString(";\n\n")
	}

	tmp, err := os.CreateTemp("", "memories-migrations-*.sql")
	if err != nil {
		return "", fmt.Errorf("create migration script: %w", err)
	}
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write migration script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close migration script: %w", err)
	}
	return tmp.Name(), nil
}

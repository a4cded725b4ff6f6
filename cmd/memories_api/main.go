// Package main Alumni Memories API
// @title Alumni Memories API
// @version 1.0
// @description Search sessions and media uploads for the alumni memories archive
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/DjordjeVuckovic/alumni-memories/internal/api/docs"
	"github.com/DjordjeVuckovic/alumni-memories/internal/api/router"
	apiserver "github.com/DjordjeVuckovic/alumni-memories/internal/api/server"
	"github.com/DjordjeVuckovic/alumni-memories/internal/history"
	"github.com/DjordjeVuckovic/alumni-memories/internal/notify"
	"github.com/DjordjeVuckovic/alumni-memories/internal/objectstore"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/factory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/upload"
	pkgserver "github.com/DjordjeVuckovic/alumni-memories/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := apiserver.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Storage configured", "storage", cfg.StorageConfig.String())

	backend, err := factory.NewBackend(context.Background(), &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create storage backend", "error", err)
		os.Exit(1)
	}

	newHistory, closeHistory, err := history.NewFactory(cfg.HistoryConfig)
	if err != nil {
		slog.Error("Failed to create history store", "error", err)
		backend.Close()
		os.Exit(1)
	}

	bucket, err := objectstore.NewFSBucket(cfg.ObjectDir, cfg.ObjectBaseURL)
	if err != nil {
		slog.Error("Failed to create object store", "error", err)
		backend.Close()
		os.Exit(1)
	}

	s := apiserver.New(sCfg, pkgserver.Checks{"storage": backend.Health, "objects": bucket}).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*").
		SetupMetrics("/metrics")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "Alumni Memories API is running")
	})
	s.Echo.Static("/media", bucket.Root())

	notifier := notify.NewSlogNotifier(slog.Default())
	registry := router.NewRegistry(func(ctx context.Context, clientID string) *session.Session {
		return session.New(ctx, backend.Store, newHistory(clientID),
			session.WithNotifier(notifier),
			session.WithDebounce(cfg.SearchDebounce),
		)
	})
	go registry.Run(s.Context(), time.Minute)

	unsubscribe := func() {}
	if backend.Subscriber != nil {
		unsub, err := backend.Subscriber.Subscribe(s.Context(), func(ch storage.Change) {
			slog.Debug("Memory changed", "type", ch.Type, "id", ch.Memory.ID)
		})
		if err != nil {
			slog.Warn("Change feed unavailable", "error", err)
		} else {
			unsubscribe = unsub
		}
	}

	pipeline := upload.NewPipeline(bucket, upload.WithNotifier(notifier))

	router.NewSessionRouter(s.Echo, registry).Bind()
	router.NewMemoriesRouter(s.Echo, backend.Store).Bind()
	router.NewUploadRouter(s.Echo, pipeline, cfg.UploadOptions).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()

	unsubscribe()
	registry.Close()
	if cerr := closeHistory(); cerr != nil {
		slog.Warn("Failed to close history store", "error", cerr)
	}
	backend.Close()

	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"log"
	"log/slog"

	"github.com/nearmark/nearmark/internal/config"
	"github.com/nearmark/nearmark/internal/db"
	"github.com/nearmark/nearmark/internal/logging"
	"github.com/nearmark/nearmark/internal/notify"
	"github.com/nearmark/nearmark/internal/photofile"
	"github.com/nearmark/nearmark/internal/position"
	"github.com/nearmark/nearmark/internal/service"
	"github.com/nearmark/nearmark/internal/store"
	"github.com/nearmark/nearmark/internal/watch"
	"github.com/nearmark/nearmark/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	markerStore := store.NewMarkerStore(database)
	photoStore := store.NewPhotoStore(database)

	feed := position.NewFeed()
	watcher := watch.New(feed, markerStore, newNotifier(cfg, logger), watch.Config{
		NotifyEveryUpdate: cfg.NotifyEveryUpdate,
	}, logger)
	defer watcher.Stop()

	photoFiles, err := photofile.NewFileStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo storage", "error", err)
		return
	}

	markerService := service.NewMarkerService(markerStore, photoStore, watcher, logger)
	server := web.NewServer(markerService, feed, photoFiles, cfg.RadiusMeters, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	switch cfg.NotifyBackend {
	case "webhook":
		if cfg.NotifyWebhookURL == "" {
			logger.Error("NOTIFY_WEBHOOK_URL is required when NOTIFY_BACKEND=webhook")
			return notify.NewLogNotifier(logger)
		}
		logger.Info("using webhook notification backend", "url", cfg.NotifyWebhookURL)
		return notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	default:
		logger.Info("using log notification backend")
		return notify.NewLogNotifier(logger)
	}
}

package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/adframe/mockup"
	"github.com/adframe/mockup/internal/assets"
	"github.com/adframe/mockup/internal/catalog"
	"github.com/adframe/mockup/internal/config"
	"github.com/adframe/mockup/internal/server"
)

func main() {
	cfg := config.Load()

	mockup.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	store, err := catalog.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer func() { _ = store.Close() }()

	fetcher := assets.NewFetcher(nil)
	service := mockup.NewService(fetcher, &assets.CreativeResolver{
		Records: store,
		Images:  fetcher,
	}, mockup.ServiceOptions{
		ItemTimeout:    time.Duration(cfg.ItemTimeout) * time.Second,
		ThumbnailWidth: cfg.ThumbnailWidth,
	})

	app := fiber.New(fiber.Config{
		AppName: "mockupd",
	})
	app.Use(recover.New())
	app.Use(logger.New())

	server.New(store, service, cfg.Concurrency).Register(app)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	radar "github.com/platy/transit-radar"
	"github.com/platy/transit-radar/downloader"
	"github.com/platy/transit-radar/server"
	"github.com/platy/transit-radar/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the radar HTTP API",
	Long:  "Serves station search, radar trees and the sync websocket. Configured via the environment; a .env file is honoured.",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	var archive storage.Storage
	switch cfg.StorageBackend {
	case "memory":
		archive = storage.NewMemoryStorage()
	case "sqlite":
		s, err := storage.NewSQLiteStorage(storage.SQLiteConfig{Path: cfg.SQLitePath})
		if err != nil {
			return fmt.Errorf("opening sqlite archive: %w", err)
		}
		defer s.Close()
		archive = s
	case "postgres":
		s, err := storage.NewPSQLStorage(cfg.PostgresConnStr, false)
		if err != nil {
			return fmt.Errorf("opening postgres archive: %w", err)
		}
		defer s.Close()
		archive = s
	}

	var dl downloader.Downloader
	if cfg.FeedCacheDir != "" {
		dl, err = downloader.NewFilesystem(cfg.FeedCacheDir)
		if err != nil {
			return err
		}
	} else {
		dl = downloader.NewMemory()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	manager := radar.NewManager(archive, dl, log)
	data, err := manager.Load(ctx, cfg.FeedURL, nil, nil)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	log.Info("schedule ready", "took", time.Since(started), "stops", len(data.Stops()), "trips", len(data.Trips()))

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}

	var cache *server.RedisCache
	if cfg.RedisEnabled {
		cache, err = server.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, log)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	s := server.New(data, location, cache, cfg.SearchMinutes, log)
	return server.Run(ctx, cfg, s.Handler(), log)
}

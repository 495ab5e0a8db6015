package radar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/platy/transit-radar/downloader"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/parse"
	"github.com/platy/transit-radar/schedule"
	"github.com/platy/transit-radar/storage"
)

const DefaultFeedRefreshTTL = 12 * time.Hour

// Manager turns a feed URL into a ready schedule index, going through
// the archive when the same feed bytes have been built before.
type Manager struct {
	// FeedRefreshTTL is how long a downloaded feed archive stays fresh
	// in the downloader's cache.
	FeedRefreshTTL time.Duration

	storage    storage.Storage
	downloader downloader.Downloader
	log        *slog.Logger
}

func NewManager(s storage.Storage, d downloader.Downloader, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		FeedRefreshTTL: DefaultFeedRefreshTTL,
		storage:        s,
		downloader:     d,
		log:            log,
	}
}

// Load downloads the feed at url (through the downloader's cache),
// then either restores the matching schedule snapshot from the archive
// or parses and archives a fresh one. A day restricts the schedule to
// services of that weekday.
func (m *Manager) Load(ctx context.Context, url string, headers map[string]string, day *model.Day) (*schedule.Data, error) {
	body, err := m.downloader.Get(ctx, url, headers, downloader.GetOptions{
		Timeout:  5 * time.Minute,
		Cache:    true,
		CacheTTL: m.FeedRefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading feed: %w", err)
	}

	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])
	dayFilter := ""
	if day != nil {
		dayFilter = day.String()
	}

	data, _, err := m.storage.ReadSnapshot(hash, dayFilter)
	if err == nil {
		m.log.Info("restored schedule snapshot", "url", url, "hash", hash, "day", dayFilter)
		return data, nil
	}
	if err != storage.ErrNotFound {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	data, err = parse.LoadZip(body, parse.Options{Day: day, Logger: m.log})
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	err = m.storage.WriteSnapshot(&storage.SnapshotMetadata{
		URL:                url,
		Hash:               hash,
		DayFilter:          dayFilter,
		RetrievedAt:        time.Now().UTC(),
		TimetableStartDate: data.TimetableStartDate(),
	}, data)
	if err != nil {
		return nil, fmt.Errorf("archiving snapshot: %w", err)
	}
	m.log.Info("archived schedule snapshot", "url", url, "hash", hash, "day", dayFilter)

	return data, nil
}

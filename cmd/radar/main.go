package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	radar "github.com/platy/transit-radar"
	"github.com/platy/transit-radar/downloader"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/parse"
	"github.com/platy/transit-radar/schedule"
	"github.com/platy/transit-radar/storage"
)

var rootCmd = &cobra.Command{
	Use:          "radar",
	Short:        "Transit radar tool",
	Long:         "Searches fastest journeys over a GTFS schedule and serves them as a radar",
	SilenceUsage: true,
}

var (
	gtfsDir  string
	feedURL  string
	cacheDir string
	headers  []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&gtfsDir, "gtfs-dir", "", "", "Directory of GTFS .txt files")
	rootCmd.PersistentFlags().StringVarP(&feedURL, "feed-url", "", "", "GTFS zip URL")
	rootCmd.PersistentFlags().StringVarP(&cacheDir, "cache-dir", "", "", "Directory to cache downloaded feeds in")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "", []string{}, "HTTP header for the feed download, <key>:<value>")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

// loadSchedule loads from a local directory when --gtfs-dir is given,
// otherwise downloads --feed-url.
func loadSchedule(ctx context.Context, day *model.Day, log *slog.Logger) (*schedule.Data, error) {
	if gtfsDir != "" {
		return parse.LoadDir(gtfsDir, parse.Options{Day: day, Logger: log})
	}
	if feedURL == "" {
		return nil, fmt.Errorf("either --gtfs-dir or --feed-url is required")
	}

	hdrs, err := parseHeaders(headers)
	if err != nil {
		return nil, err
	}

	var dl downloader.Downloader
	if cacheDir != "" {
		dl, err = downloader.NewFilesystem(cacheDir)
		if err != nil {
			return nil, err
		}
	} else {
		dl = downloader.NewMemory()
	}

	manager := radar.NewManager(storage.NewMemoryStorage(), dl, log)
	return manager.Load(ctx, feedURL, hdrs, day)
}

func parseDay(s string) (model.Day, error) {
	for day := model.Monday; day <= model.Sunday; day++ {
		if s == day.String() {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown day %q, use mon..sun", s)
}

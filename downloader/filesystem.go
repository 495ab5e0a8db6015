package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Filesystem caches each downloaded archive as a file in a directory,
// named by the hash of its URL. Feed zips are large; keeping them out
// of memory matters on small hosts.
type Filesystem struct {
	Dir string

	mutex   sync.Mutex
	TimeNow func() time.Time
}

func NewFilesystem(dir string) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Filesystem{Dir: dir, TimeNow: time.Now}, nil
}

func (f *Filesystem) Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	path := f.cachePath(url)
	if options.Cache {
		if info, err := os.Stat(path); err == nil {
			if info.ModTime().Add(options.CacheTTL).After(f.TimeNow()) {
				return os.ReadFile(path)
			}
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	if options.Cache {
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return nil, fmt.Errorf("caching: %w", err)
		}
	}
	return body, nil
}

func (f *Filesystem) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.Dir, hex.EncodeToString(sum[:])+".zip")
}

package downloader

import (
	"context"
	"sync"
	"time"
)

// Memory caches downloaded archives in memory.
type Memory struct {
	mutex   sync.Mutex
	records map[string]memoryRecord

	TimeNow func() time.Time
}

type memoryRecord struct {
	data       []byte
	expiration time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: map[string]memoryRecord{},
		TimeNow: time.Now,
	}
}

func (d *Memory) Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		if record, ok := d.records[url]; ok && record.expiration.After(d.TimeNow()) {
			d.mutex.Unlock()
			return record.data, nil
		}
		d.mutex.Unlock()
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.mutex.Lock()
		d.records[url] = memoryRecord{
			data:       body,
			expiration: d.TimeNow().Add(options.CacheTTL),
		}
		d.mutex.Unlock()
	}

	return body, nil
}

package storage

import (
	"bytes"
	"sort"
	"sync"

	"github.com/platy/transit-radar/schedule"
)

// In memory implementation of Storage, for tests and ephemeral serving.

type memoryKey struct {
	Hash      string
	DayFilter string
}

type memorySnapshot struct {
	meta SnapshotMetadata
	blob []byte
}

type MemoryStorage struct {
	mutex     sync.Mutex
	snapshots map[memoryKey]memorySnapshot
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		snapshots: map[memoryKey]memorySnapshot{},
	}
}

func (s *MemoryStorage) ListSnapshots(filter ListFilter) ([]*SnapshotMetadata, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	metas := []*SnapshotMetadata{}
	for _, snapshot := range s.snapshots {
		if filter.URL != "" && snapshot.meta.URL != filter.URL {
			continue
		}
		if filter.Hash != "" && snapshot.meta.Hash != filter.Hash {
			continue
		}
		meta := snapshot.meta
		metas = append(metas, &meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].RetrievedAt.After(metas[j].RetrievedAt)
	})
	return metas, nil
}

func (s *MemoryStorage) WriteSnapshot(meta *SnapshotMetadata, data *schedule.Data) error {
	var buf bytes.Buffer
	if err := data.Encode(&buf); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshots[memoryKey{meta.Hash, meta.DayFilter}] = memorySnapshot{
		meta: *meta,
		blob: buf.Bytes(),
	}
	return nil
}

func (s *MemoryStorage) ReadSnapshot(hash, dayFilter string) (*schedule.Data, *SnapshotMetadata, error) {
	s.mutex.Lock()
	snapshot, found := s.snapshots[memoryKey{hash, dayFilter}]
	s.mutex.Unlock()
	if !found {
		return nil, nil, ErrNotFound
	}

	data, err := schedule.Decode(bytes.NewReader(snapshot.blob))
	if err != nil {
		return nil, nil, err
	}
	meta := snapshot.meta
	return data, &meta, nil
}

func (s *MemoryStorage) DeleteSnapshot(hash, dayFilter string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := memoryKey{hash, dayFilter}
	if _, found := s.snapshots[key]; !found {
		return ErrNotFound
	}
	delete(s.snapshots, key)
	return nil
}

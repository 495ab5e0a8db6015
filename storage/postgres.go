package storage

import (
	"bytes"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/platy/transit-radar/schedule"
)

type PSQLStorage struct {
	db *sql.DB
}

// NewPSQLStorage connects with a lib/pq connection string. With
// clearDB set the snapshot table is dropped first; tests use this.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if clearDB {
		if _, err := db.Exec(`DROP TABLE IF EXISTS snapshot`); err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS snapshot (
    hash TEXT NOT NULL,
    day_filter TEXT NOT NULL,
    url TEXT NOT NULL,
    retrieved_at TIMESTAMPTZ NOT NULL,
    timetable_start_date TEXT NOT NULL,
    data BYTEA NOT NULL,
PRIMARY KEY (hash, day_filter)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) Close() error {
	return s.db.Close()
}

func (s *PSQLStorage) ListSnapshots(filter ListFilter) ([]*SnapshotMetadata, error) {
	rows, err := s.db.Query(`
SELECT hash, day_filter, url, retrieved_at, timetable_start_date
FROM snapshot
WHERE ($1 = '' OR url = $1) AND ($2 = '' OR hash = $2)
ORDER BY retrieved_at DESC`, filter.URL, filter.Hash)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	metas := []*SnapshotMetadata{}
	for rows.Next() {
		meta := &SnapshotMetadata{}
		err = rows.Scan(&meta.Hash, &meta.DayFilter, &meta.URL, &meta.RetrievedAt, &meta.TimetableStartDate)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

func (s *PSQLStorage) WriteSnapshot(meta *SnapshotMetadata, data *schedule.Data) error {
	var buf bytes.Buffer
	if err := data.Encode(&buf); err != nil {
		return err
	}

	_, err := s.db.Exec(`
INSERT INTO snapshot (hash, day_filter, url, retrieved_at, timetable_start_date, data)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (hash, day_filter) DO UPDATE SET
    url = excluded.url,
    retrieved_at = excluded.retrieved_at,
    timetable_start_date = excluded.timetable_start_date,
    data = excluded.data`,
		meta.Hash, meta.DayFilter, meta.URL, meta.RetrievedAt, meta.TimetableStartDate, buf.Bytes())
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (s *PSQLStorage) ReadSnapshot(hash, dayFilter string) (*schedule.Data, *SnapshotMetadata, error) {
	meta := &SnapshotMetadata{}
	var blob []byte
	err := s.db.QueryRow(`
SELECT hash, day_filter, url, retrieved_at, timetable_start_date, data
FROM snapshot
WHERE hash = $1 AND day_filter = $2`, hash, dayFilter).
		Scan(&meta.Hash, &meta.DayFilter, &meta.URL, &meta.RetrievedAt, &meta.TimetableStartDate, &blob)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading snapshot: %w", err)
	}

	data, err := schedule.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, nil, err
	}
	return data, meta, nil
}

func (s *PSQLStorage) DeleteSnapshot(hash, dayFilter string) error {
	res, err := s.db.Exec(`DELETE FROM snapshot WHERE hash = $1 AND day_filter = $2`, hash, dayFilter)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

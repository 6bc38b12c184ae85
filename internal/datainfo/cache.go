package datainfo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is a sqlite catalog of previously computed Info records, keyed by the
// source file's absolute path and fingerprinted by size and mtime. A changed
// file misses the cache and gets rescanned.
//
// Timestamps are stored as RFC3339Nano strings: sqlite has no native
// timestamp type and the string form round-trips reliably and stays readable
// when debugging the catalog by hand.
type Cache struct {
	db *sql.DB
}

const createCacheSQL = `
CREATE TABLE IF NOT EXISTS source_info (
	path         TEXT PRIMARY KEY,
	size         INTEGER NOT NULL,
	mod_time     TEXT NOT NULL,
	line_count   INTEGER NOT NULL,
	column_count INTEGER NOT NULL,
	scanned_at   TEXT NOT NULL
)`

// OpenCache opens (creating if needed) the catalog at path.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open info cache: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open info cache: %w", err)
	}
	if _, err := db.ExecContext(ctx, createCacheSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create info cache table: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() { _ = c.db.Close() }

// Lookup returns the cached Info for path if the stored fingerprint still
// matches size and modTime. The second return is false on a miss.
func (c *Cache) Lookup(ctx context.Context, path string, size int64, modTime time.Time) (Info, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT size, mod_time, line_count, column_count FROM source_info WHERE path = ?`, path)

	var (
		gotSize int64
		gotMod  string
		info    Info
	)
	err := row.Scan(&gotSize, &gotMod, &info.LineCount, &info.ColumnCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("info cache lookup %s: %w", path, err)
	}

	if gotSize != size || gotMod != modTime.UTC().Format(time.RFC3339Nano) {
		return Info{}, false, nil
	}
	return info, true, nil
}

// Store records the Info for path, replacing any stale entry.
func (c *Cache) Store(ctx context.Context, path string, size int64, modTime time.Time, info Info) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO source_info (path, size, mod_time, line_count, column_count, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		path, size, modTime.UTC().Format(time.RFC3339Nano),
		info.LineCount, info.ColumnCount,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("info cache store %s: %w", path, err)
	}
	return nil
}

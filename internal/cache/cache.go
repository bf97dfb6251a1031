// Package cache provides a SQLite-backed memoisation store for the
// slicing pipeline (§4.6/§6 of SPEC_FULL.md). It holds the "private,
// versioned, opaque" blobs the pipeline driver uses to skip stages A–E
// on a re-run over unchanged input: level 1 (parsed entity sets) and
// level 2 (the built cross-reference graph). The cache lives at
// .modslice/cache.db.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CurrentBlobVersion is the format tag written with every stored blob.
// A stored version that doesn't match forces a full re-run of the
// corresponding stage, per §6's memoisation contract.
const CurrentBlobVersion = 1

// Blob kinds, naming the two memoisable stages.
const (
	KindEntities = "entities"
	KindGraph    = "graph"
)

// Cache manages the .modslice/cache.db SQLite database for storing
// memoised pipeline stage output.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database at the specified directory.
// It initializes the schema if the database is new.
func Open(cacheDir string) (*Cache, error) {
	dbPath := filepath.Join(cacheDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Clear removes all memoised blobs.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM blobs")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// ErrBlobNotFound is returned by Get when no blob matches (kind, key),
// or when a matching blob was stored with a version other than
// CurrentBlobVersion.
var ErrBlobNotFound = fmt.Errorf("blob not found or stale")

// Put stores a versioned blob for (kind, key), overwriting any existing
// entry.
func (c *Cache) Put(kind, key string, data []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO blobs (kind, key, version, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			created_at = excluded.created_at`,
		kind, key, CurrentBlobVersion, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put blob %s/%s: %w", kind, key, err)
	}
	return nil
}

// Get retrieves the blob for (kind, key). Returns ErrBlobNotFound if
// absent or if its stored version doesn't match CurrentBlobVersion —
// the caller must treat either case as a cache miss and recompute.
func (c *Cache) Get(kind, key string) ([]byte, error) {
	var version int
	var data []byte
	err := c.db.QueryRow(
		"SELECT version, data FROM blobs WHERE kind = ? AND key = ?",
		kind, key,
	).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s/%s: %w", kind, key, err)
	}
	if version != CurrentBlobVersion {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

// Stats reports memoisation cache occupancy.
type Stats struct {
	EntitiesCount int64
	GraphCount    int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE kind = ?", KindEntities).Scan(&stats.EntitiesCount)
	if err != nil {
		return nil, fmt.Errorf("count entity blobs: %w", err)
	}

	err = c.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE kind = ?", KindGraph).Scan(&stats.GraphCount)
	if err != nil {
		return nil, fmt.Errorf("count graph blobs: %w", err)
	}

	return &stats, nil
}

package cache

// schemaSQL defines the SQLite schema for the memoisation cache database.
//
// Table:
//   - blobs: versioned, opaque payloads for the two memoisable stages of
//     the pipeline (§4.6/§6 of SPEC_FULL.md): "entities" (level 1, the
//     parsed entity sets per area) and "graph" (level 2, the fully built
//     cross-reference graph). Keyed by (kind, key): for an entity blob
//     key is the sha256 of the area name and the adapted source text,
//     for the graph blob it is a sha256 over every entity's content
//     hash, so a changed input never hits a stale blob.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS blobs (
    kind TEXT NOT NULL,
    key TEXT NOT NULL,
    version INTEGER NOT NULL,
    data BLOB NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (kind, key)
);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}

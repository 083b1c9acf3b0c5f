package media

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS media (
	key TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	etag TEXT NOT NULL,
	size INTEGER NOT NULL,
	content_type TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_media_owner ON media(owner);
CREATE INDEX IF NOT EXISTS idx_media_created_at ON media(created_at);
`

// MediaInfo is one completed, stitched object. In-progress upload sessions are
// never recorded here, the storage backend owns those.
type MediaInfo struct {
	Key         string `json:"key" db:"key"`
	Owner       string `json:"owner" db:"owner"`
	ETag        string `json:"etag" db:"etag"`
	Size        int64  `json:"size" db:"size"`
	ContentType string `json:"contentType" db:"content_type"`
	CreatedAt   string `json:"createdAt" db:"created_at"`
}

// MediaIndex provides access to completed-media metadata stored in SQLite
type MediaIndex struct {
	db *sqlx.DB
}

func NewMediaIndex(db *sqlx.DB) (*MediaIndex, error) {
	idx := &MediaIndex{db: db}
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize media index: %w", err)
	}
	return idx, nil
}

// Close releases resources used by the index
func (mi *MediaIndex) Close() error {
	return mi.db.Close()
}

// Get retrieves media info by key
func (mi *MediaIndex) Get(key string) (*MediaInfo, bool) {
	var info MediaInfo
	err := mi.db.Get(&info, "SELECT key, owner, etag, size, content_type, created_at FROM media WHERE key = ?", key)
	if err != nil {
		return nil, false
	}
	return &info, true
}

// Set adds or updates a media record
func (mi *MediaIndex) Set(info *MediaInfo) error {
	_, err := mi.db.Exec(
		`INSERT OR REPLACE INTO media (key, owner, etag, size, content_type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		info.Key, info.Owner, info.ETag, info.Size, info.ContentType, info.CreatedAt,
	)
	return err
}

// Remove deletes a media record
func (mi *MediaIndex) Remove(key string) error {
	_, err := mi.db.Exec("DELETE FROM media WHERE key = ?", key)
	return err
}

// ListByOwner returns all media owned by one user, newest first
func (mi *MediaIndex) ListByOwner(owner string) ([]*MediaInfo, error) {
	var media []*MediaInfo
	err := mi.db.Select(&media,
		"SELECT key, owner, etag, size, content_type, created_at FROM media WHERE owner = ? ORDER BY created_at DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list media for %s: %w", owner, err)
	}
	return media, nil
}

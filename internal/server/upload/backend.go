package upload

import (
	"context"
	"io"
	"time"
)

const (
	// MaxParts is the backend-imposed ceiling on part numbers in one session.
	MaxParts = 10000

	// DefaultURLExpiry bounds the validity of issued part-write and read capabilities.
	DefaultURLExpiry = 1 * time.Hour
)

// Backend is the object-storage capability the coordinator orchestrates.
// It owns all durable session state; the coordinator never caches any of it.
// Implemented by S3Backend in production and by fakes in tests.
type Backend interface {
	// CreateMultipart opens an upload session for key and returns the
	// backend-issued upload ID.
	CreateMultipart(ctx context.Context, key, contentType string) (string, error)

	// PresignUploadPart issues a time-bounded URL allowing the bearer to write
	// one specific part directly to the backend.
	PresignUploadPart(ctx context.Context, params *PresignPartParams) (string, error)

	// UploadPart durably stores the bytes for one part and returns its record.
	// Re-uploading a part number overwrites the previous bytes.
	UploadPart(ctx context.Context, params *UploadPartParams) (*Part, error)

	// ListParts returns the authoritative list of parts the backend has
	// received for the session, ordered by part number ascending.
	ListParts(ctx context.Context, key, uploadID string) ([]*Part, error)

	// CompleteMultipart stitches the listed parts into the final object.
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []*Part) (*ObjectInfo, error)

	// AbortMultipart discards all received parts and closes the session.
	AbortMultipart(ctx context.Context, key, uploadID string) error

	// ListPendingUploads returns all open upload sessions in the bucket.
	ListPendingUploads(ctx context.Context) ([]*PendingUpload, error)

	// PresignDownload issues a time-bounded URL to fetch a stored object.
	// Existence is checked by the backend at fetch time, not here.
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)

	// DeleteObject removes a stored object.
	DeleteObject(ctx context.Context, key string) error
}

// Part records one durably received chunk. It exists only after the backend
// acknowledged the bytes for its part number.
type Part struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"etag"`
	Size       int64  `json:"size"`
}

type PresignPartParams struct {
	Key         string
	UploadID    string
	PartNumber  int32
	ContentType string
	Expiry      time.Duration
}

type UploadPartParams struct {
	Key         string
	UploadID    string
	PartNumber  int32
	ContentType string
	Body        io.Reader
	Size        int64
}

// ObjectInfo describes the final stitched object returned by a completion call.
type ObjectInfo struct {
	Key          string    `json:"key"`
	ETag         string    `json:"etag"`
	Size         int64     `json:"size"`
	Version      string    `json:"version,omitempty"`
	Location     string    `json:"location,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// PendingUpload identifies an open multipart session, used by the stale-session sweeper.
type PendingUpload struct {
	Key       string
	UploadID  string
	Initiated time.Time
}

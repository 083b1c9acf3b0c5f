package upload

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// presignFanout caps concurrent part-authorization requests against the backend.
const presignFanout = 64

// Service coordinates the multipart-upload lifecycle against a storage backend.
// It is stateless between calls: the backend exclusively owns session and part
// durability, so horizontally scaled instances stay consistent for free.
type Service struct {
	backend   Backend
	urlExpiry time.Duration
}

func NewService(backend Backend) *Service {
	return &Service{
		backend:   backend,
		urlExpiry: DefaultURLExpiry,
	}
}

// Backend returns the underlying storage backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// Initiate opens a new upload session and returns the backend-issued upload ID
// unchanged. No retry here, create-multipart has no side effect on prior state
// so the caller may retry idempotently.
func (s *Service) Initiate(ctx context.Context, key, contentType string) (string, error) {
	if !ValidateKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if contentType == "" {
		return "", ErrInvalidContentType
	}

	uploadID, err := s.backend.CreateMultipart(ctx, key, contentType)
	if err != nil {
		slog.Error("create multipart upload", "key", key, "error", err)
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return uploadID, nil
}

// AuthorizeParts issues one time-bounded part-write capability per part number
// in 1..chunkCount. Requests fan out concurrently (capped at presignFanout) but
// the result is index-aligned: result[i] authorizes part number i+1 no matter
// which backend call returned first. Any single failure fails the whole batch,
// a sequence with holes is never returned; re-requesting is safe per part.
func (s *Service) AuthorizeParts(ctx context.Context, key, uploadID, contentType string, chunkCount int) ([]string, error) {
	if !ValidateKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if chunkCount < 1 {
		return nil, fmt.Errorf("chunk count must be at least 1, got %d", chunkCount)
	}
	if chunkCount > MaxParts {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyParts, chunkCount, MaxParts)
	}

	urls := make([]string, chunkCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignFanout)
	for i := range chunkCount {
		g.Go(func() error {
			url, err := s.backend.PresignUploadPart(gctx, &PresignPartParams{
				Key:         key,
				UploadID:    uploadID,
				PartNumber:  int32(i + 1),
				ContentType: contentType,
				Expiry:      s.urlExpiry,
			})
			if err != nil {
				return fmt.Errorf("presign part %d: %w", i+1, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("authorize parts", "key", key, "uploadId", uploadID, "parts", chunkCount, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return urls, nil
}

// UploadChunk proxies one part's bytes through this service. Alternative to the
// presigned direct-to-backend path; at-least-once semantics are fine because
// Complete reconciles against the backend's part list, not client bookkeeping.
func (s *Service) UploadChunk(ctx context.Context, params *UploadPartParams) (*Part, error) {
	if !ValidateKey(params.Key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, params.Key)
	}
	if params.PartNumber < 1 || params.PartNumber > MaxParts {
		return nil, fmt.Errorf("part number must be in 1..%d, got %d", MaxParts, params.PartNumber)
	}
	if params.Body == nil || params.Size <= 0 {
		return nil, fmt.Errorf("chunk body must not be empty")
	}

	part, err := s.backend.UploadPart(ctx, params)
	if err != nil {
		slog.Error("upload chunk", "key", params.Key, "uploadId", params.UploadID, "partNumber", params.PartNumber, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrChunkUploadFailed, err)
	}
	return part, nil
}

// Complete finalizes an upload session. The caller is never trusted with the
// manifest: the backend's part list is fetched first and is authoritative, so a
// caller can neither claim parts that were never uploaded nor omit parts a
// concurrent path already delivered. Received parts must be contiguous from 1.
func (s *Service) Complete(ctx context.Context, key, uploadID string) (*ObjectInfo, error) {
	if !ValidateKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	parts, err := s.backend.ListParts(ctx, key, uploadID)
	if err != nil {
		slog.Error("list parts", "key", key, "uploadId", uploadID, "error", err)
		if s3ErrorCode(err) == s3ErrNoSuchUpload {
			return nil, fmt.Errorf("%w: %v", ErrAlreadyFinalized, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: upload %s has no parts", ErrNoPartsUploaded, uploadID)
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	// A gap means some chunk never arrived; completing would stitch a truncated object.
	for i, part := range parts {
		if part.PartNumber != int32(i+1) {
			return nil, fmt.Errorf("%w: parts not contiguous, expected part %d got %d", ErrCompletionRejected, i+1, part.PartNumber)
		}
	}

	var totalSize int64
	for _, part := range parts {
		totalSize += part.Size
	}

	info, err := s.backend.CompleteMultipart(ctx, key, uploadID, parts)
	if err != nil {
		slog.Error("complete multipart upload", "key", key, "uploadId", uploadID, "parts", len(parts), "error", err)
		switch s3ErrorCode(err) {
		case s3ErrNoSuchUpload:
			// Not idempotent at the backend, completing twice errors. Surfaced as-is
			// rather than retried blindly.
			return nil, fmt.Errorf("%w: %v", ErrAlreadyFinalized, err)
		case s3ErrInvalidPart, s3ErrInvalidPartOrder, s3ErrEntityTooSmall:
			return nil, fmt.Errorf("%w: %v", ErrCompletionRejected, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	// The object size is not reported by completion; the part list already has it.
	info.Size = totalSize
	return info, nil
}

// Abort tells the backend to discard all received parts for a session. Used
// when a caller gives up mid-upload, and by the stale-session sweeper.
func (s *Service) Abort(ctx context.Context, key, uploadID string) error {
	if !ValidateKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if err := s.backend.AbortMultipart(ctx, key, uploadID); err != nil {
		slog.Error("abort multipart upload", "key", key, "uploadId", uploadID, "error", err)
		if s3ErrorCode(err) == s3ErrNoSuchUpload {
			return fmt.Errorf("%w: %v", ErrAlreadyFinalized, err)
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// PresignDownload issues a read capability for a stored object. Existence is
// deliberately not verified here; the backend rejects unknown keys at fetch
// time, which spares an extra round trip on the hot path.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, error) {
	if !ValidateKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	url, err := s.backend.PresignDownload(ctx, key, s.urlExpiry)
	if err != nil {
		slog.Error("presign download", "key", key, "error", err)
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return url, nil
}

// Delete removes a stored object. No soft-delete semantics.
func (s *Service) Delete(ctx context.Context, key string) error {
	if !ValidateKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if err := s.backend.DeleteObject(ctx, key); err != nil {
		slog.Error("delete object", "key", key, "error", err)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

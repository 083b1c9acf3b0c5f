package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory stand-in for the object store. It owns session
// and part state the same way S3 does: parts exist only once acknowledged,
// sessions disappear on complete/abort.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*fakeSession
	objects  map[string]string // key -> etag

	// error injection
	createErr   error
	presignErr  error
	presignFail int32 // fail presign for this part number only
	listErr     error
	completeErr error
	uploadErr   error

	// call counters
	createCalls   int
	presignCalls  int
	listCalls     int
	completeCalls int
	abortCalls    int

	// manifest passed to the last CompleteMultipart call
	lastManifest []*Part

	// issued presigned URLs -> expiry deadline
	issued map[string]time.Time
}

type fakeSession struct {
	key         string
	contentType string
	initiated   time.Time
	parts       map[int32]*Part
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sessions: make(map[string]*fakeSession),
		objects:  make(map[string]string),
		issued:   make(map[string]time.Time),
	}
}

func (f *fakeBackend) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("upload-%04d", f.nextID)
	f.sessions[id] = &fakeSession{
		key:         key,
		contentType: contentType,
		initiated:   time.Now(),
		parts:       make(map[int32]*Part),
	}
	return id, nil
}

func (f *fakeBackend) PresignUploadPart(ctx context.Context, params *PresignPartParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presignCalls++
	if f.presignErr != nil && (f.presignFail == 0 || f.presignFail == params.PartNumber) {
		return "", f.presignErr
	}
	u := fmt.Sprintf("https://storage.fake/%s?uploadId=%s&partNumber=%d&issued=%d",
		params.Key, params.UploadID, params.PartNumber, f.presignCalls)
	f.issued[u] = time.Now().Add(params.Expiry)
	return u, nil
}

func (f *fakeBackend) UploadPart(ctx context.Context, params *UploadPartParams) (*Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	sess, ok := f.sessions[params.UploadID]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: s3ErrNoSuchUpload, Message: "no such upload"}
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	part := &Part{
		PartNumber: params.PartNumber,
		ETag:       fmt.Sprintf("etag-%s-%d-%d", params.UploadID, params.PartNumber, len(data)),
		Size:       int64(len(data)),
	}
	sess.parts[params.PartNumber] = part
	return part, nil
}

func (f *fakeBackend) ListParts(ctx context.Context, key, uploadID string) ([]*Part, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	sess, ok := f.sessions[uploadID]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: s3ErrNoSuchUpload, Message: "no such upload"}
	}
	var parts []*Part
	for _, p := range sess.parts {
		parts = append(parts, p)
	}
	return parts, nil
}

func (f *fakeBackend) CompleteMultipart(ctx context.Context, key, uploadID string, parts []*Part) (*ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	f.lastManifest = parts
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	if _, ok := f.sessions[uploadID]; !ok {
		return nil, &smithy.GenericAPIError{Code: s3ErrNoSuchUpload, Message: "no such upload"}
	}
	delete(f.sessions, uploadID)
	etag := fmt.Sprintf("etag-final-%s", uploadID)
	f.objects[key] = etag
	return &ObjectInfo{Key: key, ETag: etag, LastModified: time.Now().UTC()}, nil
}

func (f *fakeBackend) AbortMultipart(ctx context.Context, key, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abortCalls++
	if _, ok := f.sessions[uploadID]; !ok {
		return &smithy.GenericAPIError{Code: s3ErrNoSuchUpload, Message: "no such upload"}
	}
	delete(f.sessions, uploadID)
	return nil
}

func (f *fakeBackend) ListPendingUploads(ctx context.Context) ([]*PendingUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var uploads []*PendingUpload
	for id, sess := range f.sessions {
		uploads = append(uploads, &PendingUpload{Key: sess.key, UploadID: id, Initiated: sess.initiated})
	}
	return uploads, nil
}

func (f *fakeBackend) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := fmt.Sprintf("https://storage.fake/%s?download=1", key)
	f.issued[u] = time.Now().Add(expiry)
	return u, nil
}

func (f *fakeBackend) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

// Fetch simulates the backend honoring a presigned URL at a given instant.
func (f *fakeBackend) Fetch(u string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	deadline, ok := f.issued[u]
	if !ok {
		return fmt.Errorf("unknown presigned url")
	}
	if at.After(deadline) {
		return fmt.Errorf("presigned url expired")
	}
	return nil
}

var _ Backend = (*fakeBackend)(nil)

// ===================================================================================================

func TestInitiate(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	id1, err := svc.Initiate(ctx, "media/doc.pdf", "application/pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	id2, err := svc.Initiate(ctx, "media/doc.pdf", "application/pdf")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2, "concurrent sessions must get distinct upload ids")
}

func TestInitiate_Validation(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	tests := []struct {
		name        string
		key         string
		contentType string
		wantErr     error
	}{
		{"empty key", "", "video/mp4", ErrInvalidKey},
		{"traversal key", "../etc/passwd", "video/mp4", ErrInvalidKey},
		{"empty content type", "media/a.mp4", "", ErrInvalidContentType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Initiate(ctx, tt.key, tt.contentType)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, backend.createCalls, "validation failures must not reach the backend")
}

func TestInitiate_BackendDown(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = fmt.Errorf("connection refused")
	svc := NewService(backend)

	_, err := svc.Initiate(context.Background(), "media/a.mp4", "video/mp4")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestAuthorizeParts_Alignment(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/big.mp4", "video/mp4")
	require.NoError(t, err)

	for _, count := range []int{1, 3, 100} {
		urls, err := svc.AuthorizeParts(ctx, "media/big.mp4", uploadID, "video/mp4", count)
		require.NoError(t, err)
		require.Len(t, urls, count)

		for i, raw := range urls {
			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(i+1), u.Query().Get("partNumber"),
				"urls[%d] must authorize part number %d", i, i+1)
		}
	}
}

func TestAuthorizeParts_Bounds(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	_, err := svc.AuthorizeParts(ctx, "media/a.bin", "upload-1", "application/octet-stream", 0)
	assert.Error(t, err)

	_, err = svc.AuthorizeParts(ctx, "media/a.bin", "upload-1", "application/octet-stream", MaxParts+1)
	assert.ErrorIs(t, err, ErrTooManyParts)

	assert.Zero(t, backend.presignCalls)
}

func TestAuthorizeParts_AllOrNothing(t *testing.T) {
	backend := newFakeBackend()
	backend.presignErr = fmt.Errorf("throttled")
	backend.presignFail = 3 // only part 3 fails
	svc := NewService(backend)

	urls, err := svc.AuthorizeParts(context.Background(), "media/a.bin", "upload-1", "application/octet-stream", 5)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Nil(t, urls, "a batch with holes must never be returned")
}

func TestAuthorizeParts_IdempotentReissue(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	first, err := svc.AuthorizeParts(ctx, "media/a.bin", "upload-1", "application/octet-stream", 2)
	require.NoError(t, err)
	second, err := svc.AuthorizeParts(ctx, "media/a.bin", "upload-1", "application/octet-stream", 2)
	require.NoError(t, err)

	// both batches remain independently usable inside the validity window,
	// and every part-write capability dies with it
	now := time.Now()
	for _, u := range append(append([]string{}, first...), second...) {
		assert.NoError(t, backend.Fetch(u, now))
		assert.Error(t, backend.Fetch(u, now.Add(2*time.Hour)))
	}
}

func TestUploadChunk(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/clip.mp4", "video/mp4")
	require.NoError(t, err)

	part, err := svc.UploadChunk(ctx, &UploadPartParams{
		Key:         "media/clip.mp4",
		UploadID:    uploadID,
		PartNumber:  1,
		ContentType: "video/mp4",
		Body:        bytes.NewReader([]byte("chunk-bytes")),
		Size:        11,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), part.PartNumber)
	assert.NotEmpty(t, part.ETag)

	// retrying the same part number overwrites, per backend semantics
	retry, err := svc.UploadChunk(ctx, &UploadPartParams{
		Key:         "media/clip.mp4",
		UploadID:    uploadID,
		PartNumber:  1,
		ContentType: "video/mp4",
		Body:        bytes.NewReader([]byte("chunk-bytes-v2")),
		Size:        14,
	})
	require.NoError(t, err)
	assert.NotEqual(t, part.ETag, retry.ETag)

	parts, err := backend.ListParts(ctx, "media/clip.mp4", uploadID)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestUploadChunk_Validation(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	_, err := svc.UploadChunk(ctx, &UploadPartParams{Key: "a.bin", UploadID: "u", PartNumber: 0, Body: bytes.NewReader([]byte("x")), Size: 1})
	assert.Error(t, err)

	_, err = svc.UploadChunk(ctx, &UploadPartParams{Key: "a.bin", UploadID: "u", PartNumber: 1, Body: nil, Size: 0})
	assert.Error(t, err)
}

func TestUploadChunk_BackendDown(t *testing.T) {
	backend := newFakeBackend()
	backend.uploadErr = fmt.Errorf("broken pipe")
	svc := NewService(backend)

	_, err := svc.UploadChunk(context.Background(), &UploadPartParams{
		Key: "a.bin", UploadID: "u", PartNumber: 1,
		Body: bytes.NewReader([]byte("x")), Size: 1,
	})
	assert.ErrorIs(t, err, ErrChunkUploadFailed)
}

func uploadParts(t *testing.T, svc *Service, key, uploadID string, numbers ...int32) {
	t.Helper()
	for _, n := range numbers {
		_, err := svc.UploadChunk(context.Background(), &UploadPartParams{
			Key:         key,
			UploadID:    uploadID,
			PartNumber:  n,
			ContentType: "application/octet-stream",
			Body:        bytes.NewReader(bytes.Repeat([]byte{0xAB}, 8)),
			Size:        8,
		})
		require.NoError(t, err)
	}
}

func TestComplete_BackendListIsAuthoritative(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)

	// three parts arrive, e.g. one via a concurrent path the caller lost track of
	uploadParts(t, svc, "media/a.bin", uploadID, 2, 1, 3)

	info, err := svc.Complete(ctx, "media/a.bin", uploadID)
	require.NoError(t, err)
	assert.Equal(t, "media/a.bin", info.Key)
	assert.NotEmpty(t, info.ETag)

	// the manifest came from ListParts, sorted ascending, all three present
	require.Len(t, backend.lastManifest, 3)
	for i, part := range backend.lastManifest {
		assert.Equal(t, int32(i+1), part.PartNumber)
	}
}

func TestComplete_NoParts(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	assert.ErrorIs(t, err, ErrNoPartsUploaded)
	assert.Zero(t, backend.completeCalls, "empty upload must not reach the completion call")
}

func TestComplete_GapInParts(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)
	uploadParts(t, svc, "media/a.bin", uploadID, 1, 3)

	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	assert.ErrorIs(t, err, ErrCompletionRejected)
	assert.Zero(t, backend.completeCalls, "a holey upload must never silently complete")
}

func TestComplete_Twice(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)
	uploadParts(t, svc, "media/a.bin", uploadID, 1)

	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestComplete_BackendRejects(t *testing.T) {
	backend := newFakeBackend()
	backend.completeErr = &smithy.GenericAPIError{Code: s3ErrEntityTooSmall, Message: "part below minimum size"}
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)
	uploadParts(t, svc, "media/a.bin", uploadID, 1)

	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	assert.ErrorIs(t, err, ErrCompletionRejected)
}

func TestComplete_ListUnavailable(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = fmt.Errorf("dial tcp: i/o timeout")
	svc := NewService(backend)

	_, err := svc.Complete(context.Background(), "media/a.bin", "upload-1")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Zero(t, backend.completeCalls)
}

func TestAbort(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	uploadID, err := svc.Initiate(ctx, "media/a.bin", "application/octet-stream")
	require.NoError(t, err)
	uploadParts(t, svc, "media/a.bin", uploadID, 1, 2)

	require.NoError(t, svc.Abort(ctx, "media/a.bin", uploadID))

	// the session is gone, parts discarded
	_, err = svc.Complete(ctx, "media/a.bin", uploadID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	assert.ErrorIs(t, svc.Abort(ctx, "media/a.bin", uploadID), ErrAlreadyFinalized)
}

func TestPresignDownload_Expiry(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend)
	ctx := context.Background()

	u, err := svc.PresignDownload(ctx, "media/a.bin")
	require.NoError(t, err)
	assert.NotEmpty(t, u)

	// honored inside the validity window, rejected by the backend after it
	assert.NoError(t, backend.Fetch(u, time.Now().Add(30*time.Minute)))
	assert.Error(t, backend.Fetch(u, time.Now().Add(2*time.Hour)))
}

func TestDelete(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["media/a.bin"] = "etag"
	svc := NewService(backend)

	require.NoError(t, svc.Delete(context.Background(), "media/a.bin"))
	assert.NotContains(t, backend.objects, "media/a.bin")
}

package media

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterspace/mediahub/internal/server/upload"
)

// sweepBackend tracks open sessions and records aborts. Only the calls the
// sweeper makes are meaningful; the rest satisfy the interface.
type sweepBackend struct {
	mu       sync.Mutex
	sessions map[string]*upload.PendingUpload
	listErr  error
	aborted  []string
}

func newSweepBackend() *sweepBackend {
	return &sweepBackend{sessions: make(map[string]*upload.PendingUpload)}
}

func (b *sweepBackend) open(key, uploadID string, age time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[uploadID] = &upload.PendingUpload{
		Key:       key,
		UploadID:  uploadID,
		Initiated: time.Now().Add(-age),
	}
}

func (b *sweepBackend) ListPendingUploads(ctx context.Context) ([]*upload.PendingUpload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	pending := make([]*upload.PendingUpload, 0, len(b.sessions))
	for _, p := range b.sessions {
		pending = append(pending, p)
	}
	return pending, nil
}

func (b *sweepBackend) AbortMultipart(ctx context.Context, key, uploadID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[uploadID]; !ok {
		return &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "upload not found"}
	}
	delete(b.sessions, uploadID)
	b.aborted = append(b.aborted, uploadID)
	return nil
}

func (b *sweepBackend) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (b *sweepBackend) PresignUploadPart(ctx context.Context, params *upload.PresignPartParams) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (b *sweepBackend) UploadPart(ctx context.Context, params *upload.UploadPartParams) (*upload.Part, error) {
	return nil, fmt.Errorf("not implemented")
}

func (b *sweepBackend) ListParts(ctx context.Context, key, uploadID string) ([]*upload.Part, error) {
	return nil, fmt.Errorf("not implemented")
}

func (b *sweepBackend) CompleteMultipart(ctx context.Context, key, uploadID string, parts []*upload.Part) (*upload.ObjectInfo, error) {
	return nil, fmt.Errorf("not implemented")
}

func (b *sweepBackend) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (b *sweepBackend) DeleteObject(ctx context.Context, key string) error {
	return fmt.Errorf("not implemented")
}

var _ upload.Backend = (*sweepBackend)(nil)

func TestSweep_AbortsOnlyStaleSessions(t *testing.T) {
	backend := newSweepBackend()
	backend.open("media/stale.mp4", "u-stale", 48*time.Hour)
	backend.open("media/fresh.mp4", "u-fresh", 1*time.Hour)

	sweeper := NewSweeper(upload.NewService(backend), DefaultSweepInterval, 24*time.Hour)

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"u-stale"}, backend.aborted)

	// The fresh session is still open.
	pending, err := backend.ListPendingUploads(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u-fresh", pending[0].UploadID)
}

func TestSweep_NothingPending(t *testing.T) {
	sweeper := NewSweeper(upload.NewService(newSweepBackend()), DefaultSweepInterval, 24*time.Hour)

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_ListFailure(t *testing.T) {
	backend := newSweepBackend()
	backend.listErr = fmt.Errorf("connection refused")

	sweeper := NewSweeper(upload.NewService(backend), DefaultSweepInterval, 24*time.Hour)

	_, err := sweeper.Sweep(context.Background())
	assert.Error(t, err)
}

func TestNewSweeper_Defaults(t *testing.T) {
	sweeper := NewSweeper(upload.NewService(newSweepBackend()), 0, 0)
	assert.Equal(t, DefaultSweepInterval, sweeper.interval)
	assert.Equal(t, DefaultSessionMaxAge, sweeper.maxAge)
}

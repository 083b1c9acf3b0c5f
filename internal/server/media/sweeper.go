package media

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chatterspace/mediahub/internal/server/upload"
)

const (
	// DefaultSweepInterval is how often abandoned sessions are checked for.
	DefaultSweepInterval = 1 * time.Hour

	// DefaultSessionMaxAge is how long an open session may sit without being
	// completed or aborted before its parts are discarded.
	DefaultSessionMaxAge = 24 * time.Hour
)

// Sweeper periodically aborts upload sessions that were initiated but never
// completed or aborted. Without it, orphaned parts accrue storage cost forever,
// the backend keeps them until the session is explicitly closed.
type Sweeper struct {
	uploads  *upload.Service
	interval time.Duration
	maxAge   time.Duration
}

func NewSweeper(uploads *upload.Service, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &Sweeper{
		uploads:  uploads,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. Blocks; run in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("upload sweeper started", "interval", s.interval, "maxAge", s.maxAge)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("upload sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				slog.Error("upload sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("aborted stale upload sessions", "count", n)
			}
		}
	}
}

// Sweep aborts every open session older than maxAge and returns how many were
// aborted. A session that a concurrent completion already closed is not an
// error, the sweep lost the race and moves on.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	pending, err := s.uploads.Backend().ListPendingUploads(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.maxAge)
	aborted := 0
	for _, p := range pending {
		if p.Initiated.After(cutoff) {
			continue
		}
		if err := s.uploads.Abort(ctx, p.Key, p.UploadID); err != nil {
			if errors.Is(err, upload.ErrAlreadyFinalized) {
				continue
			}
			slog.Error("abort stale session", "key", p.Key, "uploadId", p.UploadID, "error", err)
			continue
		}
		aborted++
	}
	return aborted, nil
}

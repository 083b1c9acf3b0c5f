package server

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chatterspace/mediahub/internal/server/auth"
	"github.com/chatterspace/mediahub/internal/server/media"
	"github.com/chatterspace/mediahub/internal/server/upload"
)

type Services struct {
	Upload  *upload.Service
	Media   *media.MediaIndex
	Sweeper *media.Sweeper
	Auth    *auth.AuthService
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	backend, err := upload.NewS3BackendWithConfig(&config.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage backend: %w", err)
	}

	uploadSvc := upload.NewService(backend)

	mediaIndex, err := media.NewMediaIndex(db)
	if err != nil {
		return nil, fmt.Errorf("create media index: %w", err)
	}

	sweeper := media.NewSweeper(uploadSvc, config.Sweeper.Interval, config.Sweeper.SessionMaxAge)

	authSvc := auth.NewAuthService(&config.Auth)

	return &Services{
		Upload:  uploadSvc,
		Media:   mediaIndex,
		Sweeper: sweeper,
		Auth:    authSvc,
	}, nil
}

func (s *Services) Start(ctx context.Context) error {
	go s.Sweeper.Run(ctx)
	return nil
}

func (s *Services) Shutdown(ctx context.Context) error {
	if err := s.Media.Close(); err != nil {
		return fmt.Errorf("close media index: %w", err)
	}
	return nil
}

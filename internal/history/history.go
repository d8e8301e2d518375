// Package history persists samples so the chart can warm-start with
// recent data after a restart.
package history

import (
	"context"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If history is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("Sample history disabled, using no-op recorder")
		return noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create history repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Bool("enabled", cfg.Enabled).
		Msg("History service initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, sample chart.Sample) error {
	errFactory := errors.New()

	if len(sample.Values) == 0 {
		return errFactory.New(ErrInvalidSample)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(sample); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Load(ctx context.Context, limit int) ([]chart.Sample, error) {
	return s.repo.Load(ctx, limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrServiceShutdown, err)
	}

	return nil
}

func (noopRecorder) Record(context.Context, chart.Sample) error {
	return nil
}

func (noopRecorder) Load(context.Context, int) ([]chart.Sample, error) {
	return nil, nil
}

func (noopRecorder) Close() error {
	return nil
}

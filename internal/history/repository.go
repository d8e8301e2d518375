package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/storage"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []chart.Sample
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	db, err := storage.Open(cfg.DBPath, schema, log)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", schema.Version).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("History repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]chart.Sample, 0, max(cfg.BatchSize, 1)),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	// Periodic flushing only makes sense when batching
	if cfg.BatchSize > 1 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

func (r *repository) Record(sample chart.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, sample)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *repository) Load(ctx context.Context, limit int) ([]chart.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	if limit <= 0 {
		return nil, nil
	}

	if err := r.flush(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectNewestSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var samples []chart.Sample
	for rows.Next() {
		var (
			ts     float64
			metric string
			value  float64
		)
		if err := rows.Scan(&ts, &metric, &value); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}

		if n := len(samples); n == 0 || samples[n-1].Timestamp != ts {
			samples = append(samples, chart.Sample{
				Timestamp: ts,
				Values:    make(map[chart.MetricKey]float64),
			})
		}
		samples[len(samples)-1].Values[chart.MetricKey(metric)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	r.logger.Debug().Int("samples", len(samples)).Msg("Loaded history")

	return samples, nil
}

func (r *repository) Close() error {
	var err error
	r.closeOnce.Do(func() {
		// Signal the flusher goroutine to stop
		close(r.shutdownChan)

		if r.flushTicker != nil {
			r.flushTicker.Stop()
		}

		// Wait for the flusher to finish its final flush
		<-r.flushDoneChan

		r.mu.Lock()
		defer r.mu.Unlock()

		if flushErr := r.flush(); flushErr != nil {
			r.logger.Warn().Err(flushErr).Msg("Failed to flush history on close")
		}

		if err = storage.Close(r.db); err != nil {
			return
		}

		r.logger.Info().Msg("History repository closed gracefully")
	})

	return err
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.logger.Warn().Err(err).Msg("Periodic history flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}

// flush writes the buffer in one transaction. The caller holds r.mu.
func (r *repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(insertSampleSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	newest := 0.0
	for _, sample := range r.buffer {
		for metric, value := range sample.Values {
			if _, err := stmt.Exec(sample.Timestamp, string(metric), value); err != nil {
				r.logger.Error().Err(err).Msg("Failed to execute insert")
				if err := tx.Rollback(); err != nil {
					r.logger.Error().Err(err).Msg("Failed to roll back transaction")
				}
				return errFactory.Wrap(ErrTransactionFailed, err)
			}
		}
		newest = max(newest, sample.Timestamp)
	}

	if r.cfg.Retention > 0 {
		cutoff := newest - r.cfg.Retention.Seconds()
		if _, err := tx.Exec(deleteOlderSQL, cutoff); err != nil {
			r.logger.Error().Err(err).Msg("Failed to prune history")
			if err := tx.Rollback(); err != nil {
				r.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(r.buffer)).Msg("Flushed samples to database")
	r.buffer = r.buffer[:0]

	return nil
}

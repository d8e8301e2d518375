// Package sampler polls a data source into the series buffer.
package sampler

import (
	"context"
	"strconv"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/series"
)

const maxConsecutiveFailures = 5

type Option func(*Sampler)

// WithRecorder persists every sample.
func WithRecorder(r Recorder) Option {
	return func(s *Sampler) { s.recorder = r }
}

// WithListener registers fn for new snapshots.
func WithListener(fn Listener) Option {
	return func(s *Sampler) { s.listener = fn }
}

// WithPeriod reads the sampling interval from settings on every tick.
func WithPeriod(p PeriodSource) Option {
	return func(s *Sampler) { s.period = p }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

func WithLogger(log logger.Logger) Option {
	return func(s *Sampler) { s.log = log }
}

type Sampler struct {
	src      Source
	buf      *series.Buffer
	recorder Recorder
	listener Listener
	period   PeriodSource
	now      func() time.Time
	log      logger.Logger
}

func New(src Source, buf *series.Buffer, opts ...Option) (*Sampler, error) {
	if src == nil || buf == nil {
		return nil, errors.New().New(ErrInvalidSource)
	}

	s := &Sampler{
		src: src,
		buf: buf,
		now: time.Now,
		log: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Metrics returns the source's metrics.
func (s *Sampler) Metrics() []chart.Metric {
	return s.src.Metrics()
}

// Interval returns the current sampling interval.
func (s *Sampler) Interval() time.Duration {
	ms := chart.DefaultUpdatingPeriod
	if s.period != nil {
		if v, err := strconv.Atoi(s.period.Get(chart.KeyUpdatingPeriod)); err == nil && v > 0 {
			ms = v
		}
	}

	return time.Duration(ms) * time.Millisecond
}

// Sample reads the source once and appends the result.
func (s *Sampler) Sample(ctx context.Context) error {
	errFactory := errors.New()

	values, err := s.src.Read(ctx)
	if err != nil {
		return errFactory.Wrap(ErrReadFailed, err)
	}

	now := s.now()
	sample := chart.Sample{
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		Values:    values,
	}

	if err := s.buf.Append(sample); err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, sample); err != nil {
			s.log.Warn().Err(err).Msg("Failed to record sample")
		}
	}

	if s.listener != nil {
		s.listener(s.buf.Snapshot())
	}

	return nil
}

// Run samples until ctx is cancelled. The interval is re-read after every
// sample so a settings change takes effect on the next tick. Run gives up
// after several consecutive read failures.
func (s *Sampler) Run(ctx context.Context) error {
	interval := s.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info().
		Dur("interval", interval).
		Int("metrics", len(s.src.Metrics())).
		Msg("Sampler started")

	failures := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("Sampler stopped")
			return nil
		case <-ticker.C:
			if err := s.Sample(ctx); err != nil {
				failures++
				s.log.Warn().Err(err).Int("failures", failures).Msg("Failed to sample")
				if failures >= maxConsecutiveFailures {
					return errors.New().Wrap(ErrTooManyErrors, err)
				}
			} else {
				failures = 0
			}

			if next := s.Interval(); next != interval {
				s.log.Debug().Dur("from", interval).Dur("to", next).Msg("Sampling interval changed")
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

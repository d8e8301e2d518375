// Package gpu reads per-device power draw or utilization through NVML and
// exposes every GPU as one stacked metric.
package gpu

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
)

// Source reads every detected GPU on each call to Read.
type Source struct {
	nvml    nvmlController
	devices []device
	metrics []chart.Metric
	read    func(device) (float64, error)
	log     logger.Logger
	mu      sync.Mutex
}

// New initializes NVML and discovers the devices.
func New(reading Reading, log logger.Logger) (*Source, error) {
	return newSource(&nvmlWrapper{}, reading, log)
}

func newSource(ctrl nvmlController, reading Reading, log logger.Logger) (*Source, error) {
	errFactory := errors.New()

	read, ok := readerFor(reading)
	if !ok {
		return nil, errFactory.WithData(ErrInvalidReading, string(reading))
	}

	if err := ctrl.Initialize(); err != nil {
		return nil, err
	}

	s := &Source{nvml: ctrl, read: read, log: log}
	if err := s.discover(); err != nil {
		if shutdownErr := ctrl.Shutdown(); shutdownErr != nil {
			log.Debug().Err(shutdownErr).Msg("Failed to shut down NVML")
		}
		return nil, err
	}

	log.Info().
		Int("devices", len(s.devices)).
		Str("reading", string(reading)).
		Msg("GPU source initialized")

	return s, nil
}

func (s *Source) discover() error {
	errFactory := errors.New()

	count, err := s.nvml.GetDeviceCount()
	if err != nil {
		return err
	}
	if count == 0 {
		return errFactory.New(ErrNoDevices)
	}

	for i := 0; i < count; i++ {
		d, err := s.nvml.GetDevice(i)
		if err != nil {
			return err
		}

		key := chart.MetricKey(fmt.Sprintf("gpu%d", i))
		label := string(key)
		if name, ret := d.GetName(); IsNVMLSuccess(ret) {
			label = fmt.Sprintf("%s: %s", key, name)
			s.log.Info().Msgf("Detected GPU %d: %v", i, name)
		} else {
			s.log.Warn().Msgf("Failed to get GPU %d name: %v", i, newNVMLError(ret))
		}

		s.devices = append(s.devices, d)
		s.metrics = append(s.metrics, chart.Metric{Key: key, Label: label})
	}

	return nil
}

func (s *Source) Metrics() []chart.Metric {
	return s.metrics
}

// Read returns one value per device. A device that fails to report is left
// out of the sample; Read fails only when no device reports.
func (s *Source) Read(ctx context.Context) (map[chart.MetricKey]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[chart.MetricKey]float64, len(s.devices))

	var lastErr error
	for i, d := range s.devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := s.read(d)
		if err != nil {
			s.log.Debug().Err(err).Int("device", i).Msg("Failed to read GPU")
			lastErr = err
			continue
		}
		values[s.metrics[i].Key] = v
	}

	if len(values) == 0 && lastErr != nil {
		return nil, errors.New().Wrap(ErrDeviceInfoFailed, lastErr)
	}

	return values, nil
}

// Close shuts NVML down.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nvml.Shutdown()
}

package sampler

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"codeberg.org/mutker/stackchart/internal/chart"
)

const (
	syntheticMax  = 100.0
	syntheticStep = 5.0
)

// Synthetic is a random-walk source for demos and tests. Every metric
// starts halfway up its range and moves by at most syntheticStep per read.
type Synthetic struct {
	mu      sync.Mutex
	metrics []chart.Metric
	values  map[chart.MetricKey]float64
	rng     *rand.Rand
}

// NewSynthetic returns a source with one metric per name.
func NewSynthetic(names []string, seed int64) *Synthetic {
	s := &Synthetic{
		metrics: make([]chart.Metric, 0, len(names)),
		values:  make(map[chart.MetricKey]float64, len(names)),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for _, name := range names {
		key := chart.MetricKey(name)
		s.metrics = append(s.metrics, chart.Metric{Key: key, Label: name})
		s.values[key] = syntheticMax / 2
	}

	return s
}

func (s *Synthetic) Metrics() []chart.Metric {
	return s.metrics
}

func (s *Synthetic) Read(context.Context) (map[chart.MetricKey]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[chart.MetricKey]float64, len(s.values))
	for _, m := range s.metrics {
		v := s.values[m.Key] + (s.rng.Float64()*2-1)*syntheticStep
		v = math.Min(math.Max(v, 0), syntheticMax)
		s.values[m.Key] = v
		out[m.Key] = v
	}

	return out, nil
}

func (*Synthetic) Close() error {
	return nil
}

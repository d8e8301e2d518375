package chart

import (
	"sort"
	"strconv"
	"time"
)

type manualTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d

	due := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })

	for _, t := range due {
		t.fired = true
		t.fn()
	}
}

func (s *manualScheduler) Active() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeSubscription struct {
	key string
	fn  func(string)
}

type fakeSettings struct {
	values map[string]string
	subs   map[string]fakeSubscription
	seq    int
	err    error
}

func newFakeSettings(values map[string]string) *fakeSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSettings{values: values, subs: map[string]fakeSubscription{}}
}

func (s *fakeSettings) Get(key string) string {
	return s.values[key]
}

func (s *fakeSettings) Set(key, value string) error {
	if s.err != nil {
		return s.err
	}
	if s.values[key] == value {
		return nil
	}
	s.values[key] = value
	for _, sub := range s.subs {
		if sub.key == key {
			sub.fn(value)
		}
	}
	return nil
}

func (s *fakeSettings) Subscribe(key string, fn func(string)) string {
	s.seq++
	token := strconv.Itoa(s.seq)
	s.subs[token] = fakeSubscription{key: key, fn: fn}
	return token
}

func (s *fakeSettings) Unsubscribe(token string) {
	delete(s.subs, token)
}

// makeSeries returns n samples one second apart starting at start, each
// carrying values.
func makeSeries(n int, start float64, values map[MetricKey]float64) []Sample {
	series := make([]Sample, n)
	for i := range series {
		series[i] = Sample{Timestamp: start + float64(i), Values: values}
	}
	return series
}

func metricsOf(keys ...MetricKey) []Metric {
	metrics := make([]Metric, len(keys))
	for i, k := range keys {
		metrics[i] = Metric{Key: k}
	}
	return metrics
}

package tui

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/series"
	"codeberg.org/mutker/stackchart/internal/settings"
	"codeberg.org/mutker/stackchart/internal/timewindow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingTimer struct {
	fn      func()
	stopped bool
}

func (t *pendingTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// queueScheduler runs timers only when fire is called.
type queueScheduler struct {
	timers []*pendingTimer
}

func (s *queueScheduler) AfterFunc(_ time.Duration, fn func()) chart.Timer {
	t := &pendingTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *queueScheduler) fire() {
	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

const lastTimestamp = 1_700_000_000

type fixture struct {
	model    *Model
	sched    *queueScheduler
	settings *settings.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := settings.Open(context.Background(), settings.DefaultConfig(), logger.Default())
	require.NoError(t, err)

	sched := &queueScheduler{}
	m, err := newModel(Options{
		Metrics:  chart.AssignColors([]chart.Metric{{Key: "a"}, {Key: "b", Label: "beta"}}),
		Settings: store,
		Location: time.UTC,
	}, sched)
	require.NoError(t, err)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

	return &fixture{model: m, sched: sched, settings: store}
}

func (f *fixture) push(n int) {
	samples := make([]chart.Sample, n)
	for i := range samples {
		samples[i] = chart.Sample{
			Timestamp: float64(lastTimestamp - n + 1 + i),
			Values:    map[chart.MetricKey]float64{"a": 1, "b": 2},
		}
	}

	f.model.Update(snapshotMsg{snap: series.Snapshot{Samples: samples, TimeEnd: lastTimestamp}})
}

// view renders the model without escape sequences.
func (f *fixture) view() string {
	return ansi.Strip(f.model.View())
}

func (f *fixture) key(k tea.KeyMsg) {
	f.model.Update(k)
}

func (f *fixture) mouse(col, row int, action tea.MouseAction) {
	f.model.Update(tea.MouseMsg{X: col, Y: row, Action: action, Button: tea.MouseButtonLeft})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func legendSegment(t *testing.T, m *Model, key chart.MetricKey) segment {
	t.Helper()

	for _, seg := range m.legendSegments() {
		if seg.metric == key {
			return seg
		}
	}
	t.Fatalf("no legend entry for %s", key)

	return segment{}
}

func TestViewEmpty(t *testing.T) {
	f := newFixture(t)

	view := f.view()
	assert.Contains(t, view, "No data for the last 5m")
	assert.Contains(t, view, "[5m]")
	assert.Contains(t, view, "● a")
	assert.Contains(t, view, "● beta")
}

func TestViewTooSmall(t *testing.T) {
	f := newFixture(t)
	f.model.Update(tea.WindowSizeMsg{Width: 20, Height: 5})

	assert.Equal(t, "Terminal too small", f.view())
}

func TestViewLive(t *testing.T) {
	f := newFixture(t)
	f.push(300)

	frame := f.model.frame
	require.False(t, frame.Empty)
	assert.Equal(t, float64(4), frame.YMax)

	view := f.view()
	assert.Contains(t, view, "live")
	assert.Contains(t, view, "█")
	assert.Contains(t, view, "┄")
	require.NotEmpty(t, frame.Ticks)
	assert.Contains(t, view, frame.Ticks[len(frame.Ticks)-1].Label)
}

func TestSelectWindowKey(t *testing.T) {
	f := newFixture(t)
	f.push(300)

	f.key(runeKey('1'))

	assert.Equal(t, "1m", f.settings.Get(chart.KeyTimeWindow))
	assert.Equal(t, timewindow.OneMinute, f.model.frame.Window)
	assert.Contains(t, f.view(), "[1m]")
}

func TestSelectWindowClick(t *testing.T) {
	f := newFixture(t)

	for _, seg := range f.model.headerSegments() {
		if seg.kind == segmentWindow && seg.window == timewindow.FifteenMinutes {
			f.mouse(seg.x, headerRow, tea.MouseActionPress)
		}
	}

	assert.Equal(t, "15m", f.settings.Get(chart.KeyTimeWindow))
}

func TestStepKeys(t *testing.T) {
	f := newFixture(t)
	f.push(300)
	f.key(runeKey('1'))

	f.key(tea.KeyMsg{Type: tea.KeyLeft})
	require.NotNil(t, f.model.frame.Pin)
	assert.Contains(t, f.view(), "paused")

	f.key(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Nil(t, f.model.frame.Pin)

	f.key(tea.KeyMsg{Type: tea.KeyHome})
	require.NotNil(t, f.model.frame.Pin)
	assert.Equal(t, 0, f.model.frame.Pin.Start)
}

func TestLegendToggleAndHover(t *testing.T) {
	f := newFixture(t)
	f.push(60)

	b := legendSegment(t, f.model, "b")
	f.mouse(b.x, legendRow, tea.MouseActionPress)
	assert.True(t, f.model.engine.State().Disabled["b"])

	a := legendSegment(t, f.model, "a")
	f.mouse(a.x+1, legendRow, tea.MouseActionMotion)
	f.sched.fire()
	assert.Equal(t, chart.MetricKey("a"), f.model.engine.State().Highlighted)

	f.mouse(0, plotTop+1, tea.MouseActionMotion)
	f.sched.fire()
	assert.Equal(t, chart.MetricKey(""), f.model.engine.State().Highlighted)
}

func TestCursorTooltip(t *testing.T) {
	f := newFixture(t)
	f.push(300)

	f.mouse(50, plotTop+3, tea.MouseActionMotion)
	f.sched.fire()

	tip := f.model.frame.Tooltip
	require.NotNil(t, tip)
	view := f.view()
	assert.Contains(t, view, tip.TimeLabel)
	assert.Contains(t, view, "beta 2")

	f.mouse(2, plotTop+3, tea.MouseActionMotion)
	assert.Nil(t, f.model.frame.Tooltip, "leaving the plot hides the cursor")
}

func TestDrag(t *testing.T) {
	f := newFixture(t)
	f.push(300)
	f.key(runeKey('1'))

	live := f.model.frame.Live
	require.True(t, f.model.frame.PanAllowed)

	f.mouse(50, plotTop+3, tea.MouseActionPress)
	require.True(t, f.model.engine.Dragging())
	assert.Contains(t, f.view(), "dragging")

	// 10 columns are 100 pixels, 5 samples in the one minute window.
	f.mouse(60, plotTop+3, tea.MouseActionMotion)
	f.mouse(60, plotTop+3, tea.MouseActionRelease)

	assert.False(t, f.model.engine.Dragging())
	require.NotNil(t, f.model.frame.Pin)
	assert.Equal(t, live.End-5, f.model.frame.Pin.End)
	assert.Equal(t, live.Start-5, f.model.frame.Pin.Start)
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	failure := errors.New().New(errors.ErrInternal)

	_, cmd := f.model.Update(stopMsg{err: failure})

	require.NotNil(t, cmd)
	assert.Equal(t, failure, f.model.err)
}

func TestQuitKey(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestYAt(t *testing.T) {
	line := []chart.Point{{X: 10, Y: 100}, {X: 20, Y: 50}}

	y, ok := yAt(line, 15)
	require.True(t, ok)
	assert.InDelta(t, 75, y, 1e-9)

	_, ok = yAt(line, 25)
	assert.False(t, ok)

	y, ok = yAt([]chart.Point{{X: 10, Y: 40}}, 12)
	require.True(t, ok)
	assert.Equal(t, float64(40), y)
}

// Package tui is the interactive terminal front end of the chart engine.
package tui

import (
	"context"
	"io"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/series"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Metrics  []chart.Metric
	Settings chart.Settings
	Location *time.Location
	Title    string
	Logger   logger.Logger

	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer
}

// App runs the terminal UI. Push and Stop may be called from any goroutine.
type App struct {
	program *tea.Program
	model   *Model
}

// New prepares the UI. The program stops when ctx is cancelled.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{}

	sched := chart.NewLoopScheduler(func(fn func()) {
		a.program.Send(timerMsg{fn: fn})
	})

	m, err := newModel(opts, sched)
	if err != nil {
		return nil, err
	}
	a.model = m

	progOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	a.program = tea.NewProgram(m, progOpts...)

	return a, nil
}

// Push hands a new buffer snapshot to the chart. It blocks until the UI
// loop accepts it or the program has exited.
func (a *App) Push(snap series.Snapshot) {
	a.program.Send(snapshotMsg{snap: snap})
}

// Stop ends the program. A non-nil err is returned by Run.
func (a *App) Stop(err error) {
	a.program.Send(stopMsg{err: err})
}

// Run blocks until the user quits, Stop is called or the context is
// cancelled.
func (a *App) Run() error {
	defer a.model.engine.Close()

	if _, err := a.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.New().Wrap(ErrProgram, err)
	}

	return a.model.err
}

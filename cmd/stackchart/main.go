package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/config"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/gpu"
	"codeberg.org/mutker/stackchart/internal/history"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/pid"
	"codeberg.org/mutker/stackchart/internal/sampler"
	"codeberg.org/mutker/stackchart/internal/series"
	"codeberg.org/mutker/stackchart/internal/settings"
	"codeberg.org/mutker/stackchart/internal/snapshot"
	"codeberg.org/mutker/stackchart/internal/tui"
)

const logFileName = "stackchart.log"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	closer, err := logger.Init(logger.Options{
		Level:     cfg.LogLevel.String(),
		File:      logFile(cfg),
		IsService: logger.IsService(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Debug().Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("Exiting with error")
		} else {
			logger.Error().Err(err).Msg("Exiting with error")
		}
		closer.Close()
		os.Exit(1)
	}

	logger.Info().Msg("Exiting...")
}

// logFile keeps log output off the screen while the terminal UI runs.
func logFile(cfg *config.Config) string {
	if cfg.LogFile != "" || cfg.Snapshot != "" {
		return cfg.LogFile
	}
	if cfg.SettingsDB != "" {
		return filepath.Join(filepath.Dir(cfg.SettingsDB), logFileName)
	}

	return filepath.Join(os.TempDir(), logFileName)
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Default()

	lock, err := pid.Acquire(cfg.PIDFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	store, err := settings.Open(ctx, settings.Config{
		DBPath: cfg.SettingsDB,
		Defaults: map[string]string{
			chart.KeyTimeWindow:     cfg.TimeWindow,
			chart.KeyUpdatingPeriod: strconv.Itoa(cfg.UpdatePeriod),
		},
	}, log)
	if err != nil {
		return err
	}
	defer closeWithLog(store, "settings")

	recorder, err := history.NewService(history.Config{
		DBPath:       cfg.HistoryDB,
		Enabled:      cfg.History,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Retention:    cfg.Retention,
	}, log)
	if err != nil {
		return err
	}
	defer closeWithLog(recorder, "history")

	src, err := newSource(cfg, log)
	if err != nil {
		return err
	}
	defer closeWithLog(src, "source")

	buf, err := series.New(cfg.MaxSamples)
	if err != nil {
		return err
	}
	warmStart(ctx, recorder, buf, log)

	metrics := chart.AssignColors(src.Metrics())

	if cfg.Snapshot != "" {
		return writeSnapshot(ctx, cfg, src, buf, store, recorder, metrics)
	}

	return runUI(ctx, cfg, src, buf, store, recorder, metrics)
}

func newSource(cfg *config.Config, log logger.Logger) (sampler.Source, error) {
	if cfg.Source == config.SourceNVML {
		return gpu.New(gpu.Reading(cfg.GPUMetric), log)
	}

	return sampler.NewSynthetic(cfg.Metrics, cfg.Seed), nil
}

// warmStart refills the buffer with the newest recorded samples.
func warmStart(ctx context.Context, recorder history.Recorder, buf *series.Buffer, log logger.Logger) {
	samples, err := recorder.Load(ctx, buf.Max())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load sample history")
		return
	}

	for _, s := range samples {
		if err := buf.Append(s); err != nil {
			log.Debug().Err(err).Float64("timestamp", s.Timestamp).Msg("Skipped recorded sample")
		}
	}

	if len(samples) > 0 {
		log.Info().Int("samples", buf.Len()).Msg("Restored sample history")
	}
}

func runUI(
	ctx context.Context, cfg *config.Config, src sampler.Source, buf *series.Buffer,
	store *settings.Store, recorder history.Recorder, metrics []chart.Metric,
) error {
	log := logger.Default()

	app, err := tui.New(ctx, tui.Options{
		Metrics:  metrics,
		Settings: store,
		Location: cfg.Location(),
		Title:    "stackchart " + string(cfg.Source),
		Logger:   log,
	})
	if err != nil {
		return err
	}

	s, err := sampler.New(src, buf,
		sampler.WithRecorder(recorder),
		sampler.WithPeriod(store),
		sampler.WithListener(app.Push),
		sampler.WithLogger(log),
	)
	if err != nil {
		return err
	}

	samplerCtx, stopSampler := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if snap := buf.Snapshot(); len(snap.Samples) > 0 {
			app.Push(snap)
		}
		if err := s.Run(samplerCtx); err != nil {
			app.Stop(err)
		}
	}()

	err = app.Run()
	stopSampler()
	<-done

	return err
}

func writeSnapshot(
	ctx context.Context, cfg *config.Config, src sampler.Source, buf *series.Buffer,
	store *settings.Store, recorder history.Recorder, metrics []chart.Metric,
) error {
	log := logger.Default()

	s, err := sampler.New(src, buf, sampler.WithRecorder(recorder), sampler.WithLogger(log))
	if err != nil {
		return err
	}
	if err := s.Sample(ctx); err != nil {
		return err
	}

	dims := chart.DefaultDimensions()
	dims.Width = float64(cfg.ChartWidth)
	dims.Height = float64(cfg.ChartHeight)

	engine, err := chart.NewEngine(chart.Options{
		Metrics:   metrics,
		Settings:  store,
		Scheduler: chart.NewLoopScheduler(func(fn func()) { fn() }),
		Layout:    chart.Layout{Dimensions: dims, Location: cfg.Location()},
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	snap := buf.Snapshot()
	engine.PushData(snap.Samples, snap.TimeEnd, snap.AtCapacity)

	if err := snapshot.WriteFile(cfg.Snapshot, engine.Model(), snapshot.Options{
		Title:  "stackchart " + engine.Model().Window.String(),
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
	}); err != nil {
		return err
	}

	log.Info().
		Str("path", cfg.Snapshot).
		Int("samples", len(snap.Samples)).
		Msg("Snapshot written")

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func closeWithLog(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Str("component", name).Msg("Failed to close")
	}
}

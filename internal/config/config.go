// Package config loads settings from defaults, a TOML file, STACKCHART_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/timewindow"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = LogLevelInfo
	defaultEnvPrefix = "STACKCHART"
	configName       = "stackchart"

	minChartWidth  = 200
	minChartHeight = 120
)

// ErrHelp is returned by Load when the help flag was given. Usage has
// already been printed.
var ErrHelp = pflag.ErrHelp

type Config struct {
	LogLevel     LogLevel      `mapstructure:"log_level"`
	LogFile      string        `mapstructure:"log_file"`
	Source       Source        `mapstructure:"source"`
	GPUMetric    string        `mapstructure:"gpu_metric"`
	Metrics      []string      `mapstructure:"metrics"`
	Seed         int64         `mapstructure:"seed"`
	MaxSamples   int           `mapstructure:"max_samples"`
	UpdatePeriod int           `mapstructure:"update_period"`
	TimeWindow   string        `mapstructure:"time_window"`
	SettingsDB   string        `mapstructure:"settings_db"`
	History      bool          `mapstructure:"history"`
	HistoryDB    string        `mapstructure:"history_db"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	Retention    time.Duration `mapstructure:"retention"`
	Snapshot     string        `mapstructure:"snapshot"`
	ChartWidth   int           `mapstructure:"chart_width"`
	ChartHeight  int           `mapstructure:"chart_height"`
	Timezone     string        `mapstructure:"timezone"`
	PIDFile      string        `mapstructure:"pid_file"`

	location *time.Location
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"log-file":      "log_file",
	"source":        "source",
	"gpu-metric":    "gpu_metric",
	"metrics":       "metrics",
	"seed":          "seed",
	"max-samples":   "max_samples",
	"update-period": "update_period",
	"time-window":   "time_window",
	"settings-db":   "settings_db",
	"history":       "history",
	"history-db":    "history_db",
	"snapshot":      "snapshot",
	"width":         "chart_width",
	"height":        "chart_height",
	"timezone":      "timezone",
	"pid-file":      "pid_file",
}

func setDefaults(v *viper.Viper) {
	stateDir := defaultStateDir()

	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("log_file", "")
	v.SetDefault("source", string(SourceSynthetic))
	v.SetDefault("gpu_metric", "power")
	v.SetDefault("metrics", []string{"system", "user", "iowait"})
	v.SetDefault("seed", 1)
	v.SetDefault("max_samples", 1800)
	v.SetDefault("update_period", 1000)
	v.SetDefault("time_window", timewindow.Default.String())
	v.SetDefault("settings_db", joinIfSet(stateDir, "settings.db"))
	v.SetDefault("history", false)
	v.SetDefault("history_db", joinIfSet(stateDir, "history.db"))
	v.SetDefault("batch_size", 30)
	v.SetDefault("batch_timeout", "10s")
	v.SetDefault("retention", "24h")
	v.SetDefault("snapshot", "")
	v.SetDefault("chart_width", 1150)
	v.SetDefault("chart_height", 250)
	v.SetDefault("timezone", "")
	v.SetDefault("pid_file", filepath.Join(os.TempDir(), "stackchart.pid"))
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	if o.output != nil {
		fs.SetOutput(o.output)
	}

	fs.String("config", "", "Path to a TOML configuration file")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.String("log-file", "", "Write logs to this file instead of stdout")
	fs.String("source", string(SourceSynthetic), "Data source (synthetic, nvml)")
	fs.String("gpu-metric", "power", "GPU reading to chart (power, utilization)")
	fs.StringSlice("metrics", nil, "Synthetic metric names, in stacking order")
	fs.Int64("seed", 1, "Seed of the synthetic source")
	fs.Int("max-samples", 1800, "Number of samples kept in memory")
	fs.Int("update-period", 1000, "Initial sampling interval in milliseconds")
	fs.String("time-window", timewindow.Default.String(), "Initial time window (1m, 5m, 15m)")
	fs.String("settings-db", "", "Settings database path, empty keeps settings in memory")
	fs.Bool("history", false, "Persist samples and warm-start from them")
	fs.String("history-db", "", "Sample history database path")
	fs.String("snapshot", "", "Write one PNG chart to this path and exit")
	fs.Int("width", 1150, "Chart width in pixels")
	fs.Int("height", 250, "Chart height in pixels")
	fs.String("timezone", "", "Time zone of axis labels, empty for local time")
	fs.String("pid-file", "", "PID file path")

	return fs
}

// Load reads the configuration. args are the command line arguments
// without the program name.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	fs := newFlagSet(o)
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	if err := readConfigFile(v, fs, o); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet, o *options) error {
	path := o.configPath
	if flagPath, _ := fs.GetString("config"); flagPath != "" {
		path = flagPath
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.New().Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks every value and resolves the time zone.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if !c.Source.IsValid() {
		return errFactory.WithData(errors.ErrInvalidSource, c.Source)
	}
	if c.Source == SourceNVML && c.GPUMetric != "power" && c.GPUMetric != "utilization" {
		return errFactory.WithData(errors.ErrInvalidConfig, "gpu_metric: "+c.GPUMetric)
	}
	if c.Source == SourceSynthetic && len(c.Metrics) == 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics: at least one metric is required")
	}
	if c.UpdatePeriod <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.UpdatePeriod)
	}
	if c.MaxSamples <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "max_samples must be positive")
	}
	window, ok := timewindow.Lookup(c.TimeWindow)
	if !ok {
		return errFactory.WithData(errors.ErrInvalidConfig, "time_window: "+c.TimeWindow)
	}
	if c.History && c.HistoryDB == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "history_db is required when history is enabled")
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 || c.Retention < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "history batching and retention must not be negative")
	}
	if c.Retention > 0 && c.Retention < window.Duration() {
		return errFactory.WithData(errors.ErrInvalidConfig, "retention is shorter than time_window")
	}
	if c.ChartWidth < minChartWidth || c.ChartHeight < minChartHeight {
		return errFactory.WithData(errors.ErrInvalidConfig, "chart is too small")
	}

	c.location = time.Local
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
		c.location = loc
	}

	return nil
}

// Location returns the time zone of axis labels.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}

	return c.location
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, configName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", configName)
	}

	return ""
}

func joinIfSet(dir, name string) string {
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, name)
}

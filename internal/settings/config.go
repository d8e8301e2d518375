package settings

import (
	"strconv"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/timewindow"
)

type Config struct {
	DBPath string
	// Defaults are used for keys that were never stored.
	Defaults map[string]string
}

func DefaultConfig() Config {
	return Config{
		Defaults: DefaultValues(),
	}
}

// DefaultValues returns the stock values of the chart settings.
func DefaultValues() map[string]string {
	return map[string]string{
		chart.KeyTimeWindow:     timewindow.Default.String(),
		chart.KeyUpdatingPeriod: strconv.Itoa(chart.DefaultUpdatingPeriod),
	}
}

func (c Config) Validate() error {
	for key := range c.Defaults {
		if key == "" {
			return errors.New().WithMessage(ErrInvalidConfig, "empty settings key")
		}
	}

	return nil
}

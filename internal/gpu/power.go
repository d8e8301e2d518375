package gpu

import (
	"codeberg.org/mutker/stackchart/internal/errors"
)

const milliWattsToWatts = 1000

// readPower returns the board power draw in watts.
func readPower(d device) (float64, error) {
	usage, ret := d.GetPowerUsage()
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrPowerUsageFailed, newNVMLError(ret))
	}

	return float64(usage) / milliWattsToWatts, nil
}

// readUtilization returns the GPU utilization in percent.
func readUtilization(d device) (float64, error) {
	rates, ret := d.GetUtilizationRates()
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrUtilizationFailed, newNVMLError(ret))
	}

	return float64(rates.Gpu), nil
}

func readerFor(r Reading) (func(device) (float64, error), bool) {
	switch r {
	case ReadingPower:
		return readPower, true
	case ReadingUtilization:
		return readUtilization, true
	default:
		return nil, false
	}
}

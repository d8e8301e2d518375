package gpu

import "github.com/NVIDIA/go-nvml/pkg/nvml"

// Reading selects what a device contributes to the chart.
type Reading string

const (
	// ReadingPower is the board power draw in watts.
	ReadingPower Reading = "power"
	// ReadingUtilization is the GPU utilization in percent.
	ReadingUtilization Reading = "utilization"
)

// device is the part of nvml.Device the source reads.
type device interface {
	GetName() (string, nvml.Return)
	GetPowerUsage() (uint32, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
}

// nvmlController abstracts NVML library operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	GetDevice(index int) (device, error)
}

// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlBackend wraps the NVIDIA Management Library binding directly (no
// nvidia-smi subprocess). Init is attempted lazily on the first Snapshot
// and the library is left initialized for the process lifetime; Monitor
// disables the backend entirely if that first attempt fails.
type nvmlBackend struct {
	mu          sync.Mutex
	initialized bool
	initFailed  bool
}

func newNVMLBackend() *nvmlBackend {
	return &nvmlBackend{}
}

func (b *nvmlBackend) Name() string { return "nvml" }

func (b *nvmlBackend) Snapshot(ctx context.Context) ([]Device, error) {
	b.mu.Lock()
	if b.initFailed {
		b.mu.Unlock()
		return nil, ErrBackendUnavailable
	}
	if !b.initialized {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			b.initFailed = true
			b.mu.Unlock()
			return nil, fmt.Errorf("%w: nvmlInit: %v", ErrBackendUnavailable, nvml.ErrorString(ret))
		}
		b.initialized = true
	}
	b.mu.Unlock()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("%w: nvmlDeviceGetCount: %v", ErrBackendUnavailable, nvml.ErrorString(ret))
	}

	var devices []Device
	for i := 0; i < count; i++ {
		handle, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		devices = append(devices, b.readDevice(handle))
	}
	return devices, nil
}

func (b *nvmlBackend) readDevice(handle nvml.Device) Device {
	d := Device{Backend: b.Name(), Vendor: "NVIDIA"}

	if name, ret := handle.GetName(); ret == nvml.SUCCESS {
		d.Name = name
	}
	if pci, ret := handle.GetPciInfo(); ret == nvml.SUCCESS {
		d.PciBDF = pciInfoBDF(pci)
	}
	if temp, ret := handle.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		d.TempC = float64(temp)
		d.TempOK = true
	}
	if speed, ret := handle.GetFanSpeed(); ret == nvml.SUCCESS {
		d.FanPercent = int(speed)
		d.FanOK = true
	}
	if milliwatts, ret := handle.GetPowerUsage(); ret == nvml.SUCCESS {
		d.PowerW = float64(milliwatts) / 1000.0
		d.PowerOK = true
	}
	return d
}

func pciInfoBDF(pci nvml.PciInfo) string {
	return fmt.Sprintf("%04x:%02x:%02x.0", pci.Domain, pci.Bus, pci.Device)
}

// Close releases the NVML library handle if it was ever initialized.
func (b *nvmlBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil
	}
	b.initialized = false
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("nvmlShutdown: %v", nvml.ErrorString(ret))
	}
	return nil
}

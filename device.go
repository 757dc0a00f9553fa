package vsgbridge

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vsgbridge/pipeline"
)

// ErrNoHALDevice is returned when a device provider does not expose a HAL
// device.
var ErrNoHALDevice = errors.New("vsgbridge: provider does not expose a HAL device")

// deviceHandle is the device a session builds on and how to give it back.
type deviceHandle struct {
	device pipeline.Device
	close  func()
}

// openDevice resolves the session device: an explicit device first, then
// a provider, then a private headless device on the noop backend.
func (o *options) openDevice() (deviceHandle, error) {
	if o.device != nil {
		return deviceHandle{device: o.device, close: func() {}}, nil
	}
	if o.provider != nil {
		dev, err := providerDevice(o.provider)
		if err != nil {
			return deviceHandle{}, err
		}
		if o.colorFormat == gputypes.TextureFormatUndefined {
			o.colorFormat = o.provider.SurfaceFormat()
		}
		return deviceHandle{device: dev, close: func() {}}, nil
	}
	return openNoopDevice()
}

// providerDevice extracts a HAL device from a host provider.
func providerDevice(p gpucontext.DeviceProvider) (pipeline.Device, error) {
	type halProvider interface {
		HalDevice() any
	}
	if hp, ok := p.(halProvider); ok {
		if dev, ok := hp.HalDevice().(hal.Device); ok && dev != nil {
			return dev, nil
		}
	}
	if dev, ok := p.Device().(pipeline.Device); ok && dev != nil {
		return dev, nil
	}
	return nil, ErrNoHALDevice
}

// openNoopDevice opens a private headless device.
func openNoopDevice() (deviceHandle, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return deviceHandle{}, fmt.Errorf("vsgbridge: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return deviceHandle{}, errors.New("vsgbridge: no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return deviceHandle{}, fmt.Errorf("vsgbridge: open device: %w", err)
	}
	return deviceHandle{
		device: open.Device,
		close: func() {
			open.Device.Destroy()
			instance.Destroy()
		},
	}, nil
}

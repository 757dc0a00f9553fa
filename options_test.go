package vsgbridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vsgbridge/serial"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vsgbridge.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
push_constant_size = 196
structural_policy = "permissive"
output_format = "text"
log_cache_stats = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		PushConstantSize: 196,
		StructuralPolicy: StructuralPermissive,
		OutputFormat:     serial.FormatText,
		LogCacheStats:    true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown policy", `structural_policy = "lenient"`},
		{"unknown format", `output_format = "xml"`},
		{"bad syntax", `push_constant_size = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("want error")
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file = %v", err)
	}
}

func TestStructuralPolicyText(t *testing.T) {
	for _, p := range []StructuralPolicy{StructuralStrict, StructuralPermissive} {
		b, err := p.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got StructuralPolicy
		if err := got.UnmarshalText(b); err != nil || got != p {
			t.Errorf("%v round trip = %v, %v", p, got, err)
		}
	}
}

func TestOptions(t *testing.T) {
	o := buildOptions([]Option{
		WithConfig(Config{PushConstantSize: 64, LogCacheStats: true}),
		WithPushConstantSize(196),
		WithStructuralPolicy(StructuralPermissive),
		WithOutputFormat(serial.FormatBinary),
		WithColorFormat(gputypes.TextureFormatBGRA8Unorm),
		WithDepthFormat(gputypes.TextureFormatDepth32Float),
	})
	want := Config{
		PushConstantSize: 196,
		StructuralPolicy: StructuralPermissive,
		OutputFormat:     serial.FormatBinary,
		LogCacheStats:    true,
	}
	if diff := cmp.Diff(want, o.config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	pc := o.pipelineConfig()
	if pc.PushConstantSize != 196 || pc.ColorFormat != gputypes.TextureFormatBGRA8Unorm || pc.DepthFormat != gputypes.TextureFormatDepth32Float {
		t.Errorf("pipeline config = %+v", pc)
	}
}

// halProvider is a host application exposing a HAL device.
type halProvider struct {
	gpucontext.DeviceProvider
	dev    hal.Device
	format gputypes.TextureFormat
}

func (p *halProvider) HalDevice() any                        { return p.dev }
func (p *halProvider) Device() gpucontext.Device             { return nil }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

func TestOpenDevice(t *testing.T) {
	t.Run("noop", func(t *testing.T) {
		o := buildOptions(nil)
		d, err := o.openDevice()
		if err != nil {
			t.Fatal(err)
		}
		if d.device == nil {
			t.Fatal("no device")
		}
		d.close()
	})

	t.Run("provider", func(t *testing.T) {
		own, err := openNoopDevice()
		if err != nil {
			t.Fatal(err)
		}
		defer own.close()

		p := &halProvider{dev: own.device.(hal.Device), format: gputypes.TextureFormatBGRA8Unorm}
		o := buildOptions([]Option{WithDeviceProvider(p)})
		d, err := o.openDevice()
		if err != nil {
			t.Fatal(err)
		}
		d.close()
		if d.device != own.device {
			t.Error("provider device not used")
		}
		if o.colorFormat != gputypes.TextureFormatBGRA8Unorm {
			t.Errorf("color format = %v, want surface format", o.colorFormat)
		}
	})

	t.Run("provider without device", func(t *testing.T) {
		o := buildOptions([]Option{WithDeviceProvider(&halProvider{})})
		if _, err := o.openDevice(); !errors.Is(err, ErrNoHALDevice) {
			t.Errorf("err = %v, want ErrNoHALDevice", err)
		}
	})
}

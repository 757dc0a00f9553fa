package vsgbridge

import (
	"fmt"
	"os"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/preview"
	"github.com/gogpu/vsgbridge/serial"
)

// StructuralPolicy decides what an add operation does when the stack head
// cannot accept the new node.
type StructuralPolicy uint8

const (
	// StructuralStrict rejects the operation and leaves the stack as it was.
	StructuralStrict StructuralPolicy = iota

	// StructuralPermissive logs a warning and pushes the node detached, so
	// call sequences written against a tolerant host keep working. Detached
	// subtrees are listed in ExportResult.Detached.
	StructuralPermissive
)

func (p StructuralPolicy) String() string {
	if p == StructuralPermissive {
		return "permissive"
	}
	return "strict"
}

// MarshalText implements encoding.TextMarshaler.
func (p StructuralPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *StructuralPolicy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "strict", "":
		*p = StructuralStrict
	case "permissive":
		*p = StructuralPermissive
	default:
		return fmt.Errorf("vsgbridge: unknown structural policy %q", b)
	}
	return nil
}

// Config holds the exporter settings that can live in a settings file.
type Config struct {
	// PushConstantSize is the vertex-stage push constant budget in bytes.
	// Zero selects pipeline.DefaultPushConstantSize.
	PushConstantSize uint32 `toml:"push_constant_size"`

	StructuralPolicy StructuralPolicy `toml:"structural_policy"`

	// OutputFormat overrides the format chosen from the file extension.
	OutputFormat serial.Format `toml:"output_format"`

	// LogCacheStats logs the statistics of every session cache at
	// EndExport.
	LogCacheStats bool `toml:"log_cache_stats"`
}

// LoadConfig reads a TOML settings file.
//
// Example file:
//
//	push_constant_size = 196
//	structural_policy = "permissive"
//	output_format = "text"
//	log_cache_stats = true
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("vsgbridge: load config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("vsgbridge: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Option configures an Exporter or a Session.
//
// Example:
//
//	// Headless export with the default noop device
//	s := vsgbridge.NewSession()
//
//	// Export on a device shared with the host application
//	s := vsgbridge.NewSession(vsgbridge.WithDeviceProvider(app))
type Option func(*options)

// options holds the resolved configuration.
type options struct {
	config      Config
	device      pipeline.Device
	provider    gpucontext.DeviceProvider
	compiler    pipeline.Compiler
	colorFormat gputypes.TextureFormat
	depthFormat gputypes.TextureFormat
	presenter   preview.Presenter
	window      gpucontext.WindowProvider
}

func defaultOptions() options {
	return options{}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// pipelineConfig returns the assembler configuration.
func (o *options) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		PushConstantSize: o.config.PushConstantSize,
		ColorFormat:      o.colorFormat,
		DepthFormat:      o.depthFormat,
	}
}

// WithConfig replaces every file-backed setting at once, typically with
// the result of LoadConfig.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithPushConstantSize sets the vertex-stage push constant budget.
// Renderers that push a third matrix per draw use 196.
func WithPushConstantSize(n uint32) Option {
	return func(o *options) {
		o.config.PushConstantSize = n
	}
}

// WithStructuralPolicy selects strict or permissive handling of
// incompatible stack heads.
func WithStructuralPolicy(p StructuralPolicy) Option {
	return func(o *options) {
		o.config.StructuralPolicy = p
	}
}

// WithOutputFormat forces the serialized format regardless of the file
// extension.
func WithOutputFormat(f serial.Format) Option {
	return func(o *options) {
		o.config.OutputFormat = f
	}
}

// WithCacheStatsLogging logs cache statistics when a session ends.
func WithCacheStatsLogging(enabled bool) Option {
	return func(o *options) {
		o.config.LogCacheStats = enabled
	}
}

// WithDevice builds pipelines on dev. The caller keeps ownership of dev.
func WithDevice(dev pipeline.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithDeviceProvider builds pipelines on the device of a host application.
// The provider must expose a HAL device through HalDevice() any, or return
// one from Device(). Its surface format becomes the colour target format.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithCompiler replaces the naga WGSL compiler.
func WithCompiler(c pipeline.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithColorFormat sets the colour attachment format of built pipelines.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.colorFormat = f
	}
}

// WithDepthFormat sets the depth attachment format of built pipelines.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.depthFormat = f
	}
}

// WithPresenter sets the presenter LaunchViewer hands frames to. The
// default logs the frame and returns.
func WithPresenter(p preview.Presenter) Option {
	return func(o *options) {
		o.presenter = p
	}
}

// WithWindow sets the window whose size drives the preview aspect ratio.
func WithWindow(w gpucontext.WindowProvider) Option {
	return func(o *options) {
		o.window = w
	}
}

package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vsgbridge/cache"
)

// ErrNilDevice is returned by NewAssembler without a device.
var ErrNilDevice = errors.New("pipeline: nil device")

// Config holds assembler defaults.
type Config struct {
	// PushConstantSize is the vertex-stage push constant range in bytes.
	PushConstantSize uint32
	// ColorFormat is the colour attachment format.
	ColorFormat gputypes.TextureFormat
	// DepthFormat is the depth attachment format.
	DepthFormat gputypes.TextureFormat
}

// DefaultConfig returns the assembler defaults.
func DefaultConfig() Config {
	return Config{
		PushConstantSize: DefaultPushConstantSize,
		ColorFormat:      gputypes.TextureFormatBGRA8Unorm,
		DepthFormat:      gputypes.TextureFormatDepth32Float,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PushConstantSize == 0 {
		c.PushConstantSize = d.PushConstantSize
	}
	if c.ColorFormat == gputypes.TextureFormatUndefined {
		c.ColorFormat = d.ColorFormat
	}
	if c.DepthFormat == gputypes.TextureFormatUndefined {
		c.DepthFormat = d.DepthFormat
	}
	return c
}

// Module is a compiled shader stage.
type Module struct {
	Stage ShaderStage
	SPIRV []uint32
	HAL   hal.ShaderModule
}

// Pipeline is a built graphics pipeline. It is immutable once built and
// owned by the Assembler that built it.
type Pipeline struct {
	ID    string
	State State

	Modules          []*Module
	BindGroupLayouts []hal.BindGroupLayout
	Layout           hal.PipelineLayout
	Render           hal.RenderPipeline
}

// Assembler builds pipelines on a device and owns everything it builds.
// Shader modules are shared between pipelines by stage, defines and
// source.
//
// An Assembler is not safe for concurrent use.
type Assembler struct {
	device   Device
	compiler Compiler
	config   Config

	modules   *cache.Store[string, *Module]
	pipelines []*Pipeline
	compiles  int
}

// NewAssembler creates an assembler. A nil compiler selects NagaCompiler.
func NewAssembler(device Device, compiler Compiler, cfg Config) (*Assembler, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if compiler == nil {
		compiler = NagaCompiler{}
	}
	return &Assembler{
		device:   device,
		compiler: compiler,
		config:   cfg.withDefaults(),
		modules:  cache.New[string, *Module]("shader-modules"),
	}, nil
}

// Config returns the effective assembler configuration.
func (a *Assembler) Config() Config { return a.config }

// Device returns the device pipelines are built on.
func (a *Assembler) Device() Device { return a.device }

// Compiles returns how many shader stages were compiled.
func (a *Assembler) Compiles() int { return a.compiles }

// ModuleStats returns the shader module cache statistics.
func (a *Assembler) ModuleStats() cache.Stats { return a.modules.Stats() }

// Build derives state from traits and builds it. On failure every object
// created for this pipeline is destroyed and nothing is retained.
func (a *Assembler) Build(id string, t Traits) (*Pipeline, error) {
	s, err := DeriveState(t, a.config)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", id, err)
	}
	return a.BuildState(id, s)
}

// BuildState builds GPU objects for an already derived state.
func (a *Assembler) BuildState(id string, s State) (*Pipeline, error) {
	p := &Pipeline{ID: id, State: s}
	ok := false
	defer func() {
		if !ok {
			a.destroy(p)
		}
	}()

	for _, st := range s.Stages {
		m, err := a.module(st)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", id, err)
		}
		p.Modules = append(p.Modules, m)
	}

	for i, l := range s.SetLayouts {
		bgl, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_set%d", id, i),
			Entries: LayoutEntries(l),
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: bind group layout %d: %w", id, i, err)
		}
		p.BindGroupLayouts = append(p.BindGroupLayouts, bgl)
	}

	layout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            id + "_layout",
		BindGroupLayouts: p.BindGroupLayouts,
		PushConstantRanges: []hal.PushConstantRange{{
			Stages: gputypes.ShaderStageVertex,
			Range:  hal.Range{Start: 0, End: s.PushConstantSize},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: layout: %w", id, err)
	}
	p.Layout = layout

	render, err := a.device.CreateRenderPipeline(a.renderDescriptor(p))
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: render pipeline: %w", id, err)
	}
	p.Render = render

	ok = true
	a.pipelines = append(a.pipelines, p)
	slogger().Debug("pipeline: built", "id", id, "stages", len(p.Modules), "sets", len(p.BindGroupLayouts))
	return p, nil
}

func (a *Assembler) renderDescriptor(p *Pipeline) *hal.RenderPipelineDescriptor {
	s := p.State

	buffers := make([]gputypes.VertexBufferLayout, 0, len(s.VertexBindings))
	for _, vb := range s.VertexBindings {
		layout := gputypes.VertexBufferLayout{
			ArrayStride: vb.Stride,
			StepMode:    gputypes.VertexStepModeVertex,
		}
		if vb.Rate == RateInstance {
			layout.StepMode = gputypes.VertexStepModeInstance
		}
		for _, attr := range vb.Attributes {
			vf, _ := attr.Format.VertexFormat()
			layout.Attributes = append(layout.Attributes, gputypes.VertexAttribute{
				Format:         vf,
				Offset:         attr.Offset,
				ShaderLocation: attr.Location,
			})
		}
		buffers = append(buffers, layout)
	}

	primitive := gputypes.DefaultPrimitiveState()
	primitive.Topology = s.Topology
	primitive.CullMode = s.CullMode

	desc := &hal.RenderPipelineDescriptor{
		Label:     p.ID,
		Layout:    p.Layout,
		Primitive: primitive,
		DepthStencil: &hal.DepthStencilState{
			Format:            s.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	}
	if s.DepthDisabled {
		desc.DepthStencil.DepthWriteEnabled = false
		desc.DepthStencil.DepthCompare = gputypes.CompareFunctionAlways
	}

	for i, st := range s.Stages {
		m := p.Modules[i]
		switch st.Stage {
		case gputypes.ShaderStageVertex:
			desc.Vertex = hal.VertexState{
				Module:     m.HAL,
				EntryPoint: st.EntryPoint,
				Buffers:    buffers,
			}
		case gputypes.ShaderStageFragment:
			targets := make([]gputypes.ColorTargetState, len(s.Blend))
			for j := range s.Blend {
				blend := s.Blend[j]
				targets[j] = gputypes.ColorTargetState{
					Format:    s.ColorFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				}
			}
			desc.Fragment = &hal.FragmentState{
				Module:     m.HAL,
				EntryPoint: st.EntryPoint,
				Targets:    targets,
			}
		}
	}
	return desc
}

// module compiles a stage once per key.
func (a *Assembler) module(st ShaderStage) (*Module, error) {
	key := moduleKey(st)
	m, hit, err := a.modules.GetOrBuild(key, func() (*Module, error) {
		words, err := a.compiler.Compile(st)
		a.compiles++
		if err != nil {
			if !errors.Is(err, ErrCompile) {
				err = fmt.Errorf("%w: %s: %w", ErrCompile, st.Stage, err)
			}
			return nil, err
		}
		sm, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  st.Stage.String() + "_" + st.EntryPoint,
			Source: hal.ShaderSource{SPIRV: words},
		})
		if err != nil {
			return nil, fmt.Errorf("shader module %s: %w", st.Stage, err)
		}
		return &Module{Stage: st, SPIRV: words, HAL: sm}, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		slogger().Debug("pipeline: shader module cache hit", "stage", st.Stage, "entry", st.EntryPoint)
	}
	return m, nil
}

// destroy releases the objects a pipeline owns. Shared shader modules are
// released by Release.
func (a *Assembler) destroy(p *Pipeline) {
	if p.Render != nil {
		a.device.DestroyRenderPipeline(p.Render)
		p.Render = nil
	}
	if p.Layout != nil {
		a.device.DestroyPipelineLayout(p.Layout)
		p.Layout = nil
	}
	for _, l := range p.BindGroupLayouts {
		if l != nil {
			a.device.DestroyBindGroupLayout(l)
		}
	}
	p.BindGroupLayouts = nil
}

// Release destroys every pipeline and shader module the assembler built.
func (a *Assembler) Release() {
	for _, p := range a.pipelines {
		a.destroy(p)
	}
	a.pipelines = nil
	a.modules.Clear(func(m *Module) {
		if m.HAL != nil {
			a.device.DestroyShaderModule(m.HAL)
		}
	})
}

// LayoutEntries converts a set layout to GPU layout entries. A sampled
// image becomes a texture entry at its binding and a sampler entry at the
// next number.
func LayoutEntries(l SetLayout) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(l.Entries))
	for _, e := range l.Entries {
		switch e.Type {
		case DescriptorSampledImage:
			entries = append(entries,
				gputypes.BindGroupLayoutEntry{
					Binding:    e.Binding,
					Visibility: e.Stages,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: e.ViewDimension,
					},
				},
				gputypes.BindGroupLayoutEntry{
					Binding:    e.Binding + 1,
					Visibility: e.Stages,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				})
		case DescriptorUniformBuffer:
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    e.Binding,
				Visibility: e.Stages,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		case DescriptorStorageBuffer:
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    e.Binding,
				Visibility: e.Stages,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			})
		}
	}
	return entries
}

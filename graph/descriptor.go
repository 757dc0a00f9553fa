package graph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

// Descriptor set errors.
var (
	// ErrNoSetLayout is returned when the pipeline has no layout for the
	// requested set.
	ErrNoSetLayout = errors.New("graph: pipeline has no such descriptor set")

	// ErrUnknownBinding is returned for a descriptor whose binding is not
	// in the set layout.
	ErrUnknownBinding = errors.New("graph: binding not in layout")

	// ErrDescriptorType is returned when a descriptor does not match the
	// type its binding was declared with.
	ErrDescriptorType = errors.New("graph: descriptor type mismatch")
)

// CubeFaces is the layer count of a cube map image.
const CubeFaces = 6

// Descriptor is one bound resource of a descriptor set.
type Descriptor struct {
	Binding uint32
	Type    pipeline.DescriptorType

	// Images and Samplers hold one entry per array element of a sampled
	// image descriptor.
	Images   []*texture.Data
	Samplers []hal.SamplerDescriptor

	// Uniform is the raw value of a buffer descriptor.
	Uniform *extarray.Array
}

// DescriptorSet is a set of descriptors validated against a set layout.
// When built on a device it also owns the GPU objects mirroring it.
type DescriptorSet struct {
	Descriptors []Descriptor
	Layout      pipeline.SetLayout

	group    hal.BindGroup
	textures []hal.Texture
	views    []hal.TextureView
	samplers []hal.Sampler
	buffers  []hal.Buffer
}

// NewDescriptorSet validates descriptors against layout without touching
// a device.
func NewDescriptorSet(layout pipeline.SetLayout, descs []Descriptor) (*DescriptorSet, error) {
	for _, d := range descs {
		e, ok := layout.Entry(d.Binding)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownBinding, d.Binding)
		}
		if e.Type != d.Type {
			return nil, fmt.Errorf("%w: binding %d is %v, got %v", ErrDescriptorType, d.Binding, e.Type, d.Type)
		}
		if d.Type == pipeline.DescriptorSampledImage && len(d.Images) == 0 {
			return nil, fmt.Errorf("%w: binding %d has no images", ErrDescriptorType, d.Binding)
		}
		if e.ViewDimension == gputypes.TextureViewDimensionCube {
			for _, img := range d.Images {
				if img.Depth != CubeFaces {
					return nil, fmt.Errorf("%w: cube binding %d has %d layers, want %d", ErrDescriptorType, d.Binding, img.Depth, CubeFaces)
				}
			}
		}
		if d.Type != pipeline.DescriptorSampledImage && d.Uniform == nil {
			return nil, fmt.Errorf("%w: binding %d has no value", ErrDescriptorType, d.Binding)
		}
	}
	return &DescriptorSet{
		Descriptors: append([]Descriptor(nil), descs...),
		Layout:      layout,
	}, nil
}

// BuildDescriptorSet validates descriptors against set index of p and
// creates the bind group and the textures, samplers and buffers it refers
// to. Pixel and uniform data stay in the leaf arrays; nothing is uploaded.
//
// When a texture format has no GPU equivalent the set is returned without
// GPU objects; Mirrored reports false for it.
func BuildDescriptorSet(dev pipeline.Device, p *pipeline.Pipeline, set int, descs []Descriptor) (*DescriptorSet, error) {
	if set < 0 || set >= len(p.State.SetLayouts) {
		return nil, fmt.Errorf("%w: %d", ErrNoSetLayout, set)
	}
	ds, err := NewDescriptorSet(p.State.SetLayouts[set], descs)
	if err != nil {
		return nil, err
	}
	if set >= len(p.BindGroupLayouts) || !gpuFormats(descs) {
		return ds, nil
	}

	ok := false
	defer func() {
		if !ok {
			ds.Destroy(dev)
		}
	}()

	var entries []gputypes.BindGroupEntry
	for _, d := range ds.Descriptors {
		switch d.Type {
		case pipeline.DescriptorSampledImage:
			view, sampler, err := ds.createImage(dev, d)
			if err != nil {
				return nil, fmt.Errorf("binding %d: %w", d.Binding, err)
			}
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: d.Binding, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
				gputypes.BindGroupEntry{Binding: d.Binding + 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			)
		default:
			buf, size, err := ds.createBuffer(dev, d)
			if err != nil {
				return nil, fmt.Errorf("binding %d: %w", d.Binding, err)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  d.Binding,
				Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Size: size},
			})
		}
	}

	group, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s_set%d", p.ID, set),
		Layout:  p.BindGroupLayouts[set],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group: %w", err)
	}
	ds.group = group
	ok = true
	return ds, nil
}

func gpuFormats(descs []Descriptor) bool {
	for _, d := range descs {
		for _, img := range d.Images {
			if _, ok := img.Format.TextureFormat(); !ok {
				return false
			}
		}
	}
	return true
}

// createImage creates the first array element's texture, view and
// sampler.
func (ds *DescriptorSet) createImage(dev pipeline.Device, d Descriptor) (hal.TextureView, hal.Sampler, error) {
	img := d.Images[0]
	tf, _ := img.Format.TextureFormat()

	dim := gputypes.TextureDimension2D
	viewDim := gputypes.TextureViewDimension2D
	var layers uint32
	if e, _ := ds.Layout.Entry(d.Binding); e.ViewDimension == gputypes.TextureViewDimensionCube {
		viewDim = gputypes.TextureViewDimensionCube
		layers = CubeFaces
	} else if img.Depth > 1 {
		dim = gputypes.TextureDimension3D
		viewDim = gputypes.TextureViewDimension3D
	}
	mips := uint32(max(img.MipCount, 1)) //nolint:gosec // mip count is small

	//nolint:gosec // texture dimensions are validated by texture.CreateData
	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("binding%d_texture", d.Binding),
		Size:          hal.Extent3D{Width: uint32(img.Width), Height: uint32(img.Height), DepthOrArrayLayers: uint32(max(img.Depth, 1))},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     dim,
		Format:        tf,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("texture: %w", err)
	}
	ds.textures = append(ds.textures, tex)

	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("binding%d_view", d.Binding),
		Format:          tf,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   mips,
		ArrayLayerCount: layers,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("texture view: %w", err)
	}
	ds.views = append(ds.views, view)

	desc := hal.SamplerDescriptor{Label: "texture_sampler"}
	if len(d.Samplers) > 0 {
		desc = d.Samplers[0]
	}
	sampler, err := dev.CreateSampler(&desc)
	if err != nil {
		return nil, nil, fmt.Errorf("sampler: %w", err)
	}
	ds.samplers = append(ds.samplers, sampler)
	return view, sampler, nil
}

func (ds *DescriptorSet) createBuffer(dev pipeline.Device, d Descriptor) (hal.Buffer, uint64, error) {
	size := uint64(len(d.Uniform.Bytes()))
	// Uniform buffer bindings are sized in 16-byte units.
	aligned := (size + 15) &^ 15
	if aligned == 0 {
		aligned = 16
	}
	usage := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	if d.Type == pipeline.DescriptorStorageBuffer {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	}
	buf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("binding%d_buffer", d.Binding),
		Size:  aligned,
		Usage: usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("buffer: %w", err)
	}
	ds.buffers = append(ds.buffers, buf)
	return buf, aligned, nil
}

// Mirrored reports whether the set owns a GPU bind group.
func (ds *DescriptorSet) Mirrored() bool { return ds.group != nil }

// BindGroup returns the GPU bind group, or nil.
func (ds *DescriptorSet) BindGroup() hal.BindGroup { return ds.group }

// Destroy releases the GPU objects of the set. Leaf arrays are untouched.
func (ds *DescriptorSet) Destroy(dev pipeline.Device) {
	if ds.group != nil {
		dev.DestroyBindGroup(ds.group)
		ds.group = nil
	}
	for _, v := range ds.views {
		dev.DestroyTextureView(v)
	}
	for _, t := range ds.textures {
		dev.DestroyTexture(t)
	}
	for _, s := range ds.samplers {
		dev.DestroySampler(s)
	}
	for _, b := range ds.buffers {
		dev.DestroyBuffer(b)
	}
	ds.views, ds.textures, ds.samplers, ds.buffers = nil, nil, nil, nil
}

package texture

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maxAnisotropy is the upper bound accepted by GPU samplers.
const maxAnisotropy = 16

// SamplerFor derives the sampler description for an image. Min and mag
// filters follow s.Filter and all three axes use s.Wrap. Anisotropy is
// enabled only above level 1, and images with a mip chain clamp the LOD
// to the chain length.
func SamplerFor(s Spec) hal.SamplerDescriptor {
	wrap := AddressMode(s.Wrap)
	filter := Filter(s.Filter)

	desc := hal.SamplerDescriptor{
		Label:        "texture_sampler",
		AddressModeU: wrap,
		AddressModeV: wrap,
		AddressModeW: wrap,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: MipmapFilter(s.Mipmap),
		LodMinClamp:  0,
		LodMaxClamp:  0,
		Anisotropy:   1,
	}
	if s.Aniso > 1 {
		desc.Anisotropy = uint16(min(s.Aniso, maxAnisotropy))
	}
	if s.MipCount > 1 {
		desc.LodMaxClamp = float32(s.MipCount)
	}
	return desc
}

// AddressMode maps a host wrap mode to the GPU address mode. Border
// clamping has no GPU equivalent and falls back to edge clamping.
func AddressMode(w WrapMode) gputypes.AddressMode {
	switch w {
	case WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	case WrapClampToEdge, WrapClampToBorder:
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

// Filter maps a host filter to the GPU filter mode.
func Filter(f FilterMode) gputypes.FilterMode {
	if f == FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// MipmapFilter maps a host mipmap mode to the GPU filter mode.
func MipmapFilter(m MipmapMode) gputypes.FilterMode {
	if m == MipmapLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

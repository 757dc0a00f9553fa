// Package texture turns host pixel buffers into typed array views and
// sampler descriptions.
//
// Conversion never copies pixel memory: the resulting array borrows the
// caller's buffer, which must stay valid until the array is released.
package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/format"
)

// Errors returned by CreateData.
var (
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
	ErrUnsupported3D     = errors.New("texture: format not supported for 3D textures")
	ErrInvalidSize       = errors.New("texture: invalid dimensions")
)

// WrapMode is the texture coordinate addressing mode, numbered as
// VkSamplerAddressMode.
type WrapMode int32

// Wrap modes.
const (
	WrapRepeat WrapMode = iota
	WrapMirroredRepeat
	WrapClampToEdge
	WrapClampToBorder
)

// FilterMode is the min/mag filter, numbered as VkFilter.
type FilterMode int32

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// MipmapMode is the mip level filter, numbered as VkSamplerMipmapMode.
type MipmapMode int32

// Mipmap modes.
const (
	MipmapNearest MipmapMode = iota
	MipmapLinear
)

// Spec describes one host image.
type Spec struct {
	Pixels   []byte
	Format   format.Format
	Width    int
	Height   int
	Depth    int
	MipCount int
	Aniso    int
	Wrap     WrapMode
	Filter   FilterMode
	Mipmap   MipmapMode
	MipBias  float32
}

// Data is a converted image: a typed view over the pixel buffer plus the
// texel dimensions it was created from.
type Data struct {
	Array    *extarray.Array
	Format   format.Format
	Width    int
	Height   int
	Depth    int
	MipCount int
}

// CreateData classifies s.Format and wraps s.Pixels in the matching array
// variant. Block-compressed images are addressed in blocks, so the array
// dimensions are the texel dimensions divided by the block footprint.
// Unsupported formats return ErrUnsupportedFormat and no data.
func CreateData(s Spec) (*Data, error) {
	info, ok := format.Lookup(s.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, s.Format)
	}
	depth := s.Depth
	if depth < 1 {
		depth = 1
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}

	typ, err := ElementType(info)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", err, s.Format)
	}
	if depth > 1 && !supports3D(info) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported3D, s.Format)
	}

	w := ceilDiv(s.Width, int(info.BlockWidth))
	h := ceilDiv(s.Height, int(info.BlockHeight))
	arr, err := extarray.Borrow(typ, s.Pixels, w, h, depth)
	if err != nil {
		return nil, fmt.Errorf("texture %v %dx%dx%d: %w", s.Format, s.Width, s.Height, depth, err)
	}

	mips := s.MipCount
	if mips < 1 {
		mips = 1
	}
	return &Data{
		Array:    arr,
		Format:   s.Format,
		Width:    s.Width,
		Height:   s.Height,
		Depth:    depth,
		MipCount: mips,
	}, nil
}

// ElementType returns the array element type that stores one element of
// the given format.
func ElementType(info format.Info) (extarray.Type, error) {
	switch info.Class {
	case format.ClassCompressed:
		switch info.BlockBits {
		case 64:
			return extarray.TypeBlock64, nil
		case 128:
			return extarray.TypeBlock128, nil
		}
	case format.ClassBlockVolume1:
		if info.ComponentBits == 32 && info.Numeric == format.Sfloat {
			return extarray.FloatVector(info.Components), nil
		}
		if t := extarray.UnsignedVector(info.Components, info.ComponentBits); t != extarray.TypeInvalid {
			return t, nil
		}
	}
	return extarray.TypeInvalid, ErrUnsupportedFormat
}

// supports3D reports whether a volume texture may use the format: only
// one, two or four 8-bit components.
func supports3D(info format.Info) bool {
	if info.Class != format.ClassBlockVolume1 || info.Packed || info.ComponentBits != 8 {
		return false
	}
	switch info.Components {
	case 1, 2, 4:
		return info.BlockBits == uint32(info.Components*8)
	}
	return false
}

func ceilDiv(a, b int) int {
	if b <= 1 {
		return a
	}
	return (a + b - 1) / b
}

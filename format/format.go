// Package format describes the pixel and vertex element formats a host
// sends across the bridge.
//
// Format values use the Vulkan VkFormat numbering so host records can pass
// them through unchanged. Each known format carries its storage block size
// and block footprint, which both the vertex layout derivation and the
// texture converter read.
package format

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
)

// Format is a host element format, numbered as VkFormat.
type Format uint32

// Class groups formats by how texels map onto stored elements.
type Class uint8

const (
	// ClassUnsupported formats are unknown to the table.
	ClassUnsupported Class = iota
	// ClassBlockVolume1 formats store one texel per element.
	ClassBlockVolume1
	// ClassCompressed formats store a block of texels per element.
	ClassCompressed
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassBlockVolume1:
		return "BlockVolume1"
	case ClassCompressed:
		return "Compressed"
	default:
		return "Unsupported"
	}
}

// Numeric is the interpretation of stored component bits.
type Numeric uint8

// Numeric interpretations.
const (
	Unorm Numeric = iota
	Snorm
	Uint
	Sint
	Sfloat
	Ufloat
	Srgb
)

// Info is one row of the format table.
type Info struct {
	Name string
	// BlockBits is the storage size of one element in bits.
	BlockBits uint32
	// BlockWidth and BlockHeight are the texel footprint of one element.
	BlockWidth  uint32
	BlockHeight uint32
	// Components and ComponentBits describe uncompressed formats; packed
	// formats report a single component of BlockBits.
	Components    int
	ComponentBits int
	Numeric       Numeric
	Class         Class
	// Packed formats store several components in one machine word.
	Packed bool

	texture gputypes.TextureFormat
	vertex  gputypes.VertexFormat
}

// Size returns the element size in bytes.
func (i Info) Size() int { return int(i.BlockBits / 8) }

// Lookup returns the table row for f.
func Lookup(f Format) (Info, bool) {
	info, ok := table[f]
	return info, ok
}

// Class returns the storage class of f.
func (f Format) Class() Class {
	return table[f].Class
}

// Size returns the element size in bytes, or 0 for unknown formats.
func (f Format) Size() int {
	return table[f].Size()
}

// String returns the format name.
func (f Format) String() string {
	if info, ok := table[f]; ok {
		return info.Name
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// TextureFormat returns the equivalent GPU texture format, if one exists.
func (f Format) TextureFormat() (gputypes.TextureFormat, bool) {
	info, ok := table[f]
	if !ok || info.texture == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatUndefined, false
	}
	return info.texture, true
}

// VertexFormat returns the equivalent GPU vertex attribute format, if one
// exists. One-byte, three-byte and single 16-bit formats have none.
func (f Format) VertexFormat() (gputypes.VertexFormat, bool) {
	info, ok := table[f]
	if !ok || info.vertex == gputypes.VertexFormatUndefined {
		return gputypes.VertexFormatUndefined, false
	}
	return info.vertex, true
}

// IsSrgb reports whether f stores sRGB-encoded colour.
func (f Format) IsSrgb() bool {
	return table[f].Numeric == Srgb
}

// Parse returns the format with the given table name.
func Parse(name string) (Format, bool) {
	f, ok := byName[name]
	return f, ok
}

// All returns every format in the table in ascending order.
func All() []Format {
	out := make([]Format, 0, len(table))
	for f := range table {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var byName = func() map[string]Format {
	m := make(map[string]Format, len(table))
	for f, info := range table {
		m[info.Name] = f
	}
	return m
}()

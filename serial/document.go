// Package serial reads and writes exported scene graphs.
//
// A Document is a flat, index-addressed copy of everything reachable from
// a graph root: leaf arrays, nodes, pipelines and descriptor sets. Nodes
// refer to each other, to leaves and to pipelines by index, so shared
// resources stay shared after a round trip.
//
// Two encodings exist. The binary encoding starts with the magic "VSGB"
// and stores every section little-endian. The text encoding is TOML with
// leaf bytes in base64. FormatFor picks one from the file extension.
package serial

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Version is the document version written by this package.
const Version = 1

// None marks an absent index.
const None int32 = -1

// Errors.
var (
	// ErrBadMagic is returned when binary input does not start with "VSGB".
	ErrBadMagic = errors.New("serial: not a vsgbridge binary file")

	// ErrVersion is returned for documents written by a newer version.
	ErrVersion = errors.New("serial: unsupported document version")

	// ErrCorrupt is returned when a document refers to a missing leaf,
	// node, pipeline or descriptor set, or a section length is out of
	// range.
	ErrCorrupt = errors.New("serial: corrupt document")

	// ErrUnknownLeaf is returned by FromGraph for an array missing from the
	// leaf set.
	ErrUnknownLeaf = errors.New("serial: array not in leaf set")

	// ErrReleased is returned by FromGraph for a leaf whose memory was
	// already released.
	ErrReleased = errors.New("serial: leaf already released")
)

// Format selects an encoding.
type Format uint8

const (
	// FormatAuto picks the encoding from the file extension.
	FormatAuto Format = iota
	// FormatBinary is the compact "VSGB" encoding.
	FormatBinary
	// FormatText is the TOML encoding.
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	default:
		return "auto"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "auto", "":
		*f = FormatAuto
	case "binary", "vsgb":
		*f = FormatBinary
	case "text", "toml", "vsgt":
		*f = FormatText
	default:
		return fmt.Errorf("serial: unknown format %q", b)
	}
	return nil
}

// FormatFor returns the text format for ".vsgt" and ".toml" paths and the
// binary format otherwise.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vsgt", ".toml":
		return FormatText
	default:
		return FormatBinary
	}
}

// Document is a serialized scene graph.
type Document struct {
	Version        uint32          `toml:"version"`
	Root           uint32          `toml:"root"`
	Leaves         []Leaf          `toml:"leaves,omitempty"`
	Nodes          []Node          `toml:"nodes"`
	Pipelines      []Pipeline      `toml:"pipelines,omitempty"`
	DescriptorSets []DescriptorSet `toml:"descriptor_sets,omitempty"`
}

// Leaf is one leaf array.
type Leaf struct {
	// Type is the extarray type name.
	Type   string `toml:"type"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	Depth  uint32 `toml:"depth"`
	Data   Blob   `toml:"data"`
}

// Blob is leaf data. It is written as base64 text in the TOML encoding.
type Blob []byte

// MarshalText implements encoding.TextMarshaler.
func (b Blob) MarshalText() ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(out, b)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Blob) UnmarshalText(text []byte) error {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(out, text)
	if err != nil {
		return fmt.Errorf("serial: leaf data: %w", err)
	}
	*b = out[:n]
	return nil
}

// Node is one scene graph node. Which fields are set depends on Kind.
type Node struct {
	// Kind is the graph.Kind name.
	Kind     string   `toml:"kind"`
	Meta     []Meta   `toml:"meta,omitempty"`
	Children []uint32 `toml:"children,omitempty"`
	LODs     []LOD    `toml:"lods,omitempty"`

	// Matrix is the column-major transform of a Transform node.
	Matrix []float64 `toml:"matrix,omitempty"`
	// Bound is center x, y, z and radius.
	Bound []float64 `toml:"bound,omitempty"`
	Light *Light    `toml:"light,omitempty"`
	Draw  *Draw     `toml:"draw,omitempty"`

	StateCommands []Command `toml:"state_commands,omitempty"`
	Commands      []Command `toml:"commands,omitempty"`
}

// Meta is a metadata value. Floats is a leaf index or None.
type Meta struct {
	Name   string `toml:"name"`
	Text   string `toml:"text,omitempty"`
	Floats int32  `toml:"floats"`
}

// LOD is one level of a LOD node.
type LOD struct {
	MinScreenRatio float64 `toml:"min_screen_ratio"`
	Child          uint32  `toml:"child"`
}

// Light is the payload of a Light node.
type Light struct {
	Type       uint32     `toml:"type"`
	Color      [4]float32 `toml:"color"`
	Intensity  float32    `toml:"intensity"`
	Position   [3]float32 `toml:"position"`
	Direction  [3]float32 `toml:"direction"`
	InnerAngle float32    `toml:"inner_angle"`
	OuterAngle float32    `toml:"outer_angle"`
	EyeFrame   bool       `toml:"eye_frame"`
}

// Draw is the payload of a draw node. Arrays and Indices are leaf indices.
type Draw struct {
	Arrays        []uint32 `toml:"arrays"`
	Indices       int32    `toml:"indices"`
	IndexCount    uint32   `toml:"index_count"`
	InstanceCount uint32   `toml:"instance_count"`
	FirstIndex    uint32   `toml:"first_index"`
	VertexOffset  int32    `toml:"vertex_offset"`
	FirstInstance uint32   `toml:"first_instance"`
}

// Command is one state or draw command. Type is the graph.CommandType
// name and selects the meaningful fields.
type Command struct {
	Type string `toml:"type"`

	// Pipeline is the pipeline index of BindPipeline and
	// BindDescriptorSet commands.
	Pipeline int32 `toml:"pipeline"`
	// Set is the descriptor set index of a BindDescriptorSet command.
	Set int32 `toml:"set"`
	// First is the first set or the first vertex binding.
	First uint32 `toml:"first,omitempty"`
	// Arrays are the leaves of a BindVertexBuffers command.
	Arrays []uint32 `toml:"arrays,omitempty"`
	// Indices is the leaf of a BindIndexBuffer command.
	Indices int32 `toml:"indices"`

	IndexCount    uint32 `toml:"index_count,omitempty"`
	InstanceCount uint32 `toml:"instance_count,omitempty"`
	FirstIndex    uint32 `toml:"first_index,omitempty"`
	VertexOffset  int32  `toml:"vertex_offset,omitempty"`
	FirstInstance uint32 `toml:"first_instance,omitempty"`
}

// Pipeline is the declarative state of a graphics pipeline plus the
// compiled SPIR-V of each stage.
type Pipeline struct {
	ID               string          `toml:"id"`
	VertexBindings   []VertexBinding `toml:"vertex_bindings,omitempty"`
	SetLayouts       []SetLayout     `toml:"set_layouts,omitempty"`
	PushConstantSize uint32          `toml:"push_constant_size"`
	Topology         uint32          `toml:"topology"`
	CullMode         uint32          `toml:"cull_mode"`
	DepthDisabled    bool            `toml:"depth_disabled,omitempty"`
	Blend            []Blend         `toml:"blend,omitempty"`
	ColorFormat      uint32          `toml:"color_format"`
	DepthFormat      uint32          `toml:"depth_format"`
	Stages           []Stage         `toml:"stages"`
}

// VertexBinding is one vertex buffer binding.
type VertexBinding struct {
	Binding    uint32      `toml:"binding"`
	Stride     uint64      `toml:"stride"`
	Rate       uint8       `toml:"rate"`
	Attributes []Attribute `toml:"attributes"`
}

// Attribute is one vertex attribute. Format is a format.Format id.
type Attribute struct {
	Location uint32 `toml:"location"`
	Offset   uint64 `toml:"offset"`
	Format   uint32 `toml:"format"`
}

// SetLayout is a descriptor set layout.
type SetLayout struct {
	Entries []LayoutEntry `toml:"entries"`
}

// LayoutEntry is one numbered binding.
type LayoutEntry struct {
	Binding       uint32 `toml:"binding"`
	Type          uint8  `toml:"type"`
	Count         uint32 `toml:"count"`
	Stages        uint32 `toml:"stages"`
	ViewDimension uint32 `toml:"view_dimension"`
}

// Blend holds source factor, destination factor and operation for the
// colour and alpha channels.
type Blend struct {
	Color [3]uint32 `toml:"color"`
	Alpha [3]uint32 `toml:"alpha"`
}

// Stage is one shader stage.
type Stage struct {
	Stage          uint32   `toml:"stage"`
	EntryPoint     string   `toml:"entry_point"`
	Source         string   `toml:"source"`
	Defines        []string `toml:"defines,omitempty"`
	Specialization []uint32 `toml:"specialization,omitempty"`
	SPIRV          []uint32 `toml:"spirv,omitempty"`
}

// DescriptorSet is a descriptor set bound against set Set of pipeline
// Pipeline.
type DescriptorSet struct {
	Pipeline    uint32       `toml:"pipeline"`
	Set         uint32       `toml:"set"`
	Descriptors []Descriptor `toml:"descriptors"`
}

// Descriptor is one bound resource. Uniform is a leaf index or None.
type Descriptor struct {
	Binding uint32  `toml:"binding"`
	Type    uint8   `toml:"type"`
	Images  []Image `toml:"images,omitempty"`
	Uniform int32   `toml:"uniform"`
}

// Image is one sampled image of a descriptor.
type Image struct {
	Leaf     uint32  `toml:"leaf"`
	Format   uint32  `toml:"format"`
	Width    uint32  `toml:"width"`
	Height   uint32  `toml:"height"`
	Depth    uint32  `toml:"depth"`
	MipCount uint32  `toml:"mip_count"`
	Sampler  Sampler `toml:"sampler"`
}

// Sampler is the sampler paired with an image.
type Sampler struct {
	AddressU     uint32  `toml:"address_u"`
	AddressV     uint32  `toml:"address_v"`
	AddressW     uint32  `toml:"address_w"`
	MagFilter    uint32  `toml:"mag_filter"`
	MinFilter    uint32  `toml:"min_filter"`
	MipmapFilter uint32  `toml:"mipmap_filter"`
	LodMin       float32 `toml:"lod_min"`
	LodMax       float32 `toml:"lod_max"`
	Anisotropy   uint16  `toml:"anisotropy"`
}

// LeafBytes returns the total size of all leaves.
func (d *Document) LeafBytes() int {
	n := 0
	for _, l := range d.Leaves {
		n += len(l.Data)
	}
	return n
}

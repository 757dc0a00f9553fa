package vsgbridge

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/format"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

// Host records. Slices belong to the host: the bridge borrows them without
// copying and the host must not modify or reuse them until EndExport
// returns.

// Target selects where a bind command is attached.
type Target uint8

const (
	// TargetStateGroup attaches to the active state group.
	TargetStateGroup Target = iota
	// TargetCommands attaches to the commands node at the stack head.
	TargetCommands
)

func (t Target) String() string {
	if t == TargetCommands {
		return "Commands"
	}
	return "StateGroup"
}

// MeshData describes an indexed mesh drawn by a geometry node. Vertex
// attributes are flat float slices: three components for positions and
// normals, four for tangents and colours, two for texture coordinates.
type MeshData struct {
	ID              string
	Vertices        []float32
	Indices         []int32
	Normals         []float32
	Tangents        []float32
	Colors          []float32
	UV0             []float32
	UV1             []float32
	Use32BitIndices bool
}

// IndexBufferData is the index list bound by a bind-index-buffer command.
type IndexBufferData struct {
	ID              string
	Indices         []int32
	Use32BitIndices bool
}

// VertexBuffersData lists the vertex arrays bound by a bind-vertex-buffers
// command, in the same layout as MeshData.
type VertexBuffersData struct {
	ID       string
	Vertices []float32
	Normals  []float32
	Tangents []float32
	Colors   []float32
	UV0      []float32
	UV1      []float32
}

// DrawIndexedData holds the counts of one indexed draw.
type DrawIndexedData struct {
	ID            string
	IndexCount    uint32
	FirstIndex    uint32
	VertexOffset  int32
	InstanceCount uint32
	FirstInstance uint32
}

// ImageData is one host texture.
type ImageData struct {
	ID         string
	Pixels     []byte
	Format     format.Format
	Width      int
	Height     int
	Depth      int
	AnisoLevel int
	WrapMode   texture.WrapMode
	FilterMode texture.FilterMode
	MipmapMode texture.MipmapMode
	MipCount   int
	MipBias    float32
}

func (d ImageData) spec() texture.Spec {
	return texture.Spec{
		Pixels:   d.Pixels,
		Format:   d.Format,
		Width:    d.Width,
		Height:   d.Height,
		Depth:    d.Depth,
		MipCount: d.MipCount,
		Aniso:    d.AnisoLevel,
		Wrap:     d.WrapMode,
		Filter:   d.FilterMode,
		Mipmap:   d.MipmapMode,
		MipBias:  d.MipBias,
	}
}

// DescriptorImageData is a sampled image descriptor with one image per
// array element.
type DescriptorImageData struct {
	ID      string
	Binding uint32
	Images  []ImageData
}

// DescriptorFloatData is a scalar uniform.
type DescriptorFloatData struct {
	ID      string
	Binding uint32
	Value   float32
}

// DescriptorFloatArrayData is a float array uniform.
type DescriptorFloatArrayData struct {
	ID      string
	Binding uint32
	Values  []float32
}

// DescriptorFloatBufferData is a float array read as a storage buffer.
type DescriptorFloatBufferData struct {
	ID      string
	Binding uint32
	Values  []float32
}

// DescriptorVectorData is a vec4 uniform.
type DescriptorVectorData struct {
	ID      string
	Binding uint32
	Value   [4]float32
}

// DescriptorVectorArrayData is a vec4 array uniform; Values holds four
// floats per element.
type DescriptorVectorArrayData struct {
	ID      string
	Binding uint32
	Values  []float32
}

// DescriptorBinding declares one binding of a pipeline's descriptor set.
// Binding is pipeline.Unassigned to let the assembler number it.
type DescriptorBinding struct {
	Binding int
	Type    pipeline.DescriptorType
	Count   int
	Stages  gputypes.ShaderStages
}

// ShaderStageData is the source of one shader stage.
type ShaderStageData struct {
	Stage          gputypes.ShaderStage
	EntryPoint     string
	Source         string
	CustomDefines  []string
	Specialization []uint32
}

// PipelineData describes a graphics pipeline. When Stages is empty the
// shaders are generated from the vertex attribute flags and ShaderMode.
type PipelineData struct {
	ID             string
	HasNormals     bool
	HasTangents    bool
	HasColors      bool
	UVChannelCount int
	UseAlpha       bool
	Bindings       []DescriptorBinding
	Stages         []ShaderStageData
	ShaderMode     pipeline.ShaderMode
}

// attributeMask returns the enabled vertex inputs.
func (p PipelineData) attributeMask() pipeline.AttributeMask {
	m := pipeline.AttrVertex
	if p.HasNormals {
		m |= pipeline.AttrNormal
	}
	if p.HasTangents {
		m |= pipeline.AttrTangent
	}
	if p.HasColors {
		m |= pipeline.AttrColor
	}
	uv := []pipeline.AttributeMask{pipeline.AttrTexCoord0, pipeline.AttrTexCoord1, pipeline.AttrTexCoord2}
	for i := 0; i < p.UVChannelCount && i < len(uv); i++ {
		m |= uv[i]
	}
	return m
}

// TransformData is a column-major 4x4 matrix.
type TransformData struct {
	Matrix [16]float32
}

// CullData is a bounding sphere.
type CullData struct {
	Center [3]float32
	Radius float32
}

// LODChildData is the minimum screen height ratio at which a LOD child is
// shown.
type LODChildData struct {
	MinimumScreenHeightRatio float32
}

// LightData describes a light source. Angles are half-angles in degrees.
type LightData struct {
	Type               graph.LightType
	EyeCoordinateFrame bool
	Position           [3]float32
	Direction          [3]float32
	Color              [4]float32
	Intensity          float32
	InnerAngle         float32
	OuterAngle         float32
}

// CameraData positions the preview camera.
type CameraData struct {
	Position [3]float32
	LookAt   [3]float32
	Up       [3]float32
	FOV      float32
	Near     float32
	Far      float32
}

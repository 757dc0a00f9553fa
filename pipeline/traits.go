// Package pipeline derives complete graphics pipeline state from
// declarative per-draw traits and compiles it on a GPU device.
//
// The derivation (vertex input layout, descriptor set layouts, push
// constants, blend state) is pure and lives in DeriveState. Build adds
// shader compilation and GPU object creation on top of it.
package pipeline

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/format"
)

// DefaultPushConstantSize reserves room for a projection and a model-view
// matrix (two 4x4 float32 matrices).
const DefaultPushConstantSize = 128

// Rate is the vertex input stepping rate.
type Rate uint8

// Input rates, in assembly order.
const (
	RateVertex Rate = iota
	RateInstance
)

// AttributeGroup is one interleaved vertex buffer ("struct") whose
// attributes are laid out in declaration order.
type AttributeGroup struct {
	Rate    Rate
	Formats []format.Format
}

// DescriptorType is the kind of resource a binding exposes.
type DescriptorType uint8

// Descriptor types.
const (
	// DescriptorSampledImage is a combined image + sampler. It occupies the
	// binding number for the texture and the next number for the sampler.
	DescriptorSampledImage DescriptorType = iota
	DescriptorUniformBuffer
	DescriptorStorageBuffer
)

// String returns the descriptor type name.
func (t DescriptorType) String() string {
	switch t {
	case DescriptorSampledImage:
		return "SampledImage"
	case DescriptorUniformBuffer:
		return "UniformBuffer"
	case DescriptorStorageBuffer:
		return "StorageBuffer"
	default:
		return "Unknown"
	}
}

// Unassigned marks a binding whose number is chosen by the assembler.
const Unassigned = -1

// Binding is one descriptor binding request.
type Binding struct {
	// Binding is the caller's binding number, or Unassigned.
	Binding int
	Type    DescriptorType
	// Count is the descriptor array length; 0 means 1.
	Count int
	// ViewDimension applies to sampled images; the zero value means 2D.
	ViewDimension gputypes.TextureViewDimension
}

// StageBindings lists the bindings one shader stage reads from a set.
type StageBindings struct {
	Stage    gputypes.ShaderStage
	Bindings []Binding
}

// BindingSet describes one descriptor set, grouped by shader stage.
type BindingSet struct {
	Stages []StageBindings
}

// ShaderStage is the source of one pipeline stage.
type ShaderStage struct {
	Stage      gputypes.ShaderStage
	EntryPoint string
	Source     string
	// Defines enable #ifdef blocks in Source.
	Defines []string
	// Specialization is carried through to the compiled module and the
	// serialized pipeline unchanged.
	Specialization []uint32
}

// Traits is the declarative input of one pipeline build.
type Traits struct {
	Attributes  []AttributeGroup
	BindingSets []BindingSet
	Stages      []ShaderStage
	Topology    gputypes.PrimitiveTopology
	CullMode    gputypes.CullMode
	// Blend lists caller colour attachments. When empty, Alpha selects
	// between opaque replace and src-alpha blending.
	Blend []gputypes.BlendState
	Alpha bool
	// DepthDisabled turns depth testing and depth writes off.
	DepthDisabled bool
	// PushConstantSize overrides the assembler default when non-zero.
	PushConstantSize uint32
}

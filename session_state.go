package vsgbridge

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

// commandParent resolves the node a bind command is attached to.
func (s *Session) commandParent(op string, target Target) (graph.Handle, error) {
	if err := s.check(); err != nil {
		return graph.Nil, err
	}
	head := s.Head()
	switch target {
	case TargetStateGroup:
		if sg := s.ActiveStateGroup(); sg != graph.Nil {
			return sg, nil
		}
		return graph.Nil, &StructuralError{Op: op, Head: s.graph.Kind(head), Err: ErrNoActiveStateGroup}
	default:
		if s.graph.Kind(head) == graph.KindCommands {
			return head, nil
		}
		return graph.Nil, &StructuralError{Op: op, Head: s.graph.Kind(head), Err: ErrNoCommandsHead}
	}
}

func (s *Session) attachCommand(parent graph.Handle, target Target, c graph.Command) error {
	if target == TargetStateGroup {
		return s.graph.AddStateCommand(parent, c)
	}
	return s.graph.AddCommand(parent, c)
}

// AddBindGraphicsPipeline binds the pipeline d.ID to the target, building
// it on first use, and makes it the active pipeline. A failed build leaves
// the active pipeline and the pipeline cache unchanged.
func (s *Session) AddBindGraphicsPipeline(d PipelineData, target Target) error {
	const op = "AddBindGraphicsPipeline"
	parent, err := s.commandParent(op, target)
	if err != nil {
		return err
	}
	cmd, hit, err := s.pipelines.GetOrBuild(d.ID, func() (*graph.BindPipelineCommand, error) {
		p, err := s.assembler.Build(d.ID, pipelineTraits(d))
		if err != nil {
			return nil, err
		}
		return &graph.BindPipelineCommand{Pipeline: p}, nil
	})
	if err != nil {
		Logger().Warn("vsgbridge: pipeline build failed", "id", d.ID, "err", err)
		return fmt.Errorf("vsgbridge: %s: %w", op, err)
	}
	if hit {
		Logger().Debug("vsgbridge: pipeline cache hit", "id", d.ID)
	}
	if err := s.attachCommand(parent, target, cmd); err != nil {
		return fmt.Errorf("vsgbridge: %s: %w", op, err)
	}
	s.activePipeline = cmd.Pipeline
	return nil
}

// pipelineTraits converts host pipeline data to assembler traits. Without
// shader stages the default shaders for the enabled attributes and shader
// mode are used.
func pipelineTraits(d PipelineData) pipeline.Traits {
	mask := d.attributeMask()
	var t pipeline.Traits
	if len(d.Stages) == 0 {
		t = pipeline.GeneratedTraits(mask, d.ShaderMode)
	} else {
		t.Attributes = pipeline.AttributeGroups(mask)
		for _, st := range d.Stages {
			entry := st.EntryPoint
			if entry == "" {
				entry = "main"
			}
			t.Stages = append(t.Stages, pipeline.ShaderStage{
				Stage:          st.Stage,
				EntryPoint:     entry,
				Source:         st.Source,
				Defines:        st.CustomDefines,
				Specialization: st.Specialization,
			})
		}
	}
	if len(d.Bindings) > 0 {
		t.BindingSets = []pipeline.BindingSet{bindingSet(d.Bindings)}
	}
	t.Alpha = t.Alpha || d.UseAlpha
	return t
}

// bindingSet groups host bindings by stage, vertex before fragment. A
// numbered binding visible to several stages is listed under each and the
// assembler merges it back into one entry. An unnumbered one is listed
// under its first stage only.
func bindingSet(bindings []DescriptorBinding) pipeline.BindingSet {
	stages := []gputypes.ShaderStage{gputypes.ShaderStageVertex, gputypes.ShaderStageFragment}
	var set pipeline.BindingSet
	for _, stage := range stages {
		sb := pipeline.StageBindings{Stage: stage}
		for _, b := range bindings {
			vis := b.Stages
			if vis == 0 {
				vis = gputypes.ShaderStageFragment
			}
			if vis&stage == 0 {
				continue
			}
			if b.Binding < 0 && stage == gputypes.ShaderStageFragment && vis&gputypes.ShaderStageVertex != 0 {
				continue
			}
			count := b.Count
			if count < 1 {
				count = 1
			}
			sb.Bindings = append(sb.Bindings, pipeline.Binding{Binding: b.Binding, Type: b.Type, Count: count})
		}
		if len(sb.Bindings) > 0 {
			set.Stages = append(set.Stages, sb)
		}
	}
	return set
}

// AddBindVertexBuffers appends a bind-vertex-buffers command for d.ID to
// the commands head.
func (s *Session) AddBindVertexBuffers(d VertexBuffersData) error {
	const op = "AddBindVertexBuffers"
	parent, err := s.commandParent(op, TargetCommands)
	if err != nil {
		return err
	}
	cmd, _, err := s.vertexBuffers.GetOrBuild(d.ID, func() (*graph.BindVertexBuffersCommand, error) {
		arrays, err := vertexArrays(d.Vertices, d.Normals, d.Tangents, d.Colors, d.UV0, d.UV1)
		if err != nil {
			return nil, err
		}
		return &graph.BindVertexBuffersCommand{Arrays: arrays}, nil
	})
	if err != nil {
		return fmt.Errorf("vsgbridge: %s %q: %w", op, d.ID, err)
	}
	return s.graph.AddCommand(parent, cmd)
}

// AddBindIndexBuffer appends a bind-index-buffer command for d.ID to the
// commands head. The indices are copied into a 16- or 32-bit array once
// per id.
func (s *Session) AddBindIndexBuffer(d IndexBufferData) error {
	const op = "AddBindIndexBuffer"
	parent, err := s.commandParent(op, TargetCommands)
	if err != nil {
		return err
	}
	cmd, _, err := s.indexBuffers.GetOrBuild(d.ID, func() (*graph.BindIndexBufferCommand, error) {
		indices, err := extarray.Indices(d.Indices, d.Use32BitIndices)
		if err != nil {
			return nil, err
		}
		return &graph.BindIndexBufferCommand{Indices: indices}, nil
	})
	if err != nil {
		return fmt.Errorf("vsgbridge: %s %q: %w", op, d.ID, err)
	}
	return s.graph.AddCommand(parent, cmd)
}

// AddDrawIndexed appends the draw command for d.ID to the commands head.
func (s *Session) AddDrawIndexed(d DrawIndexedData) error {
	parent, err := s.commandParent("AddDrawIndexed", TargetCommands)
	if err != nil {
		return err
	}
	cmd, _, err := s.draws.GetOrBuild(d.ID, func() (*graph.DrawIndexedCommand, error) {
		return &graph.DrawIndexedCommand{
			IndexCount:    d.IndexCount,
			InstanceCount: max(d.InstanceCount, 1),
			FirstIndex:    d.FirstIndex,
			VertexOffset:  d.VertexOffset,
			FirstInstance: d.FirstInstance,
		}, nil
	})
	if err != nil {
		return err
	}
	return s.graph.AddCommand(parent, cmd)
}

func (s *Session) appendPending(id string, d graph.Descriptor) {
	s.pending = append(s.pending, d)
	s.pendingIDs = append(s.pendingIDs, id)
}

// dropPending empties the descriptor queue. Unless a descriptor set took
// the queued buffers over, they are released so the host may reuse them.
func (s *Session) dropPending(taken bool) {
	if !taken {
		for _, d := range s.pending {
			if d.Uniform != nil {
				d.Uniform.Release()
			}
		}
	}
	s.pending = nil
	s.pendingIDs = nil
}

// PendingDescriptors returns how many descriptors wait for the next
// CreateBindDescriptorSet.
func (s *Session) PendingDescriptors() int { return len(s.pending) }

// AddDescriptorImage queues a sampled image descriptor. Each image is
// converted once per image id; an unsupported format fails the call and
// queues nothing.
func (s *Session) AddDescriptorImage(d DescriptorImageData) error {
	if err := s.check(); err != nil {
		return err
	}
	desc, err := s.imageDescriptor(d)
	if err != nil {
		return err
	}
	s.appendPending(d.ID, desc)
	return nil
}

// imageDescriptor converts the images of d through the texture cache.
func (s *Session) imageDescriptor(d DescriptorImageData) (graph.Descriptor, error) {
	if len(d.Images) == 0 {
		return graph.Descriptor{}, fmt.Errorf("vsgbridge: descriptor %q: %w", d.ID, graph.ErrDescriptorType)
	}
	desc := graph.Descriptor{Binding: d.Binding, Type: pipeline.DescriptorSampledImage}
	for _, img := range d.Images {
		spec := img.spec()
		data, hit, err := s.textures.GetOrBuild(img.ID, func() (*texture.Data, error) {
			return texture.CreateData(spec)
		})
		if err != nil {
			return graph.Descriptor{}, fmt.Errorf("vsgbridge: descriptor %q image %q: %w", d.ID, img.ID, err)
		}
		if hit {
			Logger().Debug("vsgbridge: texture cache hit", "id", img.ID)
		}
		desc.Images = append(desc.Images, data)
		desc.Samplers = append(desc.Samplers, texture.SamplerFor(spec))
	}
	return desc, nil
}

func (s *Session) addUniform(id string, binding uint32, build func() (*extarray.Array, error)) error {
	return s.addBuffer(id, binding, pipeline.DescriptorUniformBuffer, build)
}

func (s *Session) addBuffer(id string, binding uint32, typ pipeline.DescriptorType, build func() (*extarray.Array, error)) error {
	if err := s.check(); err != nil {
		return err
	}
	a, err := build()
	if err != nil {
		return fmt.Errorf("vsgbridge: descriptor %q: %w", id, err)
	}
	s.appendPending(id, graph.Descriptor{Binding: binding, Type: typ, Uniform: a})
	return nil
}

// AddDescriptorFloat queues a scalar uniform.
func (s *Session) AddDescriptorFloat(d DescriptorFloatData) error {
	return s.addUniform(d.ID, d.Binding, func() (*extarray.Array, error) {
		return extarray.NewFloat32(extarray.TypeFloat, []float32{d.Value})
	})
}

// AddDescriptorFloatArray queues a float array uniform. The values are
// borrowed.
func (s *Session) AddDescriptorFloatArray(d DescriptorFloatArrayData) error {
	return s.addUniform(d.ID, d.Binding, func() (*extarray.Array, error) {
		return extarray.BorrowFloat32(extarray.TypeFloat, d.Values)
	})
}

// AddDescriptorFloatBuffer queues a float array as a storage buffer. The
// values are borrowed.
func (s *Session) AddDescriptorFloatBuffer(d DescriptorFloatBufferData) error {
	return s.addBuffer(d.ID, d.Binding, pipeline.DescriptorStorageBuffer, func() (*extarray.Array, error) {
		return extarray.BorrowFloat32(extarray.TypeFloat, d.Values)
	})
}

// AddDescriptorVector queues a vec4 uniform.
func (s *Session) AddDescriptorVector(d DescriptorVectorData) error {
	return s.addUniform(d.ID, d.Binding, func() (*extarray.Array, error) {
		return extarray.NewFloat32(extarray.TypeVec4, d.Value[:])
	})
}

// AddDescriptorVectorArray queues a vec4 array uniform. The values are
// borrowed.
func (s *Session) AddDescriptorVectorArray(d DescriptorVectorArrayData) error {
	return s.addUniform(d.ID, d.Binding, func() (*extarray.Array, error) {
		return extarray.BorrowFloat32(extarray.TypeVec4, d.Values)
	})
}

// CreateBindDescriptorSet turns the queued descriptors into a descriptor
// set for the active pipeline and binds it to the target. Sets are shared
// by pipeline and descriptor ids. The queue is emptied whether or not the
// call succeeds; buffers no new set holds are released.
func (s *Session) CreateBindDescriptorSet(target Target) error {
	const op = "CreateBindDescriptorSet"
	taken := false
	defer func() { s.dropPending(taken) }()

	if err := s.check(); err != nil {
		return err
	}
	p := s.activePipeline
	if p == nil {
		return ErrNoActivePipeline
	}
	if len(s.pending) == 0 {
		return ErrNoDescriptors
	}
	parent, err := s.commandParent(op, target)
	if err != nil {
		return err
	}

	key := p.ID + "#" + strings.Join(s.pendingIDs, "|")
	descs := s.pending
	cmd, hit, err := s.descriptorSets.GetOrBuild(key, func() (*graph.BindDescriptorSetCommand, error) {
		ds, err := graph.BuildDescriptorSet(s.dev.device, p, 0, descs)
		if err != nil {
			return nil, err
		}
		if !ds.Mirrored() {
			Logger().Debug("vsgbridge: descriptor set kept host-side", "key", key)
		}
		taken = true
		return &graph.BindDescriptorSetCommand{Pipeline: p, FirstSet: 0, Set: ds}, nil
	})
	if err != nil {
		return fmt.Errorf("vsgbridge: %s: %w", op, err)
	}
	if hit {
		Logger().Debug("vsgbridge: descriptor set cache hit", "key", key)
	}
	return s.attachCommand(parent, target, cmd)
}

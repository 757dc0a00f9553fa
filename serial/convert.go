package serial

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/format"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

// encoder flattens a graph into a Document.
type encoder struct {
	g      *graph.Graph
	leaves *graph.LeafSet
	doc    *Document

	nodes     map[graph.Handle]uint32
	pipelines map[*pipeline.Pipeline]int32
	sets      map[*graph.DescriptorSet]int32
}

// FromGraph copies everything reachable from root into a Document. Leaf
// indices follow leaves, which must hold every array reachable from root
// (CollectLeaves(g, root) does). Leaf bytes are copied, so the document
// stays valid after the leaves are released.
func FromGraph(g *graph.Graph, root graph.Handle, leaves *graph.LeafSet) (*Document, error) {
	if g.Node(root) == nil {
		return nil, fmt.Errorf("serial: %w: root", graph.ErrInvalidHandle)
	}
	e := &encoder{
		g:         g,
		leaves:    leaves,
		doc:       &Document{Version: Version},
		nodes:     make(map[graph.Handle]uint32),
		pipelines: make(map[*pipeline.Pipeline]int32),
		sets:      make(map[*graph.DescriptorSet]int32),
	}
	for _, a := range leaves.Arrays {
		data := a.Bytes()
		if data == nil && a.Len() > 0 {
			return nil, ErrReleased
		}
		e.doc.Leaves = append(e.doc.Leaves, Leaf{
			Type:   a.Type().String(),
			Width:  uint32(a.Width()),  // #nosec G115 -- array dimensions are non-negative
			Height: uint32(a.Height()), // #nosec G115
			Depth:  uint32(a.Depth()),  // #nosec G115
			Data:   append(Blob(nil), data...),
		})
	}
	r, err := e.node(root)
	if err != nil {
		return nil, err
	}
	e.doc.Root = r
	return e.doc, nil
}

func (e *encoder) leaf(a *extarray.Array) (uint32, error) {
	i, ok := e.leaves.Index(a)
	if !ok {
		return 0, ErrUnknownLeaf
	}
	return uint32(i), nil // #nosec G115 -- leaf count is far below uint32 max
}

func (e *encoder) optLeaf(a *extarray.Array) (int32, error) {
	if a == nil {
		return None, nil
	}
	i, err := e.leaf(a)
	return int32(i), err // #nosec G115
}

func (e *encoder) leafList(arrays []*extarray.Array) ([]uint32, error) {
	out := make([]uint32, 0, len(arrays))
	for _, a := range arrays {
		i, err := e.leaf(a)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// node writes h and its subtree. A node reached twice is written once.
func (e *encoder) node(h graph.Handle) (uint32, error) {
	if i, ok := e.nodes[h]; ok {
		return i, nil
	}
	n := e.g.Node(h)
	if n == nil {
		return 0, fmt.Errorf("serial: %w: %d", graph.ErrInvalidHandle, h)
	}
	idx := uint32(len(e.doc.Nodes)) // #nosec G115
	e.nodes[h] = idx
	e.doc.Nodes = append(e.doc.Nodes, Node{Kind: n.Kind.String()})

	out := Node{Kind: n.Kind.String()}
	for _, m := range n.Meta {
		f, err := e.optLeaf(m.Floats)
		if err != nil {
			return 0, err
		}
		out.Meta = append(out.Meta, Meta{Name: m.Name, Text: m.Text, Floats: f})
	}
	for _, c := range n.Children {
		ci, err := e.node(c)
		if err != nil {
			return 0, err
		}
		out.Children = append(out.Children, ci)
	}
	for _, l := range n.LODs {
		ci, err := e.node(l.Child)
		if err != nil {
			return 0, err
		}
		out.LODs = append(out.LODs, LOD{MinScreenRatio: l.MinScreenRatio, Child: ci})
	}
	if n.Kind == graph.KindTransform {
		out.Matrix = append([]float64(nil), n.Matrix[:]...)
	}
	if n.Kind.HasBound() {
		out.Bound = []float64{n.Bound.Center[0], n.Bound.Center[1], n.Bound.Center[2], n.Bound.Radius}
	}
	if n.Kind == graph.KindLight {
		out.Light = &Light{
			Type:       uint32(n.Light.Type),
			Color:      n.Light.Color,
			Intensity:  n.Light.Intensity,
			Position:   n.Light.Position,
			Direction:  n.Light.Direction,
			InnerAngle: n.Light.InnerAngle,
			OuterAngle: n.Light.OuterAngle,
			EyeFrame:   n.Light.EyeFrame,
		}
	}
	if n.Draw != nil {
		d, err := e.draw(n.Draw)
		if err != nil {
			return 0, err
		}
		out.Draw = d
	}
	var err error
	if out.StateCommands, err = e.commands(n.StateCommands); err != nil {
		return 0, err
	}
	if out.Commands, err = e.commands(n.Commands); err != nil {
		return 0, err
	}
	e.doc.Nodes[idx] = out
	return idx, nil
}

func (e *encoder) draw(d *graph.Draw) (*Draw, error) {
	arrays, err := e.leafList(d.Arrays)
	if err != nil {
		return nil, err
	}
	indices, err := e.optLeaf(d.Indices)
	if err != nil {
		return nil, err
	}
	return &Draw{
		Arrays:        arrays,
		Indices:       indices,
		IndexCount:    d.IndexCount,
		InstanceCount: d.InstanceCount,
		FirstIndex:    d.FirstIndex,
		VertexOffset:  d.VertexOffset,
		FirstInstance: d.FirstInstance,
	}, nil
}

func (e *encoder) commands(cmds []graph.Command) ([]Command, error) {
	var out []Command
	for _, c := range cmds {
		rec := Command{Type: c.Type().String(), Pipeline: None, Set: None, Indices: None}
		switch c := c.(type) {
		case *graph.BindPipelineCommand:
			rec.Pipeline = e.pipeline(c.Pipeline)
		case *graph.BindDescriptorSetCommand:
			rec.Pipeline = e.pipeline(c.Pipeline)
			rec.First = c.FirstSet
			s, err := e.descriptorSet(rec.Pipeline, c.FirstSet, c.Set)
			if err != nil {
				return nil, err
			}
			rec.Set = s
		case *graph.BindVertexBuffersCommand:
			arrays, err := e.leafList(c.Arrays)
			if err != nil {
				return nil, err
			}
			rec.First = c.FirstBinding
			rec.Arrays = arrays
		case *graph.BindIndexBufferCommand:
			i, err := e.optLeaf(c.Indices)
			if err != nil {
				return nil, err
			}
			rec.Indices = i
		case *graph.DrawIndexedCommand:
			rec.IndexCount = c.IndexCount
			rec.InstanceCount = c.InstanceCount
			rec.FirstIndex = c.FirstIndex
			rec.VertexOffset = c.VertexOffset
			rec.FirstInstance = c.FirstInstance
		default:
			return nil, fmt.Errorf("serial: unsupported command %v", c.Type())
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e *encoder) pipeline(p *pipeline.Pipeline) int32 {
	if p == nil {
		return None
	}
	if i, ok := e.pipelines[p]; ok {
		return i
	}
	i := int32(len(e.doc.Pipelines)) // #nosec G115
	e.pipelines[p] = i
	e.doc.Pipelines = append(e.doc.Pipelines, pipelineRecord(p))
	return i
}

func pipelineRecord(p *pipeline.Pipeline) Pipeline {
	s := p.State
	rec := Pipeline{
		ID:               p.ID,
		PushConstantSize: s.PushConstantSize,
		Topology:         uint32(s.Topology),
		CullMode:         uint32(s.CullMode),
		DepthDisabled:    s.DepthDisabled,
		ColorFormat:      uint32(s.ColorFormat),
		DepthFormat:      uint32(s.DepthFormat),
	}
	for _, vb := range s.VertexBindings {
		b := VertexBinding{Binding: vb.Binding, Stride: vb.Stride, Rate: uint8(vb.Rate)}
		for _, a := range vb.Attributes {
			b.Attributes = append(b.Attributes, Attribute{Location: a.Location, Offset: a.Offset, Format: uint32(a.Format)})
		}
		rec.VertexBindings = append(rec.VertexBindings, b)
	}
	for _, l := range s.SetLayouts {
		var sl SetLayout
		for _, en := range l.Entries {
			sl.Entries = append(sl.Entries, LayoutEntry{
				Binding:       en.Binding,
				Type:          uint8(en.Type),
				Count:         uint32(en.Count), // #nosec G115 -- counts are small and positive
				Stages:        uint32(en.Stages),
				ViewDimension: uint32(en.ViewDimension),
			})
		}
		rec.SetLayouts = append(rec.SetLayouts, sl)
	}
	for _, b := range s.Blend {
		rec.Blend = append(rec.Blend, Blend{
			Color: [3]uint32{uint32(b.Color.SrcFactor), uint32(b.Color.DstFactor), uint32(b.Color.Operation)},
			Alpha: [3]uint32{uint32(b.Alpha.SrcFactor), uint32(b.Alpha.DstFactor), uint32(b.Alpha.Operation)},
		})
	}
	for i, st := range s.Stages {
		stage := Stage{
			Stage:          uint32(st.Stage),
			EntryPoint:     st.EntryPoint,
			Source:         st.Source,
			Defines:        append([]string(nil), st.Defines...),
			Specialization: append([]uint32(nil), st.Specialization...),
		}
		if i < len(p.Modules) && p.Modules[i] != nil {
			stage.SPIRV = append([]uint32(nil), p.Modules[i].SPIRV...)
		}
		rec.Stages = append(rec.Stages, stage)
	}
	return rec
}

func (e *encoder) descriptorSet(p int32, set uint32, ds *graph.DescriptorSet) (int32, error) {
	if ds == nil {
		return None, nil
	}
	if i, ok := e.sets[ds]; ok {
		return i, nil
	}
	if p == None {
		return None, fmt.Errorf("serial: %w: descriptor set without pipeline", ErrCorrupt)
	}
	rec := DescriptorSet{Pipeline: uint32(p), Set: set} // #nosec G115 -- p is not None here
	for _, d := range ds.Descriptors {
		u, err := e.optLeaf(d.Uniform)
		if err != nil {
			return None, err
		}
		desc := Descriptor{Binding: d.Binding, Type: uint8(d.Type), Uniform: u}
		for i, img := range d.Images {
			leaf, err := e.leaf(img.Array)
			if err != nil {
				return None, err
			}
			im := Image{
				Leaf:     leaf,
				Format:   uint32(img.Format),
				Width:    uint32(img.Width),    // #nosec G115 -- image dimensions are non-negative
				Height:   uint32(img.Height),   // #nosec G115
				Depth:    uint32(img.Depth),    // #nosec G115
				MipCount: uint32(img.MipCount), // #nosec G115
			}
			if i < len(d.Samplers) {
				im.Sampler = samplerRecord(d.Samplers[i])
			}
			desc.Images = append(desc.Images, im)
		}
		rec.Descriptors = append(rec.Descriptors, desc)
	}
	i := int32(len(e.doc.DescriptorSets)) // #nosec G115
	e.sets[ds] = i
	e.doc.DescriptorSets = append(e.doc.DescriptorSets, rec)
	return i, nil
}

func samplerRecord(s hal.SamplerDescriptor) Sampler {
	return Sampler{
		AddressU:     uint32(s.AddressModeU),
		AddressV:     uint32(s.AddressModeV),
		AddressW:     uint32(s.AddressModeW),
		MagFilter:    uint32(s.MagFilter),
		MinFilter:    uint32(s.MinFilter),
		MipmapFilter: uint32(s.MipmapFilter),
		LodMin:       s.LodMinClamp,
		LodMax:       s.LodMaxClamp,
		Anisotropy:   s.Anisotropy,
	}
}

// decoder rebuilds a graph from a Document.
type decoder struct {
	doc *Document
	g   *graph.Graph

	leaves    []*extarray.Array
	nodes     []graph.Handle
	pipelines []*pipeline.Pipeline
	sets      []*graph.DescriptorSet
	textures  map[uint32]*texture.Data
}

// Graph rebuilds the scene graph. Leaves become owned arrays, pipelines
// carry their state and SPIR-V but no GPU objects, and descriptor sets are
// host-side only.
func (d *Document) Graph() (*graph.Graph, graph.Handle, error) {
	if d.Version == 0 || d.Version > Version {
		return nil, graph.Nil, fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}
	if int(d.Root) >= len(d.Nodes) {
		return nil, graph.Nil, fmt.Errorf("%w: root %d of %d nodes", ErrCorrupt, d.Root, len(d.Nodes))
	}
	dec := &decoder{doc: d, g: graph.New(), textures: make(map[uint32]*texture.Data)}
	if err := dec.build(); err != nil {
		return nil, graph.Nil, err
	}
	return dec.g, dec.nodes[d.Root], nil
}

func (dec *decoder) build() error {
	for i, l := range dec.doc.Leaves {
		t, ok := extarray.TypeFromString(l.Type)
		if !ok {
			return fmt.Errorf("%w: leaf %d type %q", ErrCorrupt, i, l.Type)
		}
		var a *extarray.Array
		var err error
		if l.Width == 0 {
			a, err = extarray.NewBytes(t, l.Data)
		} else {
			a, err = extarray.New(t, l.Data, int(l.Width), int(l.Height), int(l.Depth))
		}
		if err != nil {
			return fmt.Errorf("%w: leaf %d: %w", ErrCorrupt, i, err)
		}
		dec.leaves = append(dec.leaves, a)
	}
	for _, p := range dec.doc.Pipelines {
		dec.pipelines = append(dec.pipelines, pipelineFromRecord(p))
	}
	for i, s := range dec.doc.DescriptorSets {
		ds, err := dec.descriptorSet(s)
		if err != nil {
			return fmt.Errorf("descriptor set %d: %w", i, err)
		}
		dec.sets = append(dec.sets, ds)
	}

	if err := dec.checkAcyclic(); err != nil {
		return err
	}
	// Handles are allocated first so children can be linked in any order.
	for _, n := range dec.doc.Nodes {
		k, ok := graph.ParseKind(n.Kind)
		if !ok {
			return fmt.Errorf("%w: node kind %q", ErrCorrupt, n.Kind)
		}
		dec.nodes = append(dec.nodes, dec.g.Add(graph.Node{Kind: k}))
	}
	for i := range dec.doc.Nodes {
		if err := dec.node(i); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}
	return nil
}

// checkAcyclic rejects node records that reach themselves through
// children or LOD children. Shared subtrees are allowed.
func (dec *decoder) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	nodes := dec.doc.Nodes
	colour := make([]uint8, len(nodes))
	type frame struct {
		node  uint32
		edges []uint32
		next  int
	}
	edges := func(i uint32) []uint32 {
		n := nodes[i]
		out := make([]uint32, 0, len(n.Children)+len(n.LODs))
		out = append(out, n.Children...)
		for _, l := range n.LODs {
			out = append(out, l.Child)
		}
		return out
	}
	for start := range nodes {
		if colour[start] != white {
			continue
		}
		colour[start] = grey
		root := uint32(start) // #nosec G115 -- node count is bounded by maxLen
		stack := []frame{{node: root, edges: edges(root)}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.edges) {
				colour[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			c := top.edges[top.next]
			top.next++
			if int(c) >= len(nodes) {
				return fmt.Errorf("%w: node %d child %d", ErrCorrupt, top.node, c)
			}
			switch colour[c] {
			case grey:
				return fmt.Errorf("%w: node %d is its own ancestor", ErrCorrupt, c)
			case white:
				colour[c] = grey
				stack = append(stack, frame{node: c, edges: edges(c)})
			}
		}
	}
	return nil
}

func (dec *decoder) leaf(i uint32) (*extarray.Array, error) {
	if int(i) >= len(dec.leaves) {
		return nil, fmt.Errorf("%w: leaf %d", ErrCorrupt, i)
	}
	return dec.leaves[i], nil
}

func (dec *decoder) optLeaf(i int32) (*extarray.Array, error) {
	if i < 0 {
		return nil, nil
	}
	return dec.leaf(uint32(i))
}

func (dec *decoder) leafList(idx []uint32) ([]*extarray.Array, error) {
	out := make([]*extarray.Array, 0, len(idx))
	for _, i := range idx {
		a, err := dec.leaf(i)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (dec *decoder) handle(i uint32) (graph.Handle, error) {
	if int(i) >= len(dec.nodes) {
		return graph.Nil, fmt.Errorf("%w: node %d", ErrCorrupt, i)
	}
	return dec.nodes[i], nil
}

func (dec *decoder) pipeline(i int32) (*pipeline.Pipeline, error) {
	if i < 0 {
		return nil, nil
	}
	if int(i) >= len(dec.pipelines) {
		return nil, fmt.Errorf("%w: pipeline %d", ErrCorrupt, i)
	}
	return dec.pipelines[i], nil
}

func (dec *decoder) node(i int) error {
	rec := dec.doc.Nodes[i]
	n := dec.g.Node(dec.nodes[i])

	for _, m := range rec.Meta {
		f, err := dec.optLeaf(m.Floats)
		if err != nil {
			return err
		}
		n.Meta = append(n.Meta, graph.Meta{Name: m.Name, Text: m.Text, Floats: f})
	}
	for _, c := range rec.Children {
		h, err := dec.handle(c)
		if err != nil {
			return err
		}
		n.Children = append(n.Children, h)
	}
	for _, l := range rec.LODs {
		h, err := dec.handle(l.Child)
		if err != nil {
			return err
		}
		n.LODs = append(n.LODs, graph.LODChild{MinScreenRatio: l.MinScreenRatio, Child: h})
	}
	if len(rec.Matrix) == 16 {
		copy(n.Matrix[:], rec.Matrix)
	} else if n.Kind == graph.KindTransform {
		n.Matrix = graph.Identity
	}
	if len(rec.Bound) == 4 {
		n.Bound = graph.Sphere{Center: [3]float64{rec.Bound[0], rec.Bound[1], rec.Bound[2]}, Radius: rec.Bound[3]}
	}
	if l := rec.Light; l != nil {
		n.Light = graph.Light{
			Type:       graph.LightType(l.Type), // #nosec G115 -- light types fit in uint8
			Color:      l.Color,
			Intensity:  l.Intensity,
			Position:   l.Position,
			Direction:  l.Direction,
			InnerAngle: l.InnerAngle,
			OuterAngle: l.OuterAngle,
			EyeFrame:   l.EyeFrame,
		}
	}
	if d := rec.Draw; d != nil {
		arrays, err := dec.leafList(d.Arrays)
		if err != nil {
			return err
		}
		indices, err := dec.optLeaf(d.Indices)
		if err != nil {
			return err
		}
		n.Draw = &graph.Draw{
			Arrays:        arrays,
			Indices:       indices,
			IndexCount:    d.IndexCount,
			InstanceCount: d.InstanceCount,
			FirstIndex:    d.FirstIndex,
			VertexOffset:  d.VertexOffset,
			FirstInstance: d.FirstInstance,
		}
	}
	var err error
	if n.StateCommands, err = dec.commands(rec.StateCommands); err != nil {
		return err
	}
	n.Commands, err = dec.commands(rec.Commands)
	return err
}

func (dec *decoder) commands(recs []Command) ([]graph.Command, error) {
	var out []graph.Command
	for _, rec := range recs {
		c, err := dec.command(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (dec *decoder) command(rec Command) (graph.Command, error) {
	switch rec.Type {
	case graph.CmdBindPipeline.String():
		p, err := dec.pipeline(rec.Pipeline)
		if err != nil {
			return nil, err
		}
		return &graph.BindPipelineCommand{Pipeline: p}, nil
	case graph.CmdBindDescriptorSet.String():
		p, err := dec.pipeline(rec.Pipeline)
		if err != nil {
			return nil, err
		}
		if rec.Set < 0 || int(rec.Set) >= len(dec.sets) {
			return nil, fmt.Errorf("%w: descriptor set %d", ErrCorrupt, rec.Set)
		}
		return &graph.BindDescriptorSetCommand{Pipeline: p, FirstSet: rec.First, Set: dec.sets[rec.Set]}, nil
	case graph.CmdBindVertexBuffers.String():
		arrays, err := dec.leafList(rec.Arrays)
		if err != nil {
			return nil, err
		}
		return &graph.BindVertexBuffersCommand{FirstBinding: rec.First, Arrays: arrays}, nil
	case graph.CmdBindIndexBuffer.String():
		a, err := dec.optLeaf(rec.Indices)
		if err != nil {
			return nil, err
		}
		return &graph.BindIndexBufferCommand{Indices: a}, nil
	case graph.CmdDrawIndexed.String():
		return &graph.DrawIndexedCommand{
			IndexCount:    rec.IndexCount,
			InstanceCount: rec.InstanceCount,
			FirstIndex:    rec.FirstIndex,
			VertexOffset:  rec.VertexOffset,
			FirstInstance: rec.FirstInstance,
		}, nil
	default:
		return nil, fmt.Errorf("%w: command type %q", ErrCorrupt, rec.Type)
	}
}

func pipelineFromRecord(rec Pipeline) *pipeline.Pipeline {
	s := pipeline.State{
		PushConstantSize: rec.PushConstantSize,
		Topology:         gputypes.PrimitiveTopology(rec.Topology),
		CullMode:         gputypes.CullMode(rec.CullMode),
		DepthDisabled:    rec.DepthDisabled,
		ColorFormat:      gputypes.TextureFormat(rec.ColorFormat),
		DepthFormat:      gputypes.TextureFormat(rec.DepthFormat),
	}
	for _, vb := range rec.VertexBindings {
		b := pipeline.VertexBinding{Binding: vb.Binding, Stride: vb.Stride, Rate: pipeline.Rate(vb.Rate)}
		for _, a := range vb.Attributes {
			b.Attributes = append(b.Attributes, pipeline.VertexAttribute{
				Location: a.Location,
				Offset:   a.Offset,
				Format:   format.Format(a.Format),
			})
		}
		s.VertexBindings = append(s.VertexBindings, b)
	}
	for _, sl := range rec.SetLayouts {
		var l pipeline.SetLayout
		for _, en := range sl.Entries {
			l.Entries = append(l.Entries, pipeline.LayoutEntry{
				Binding:       en.Binding,
				Type:          pipeline.DescriptorType(en.Type),
				Count:         int(en.Count),
				Stages:        gputypes.ShaderStages(en.Stages),
				ViewDimension: gputypes.TextureViewDimension(en.ViewDimension),
			})
		}
		s.SetLayouts = append(s.SetLayouts, l)
	}
	for _, b := range rec.Blend {
		s.Blend = append(s.Blend, gputypes.BlendState{
			Color: blendComponent(b.Color),
			Alpha: blendComponent(b.Alpha),
		})
	}
	p := &pipeline.Pipeline{ID: rec.ID}
	for _, st := range rec.Stages {
		stage := pipeline.ShaderStage{
			Stage:          gputypes.ShaderStage(st.Stage),
			EntryPoint:     st.EntryPoint,
			Source:         st.Source,
			Defines:        st.Defines,
			Specialization: st.Specialization,
		}
		s.Stages = append(s.Stages, stage)
		p.Modules = append(p.Modules, &pipeline.Module{Stage: stage, SPIRV: st.SPIRV})
	}
	p.State = s
	return p
}

func blendComponent(v [3]uint32) gputypes.BlendComponent {
	return gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactor(v[0]),
		DstFactor: gputypes.BlendFactor(v[1]),
		Operation: gputypes.BlendOperation(v[2]),
	}
}

func (dec *decoder) descriptorSet(rec DescriptorSet) (*graph.DescriptorSet, error) {
	if int(rec.Pipeline) >= len(dec.pipelines) {
		return nil, fmt.Errorf("%w: pipeline %d", ErrCorrupt, rec.Pipeline)
	}
	p := dec.pipelines[rec.Pipeline]
	if int(rec.Set) >= len(p.State.SetLayouts) {
		return nil, fmt.Errorf("%w: set %d", ErrCorrupt, rec.Set)
	}
	var descs []graph.Descriptor
	for _, d := range rec.Descriptors {
		u, err := dec.optLeaf(d.Uniform)
		if err != nil {
			return nil, err
		}
		desc := graph.Descriptor{Binding: d.Binding, Type: pipeline.DescriptorType(d.Type), Uniform: u}
		for _, im := range d.Images {
			data, err := dec.texture(im)
			if err != nil {
				return nil, err
			}
			desc.Images = append(desc.Images, data)
			desc.Samplers = append(desc.Samplers, samplerFromRecord(im.Sampler))
		}
		descs = append(descs, desc)
	}
	return graph.NewDescriptorSet(p.State.SetLayouts[rec.Set], descs)
}

// texture returns the image of a leaf, shared by every descriptor that
// samples it.
func (dec *decoder) texture(im Image) (*texture.Data, error) {
	if t, ok := dec.textures[im.Leaf]; ok {
		return t, nil
	}
	a, err := dec.leaf(im.Leaf)
	if err != nil {
		return nil, err
	}
	t := &texture.Data{
		Array:    a,
		Format:   format.Format(im.Format),
		Width:    int(im.Width),
		Height:   int(im.Height),
		Depth:    int(im.Depth),
		MipCount: int(im.MipCount),
	}
	dec.textures[im.Leaf] = t
	return t, nil
}

func samplerFromRecord(s Sampler) hal.SamplerDescriptor {
	return hal.SamplerDescriptor{
		Label:        "texture_sampler",
		AddressModeU: gputypes.AddressMode(s.AddressU),
		AddressModeV: gputypes.AddressMode(s.AddressV),
		AddressModeW: gputypes.AddressMode(s.AddressW),
		MagFilter:    gputypes.FilterMode(s.MagFilter),
		MinFilter:    gputypes.FilterMode(s.MinFilter),
		MipmapFilter: gputypes.FilterMode(s.MipmapFilter),
		LodMinClamp:  s.LodMin,
		LodMaxClamp:  s.LodMax,
		Anisotropy:   s.Anisotropy,
	}
}
